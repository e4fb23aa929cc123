// Package storage handles data persistence in JSONL and SQLite formats.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsen/blueprint/internal/instrument"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadEvents reads the reference event list from a JSONL file.
func ReadEvents(path string) ([]instrument.EventSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Missing registry reads as empty
		}
		return nil, fmt.Errorf("opening events file: %w", err)
	}
	defer f.Close()

	var specs []instrument.EventSpec
	scanner := bufio.NewScanner(f)

	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var spec instrument.EventSpec
		if err := json.Unmarshal(line, &spec); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		specs = append(specs, spec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading events file: %w", err)
	}

	return specs, nil
}

// AppendEvent adds an event spec to the end of a JSONL file.
func AppendEvent(path string, spec instrument.EventSpec) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening events file for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}

	return nil
}

// WriteEvents writes all event specs to a JSONL file, replacing existing content.
func WriteEvents(path string, specs []instrument.EventSpec) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating events file: %w", err)
	}
	defer f.Close()

	for i, spec := range specs {
		data, err := json.Marshal(spec)
		if err != nil {
			return fmt.Errorf("encoding event %d: %w", i, err)
		}
		if _, err := f.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("writing event %d: %w", i, err)
		}
	}

	return nil
}

// FindEvent searches for an event spec by name.
func FindEvent(specs []instrument.EventSpec, name string) (int, bool) {
	for i, s := range specs {
		if s.Name == name {
			return i, true
		}
	}
	return -1, false
}
