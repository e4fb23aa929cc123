package instrument

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/matsen/blueprint/internal/structure"
)

// EventSpec is one entry of the reference event list.
type EventSpec struct {
	Name          string `json:"name"`
	TrackDuration bool   `json:"track_duration"`
}

// ParseEventList reads a JSON array of event specs.
func ParseEventList(data []byte) ([]EventSpec, error) {
	var specs []EventSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parsing event list: %w", err)
	}
	if specs == nil {
		specs = []EventSpec{}
	}
	return specs, nil
}

// Names returns the set of event names in specs.
func Names(specs []EventSpec) map[string]bool {
	names := make(map[string]bool, len(specs))
	for _, s := range specs {
		names[s.Name] = true
	}
	return names
}

// Merge appends every id missing from reference as a new spec with
// duration tracking on. It returns the merged list and the number added.
func Merge(reference []EventSpec, ids []string) ([]EventSpec, int) {
	merged := slices.Clone(reference)
	if merged == nil {
		merged = []EventSpec{}
	}
	known := Names(reference)

	added := 0
	for _, id := range ids {
		if known[id] {
			continue
		}
		known[id] = true
		merged = append(merged, EventSpec{Name: id, TrackDuration: true})
		added++
	}
	return merged, added
}

// Status is the state of a row's event id against the reference list.
type Status string

const (
	StatusSynced       Status = "synced"
	StatusUnregistered Status = "unregistered"
	StatusUnset        Status = "unset"
)

// rank orders statuses for review: unregistered ids first.
func (s Status) rank() int {
	switch s {
	case StatusUnregistered:
		return 0
	case StatusUnset:
		return 1
	default:
		return 2
	}
}

// StatusOf reports the status of r given the known event names. Rows
// without a valid id are unset.
func StatusOf(r Row, known map[string]bool) Status {
	switch {
	case !r.HasValidEvent:
		return StatusUnset
	case known[r.EventID]:
		return StatusSynced
	default:
		return StatusUnregistered
	}
}

// Annotate sets the status of every row against reference.
func Annotate(rows []Row, reference []EventSpec) {
	known := Names(reference)
	for i := range rows {
		rows[i].Status = StatusOf(rows[i], known)
	}
}

// SortRows orders annotated rows unregistered, then unset, then synced,
// and by depth within a status. Equal rows keep document order.
func SortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := rows[i].Status.rank(), rows[j].Status.rank()
		if ri != rj {
			return ri < rj
		}
		return rows[i].Depth < rows[j].Depth
	})
}

// FilterRows returns the rows with the given status.
func FilterRows(rows []Row, status Status) []Row {
	out := []Row{}
	for _, r := range rows {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// CoverageReport compares the event ids on the navigation tree with a
// target list.
type CoverageReport struct {
	Matched      []string                `json:"matched"`
	Missing      []string                `json:"missing"`
	Unregistered []string                `json:"unregistered"`
	Records      []structure.EventRecord `json:"unregistered_records"`
}

// Coverage reports which target ids appear in records, which are missing,
// and which ids in records are not targeted. Id lists are sorted.
func Coverage(records []structure.EventRecord, target []string) CoverageReport {
	want := make(map[string]bool, len(target))
	for _, id := range target {
		want[id] = true
	}
	have := make(map[string]bool, len(records))
	for _, r := range records {
		have[r.EventID] = true
	}

	report := CoverageReport{
		Matched:      []string{},
		Missing:      []string{},
		Unregistered: []string{},
		Records:      []structure.EventRecord{},
	}
	for id := range want {
		if have[id] {
			report.Matched = append(report.Matched, id)
		} else {
			report.Missing = append(report.Missing, id)
		}
	}
	for id := range have {
		if !want[id] {
			report.Unregistered = append(report.Unregistered, id)
		}
	}
	for _, r := range records {
		if !want[r.EventID] {
			report.Records = append(report.Records, r)
		}
	}

	sort.Strings(report.Matched)
	sort.Strings(report.Missing)
	sort.Strings(report.Unregistered)
	return report
}

// ErrNoEventColumn is returned when a target CSV has no eventId column.
var ErrNoEventColumn = errors.New("no eventId column")

// EventColumn is the header of the target CSV column holding event ids.
const EventColumn = "eventId"

// ReadTargetCSV reads the distinct non-empty values of the eventId column.
// Header names are trimmed before matching.
func ReadTargetCSV(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoEventColumn
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	col := -1
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == EventColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, ErrNoEventColumn
	}

	ids := []string{}
	seen := make(map[string]bool)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		if col >= len(rec) {
			continue
		}
		id := strings.TrimSpace(rec[col])
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}
