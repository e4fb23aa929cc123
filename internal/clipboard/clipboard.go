// Package clipboard copies generated links to the system clipboard through
// the platform's copy command.
package clipboard

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrClipboardUnavailable is returned when no copy command is installed.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// tool is a copy command and its arguments.
type tool struct {
	name string
	args []string
}

// candidates returns the copy commands to try on goos, in order of
// preference. Wayland sessions prefer wl-copy.
func candidates(goos string, wayland bool) []tool {
	switch goos {
	case "darwin":
		return []tool{{name: "pbcopy"}}
	case "windows":
		return []tool{{name: "clip"}}
	case "linux", "freebsd", "openbsd":
		tools := []tool{
			{name: "xclip", args: []string{"-selection", "clipboard"}},
			{name: "xsel", args: []string{"--clipboard", "--input"}},
		}
		if wayland {
			tools = append([]tool{{name: "wl-copy"}}, tools...)
		}
		return tools
	default:
		return nil
	}
}

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// command returns the first installed copy command.
func command() (*exec.Cmd, error) {
	for _, t := range candidates(runtime.GOOS, os.Getenv("WAYLAND_DISPLAY") != "") {
		if _, err := lookPath(t.name); err == nil {
			return exec.Command(t.name, t.args...), nil
		}
	}
	return nil, ErrClipboardUnavailable
}

// IsAvailable reports whether a copy command is installed.
func IsAvailable() bool {
	_, err := command()
	return err == nil
}

// Copy writes text to the system clipboard.
func Copy(text string) error {
	cmd, err := command()
	if err != nil {
		return err
	}
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", cmd.Path, err, strings.TrimSpace(string(out)))
	}
	return nil
}
