// Package media drives ffmpeg and ffprobe: media inspection, video standardization,
// audio extraction, stem mixing and final muxing with fades and a logo.
//
// Filtergraphs are built by pure functions so they can be tested without
// the tools installed.
package media

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args. A non-zero exit is reported as a
// [*CommandError] carrying the tool output.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return out, &CommandError{Name: name, Args: args, Output: out, Err: err}
	}
	return out, nil
}

// CommandError is a failed external command.
type CommandError struct {
	Name   string
	Args   []string
	Output []byte
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Name, strings.Join(e.Args, " "), e.Err)
	if out := strings.TrimSpace(string(e.Output)); out != "" {
		msg += ": " + lastLines(out, 5)
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// lastLines keeps the final n lines of tool output, where ffmpeg prints
// the actual failure.
func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
