package tools

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Tool names reported in ToolError.
const (
	ToolFrameGrab    = "frame-grab"
	ToolAudioExtract = "audio-extract"
	ToolPitchShift   = "pitch-shift"
	ToolMux          = "mux"
	ToolProbe        = "probe"
)

// ToolError describes a failed external tool invocation.
type ToolError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	var b strings.Builder
	b.WriteString(e.Tool)
	b.WriteString(" failed")
	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, " (exit %d)", e.ExitCode)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		b.WriteString(": ")
		b.WriteString(stderr)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ToolError) Unwrap() error { return e.Err }

func newToolError(tool string, stderr []byte, err error) *ToolError {
	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return &ToolError{Tool: tool, ExitCode: code, Stderr: string(stderr), Err: err}
}
