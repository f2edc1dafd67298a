package testsupport

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"repitch/internal/fileutil"
	"repitch/internal/tools"
)

// FakeAdapter implements tools.Adapter by writing small placeholder outputs.
// Extracted audio is a real silent WAV so duration probes work.
type FakeAdapter struct {
	// AudioSeconds is the length of extracted audio; zero means one second.
	AudioSeconds float64
	// ProbeSeconds is returned by ProbeDuration unless ProbeErr is set.
	ProbeSeconds float64
	ProbeErr     error
	// Delay is slept before each producing call, honouring ctx.
	Delay time.Duration
	// Fail maps a tool name to the error that invocation returns.
	Fail map[string]error
	// SkipOutput makes producing calls succeed without writing anything.
	SkipOutput bool

	mu    sync.Mutex
	calls map[string]int
	last  map[string][]string
}

var _ tools.Adapter = (*FakeAdapter)(nil)

// Calls reports how many times tool was invoked.
func (f *FakeAdapter) Calls(tool string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[tool]
}

// LastArgs returns the path arguments of the most recent call to tool.
func (f *FakeAdapter) LastArgs(tool string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.last[tool]...)
}

func (f *FakeAdapter) record(tool string, args ...string) error {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[string]int{}
		f.last = map[string][]string{}
	}
	f.calls[tool]++
	f.last[tool] = args
	err := f.Fail[tool]
	f.mu.Unlock()
	return err
}

func (f *FakeAdapter) wait(ctx context.Context) error {
	if f.Delay <= 0 {
		return nil
	}
	select {
	case <-time.After(f.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *FakeAdapter) produce(ctx context.Context, tool, out string, data []byte, args ...string) error {
	if err := f.record(tool, args...); err != nil {
		return &tools.ToolError{Tool: tool, ExitCode: 1, Stderr: err.Error(), Err: err}
	}
	if err := f.wait(ctx); err != nil {
		return err
	}
	if f.SkipOutput {
		return nil
	}
	return os.WriteFile(out, data, 0o644)
}

// GrabFrame writes a placeholder JPEG.
func (f *FakeAdapter) GrabFrame(ctx context.Context, video, outImage string, _ float64) error {
	if _, err := os.Stat(video); err != nil {
		return &tools.ToolError{Tool: tools.ToolFrameGrab, ExitCode: 1, Stderr: err.Error(), Err: err}
	}
	return f.produce(ctx, tools.ToolFrameGrab, outImage, []byte("\xff\xd8\xff\xe0fake-jpeg"), video, outImage)
}

// ExtractAudio writes a silent 8 kHz mono WAV.
func (f *FakeAdapter) ExtractAudio(ctx context.Context, video, outAudio string) error {
	seconds := f.AudioSeconds
	if seconds <= 0 {
		seconds = 1
	}
	return f.produce(ctx, tools.ToolAudioExtract, outAudio, WAVBytes(8000, 1, seconds), video, outAudio)
}

// PitchShift copies the input; duration is preserved like the real tool.
func (f *FakeAdapter) PitchShift(ctx context.Context, inAudio, outAudio string, _ int) error {
	if err := f.record(tools.ToolPitchShift, inAudio, outAudio); err != nil {
		return &tools.ToolError{Tool: tools.ToolPitchShift, ExitCode: 1, Stderr: err.Error(), Err: err}
	}
	if err := f.wait(ctx); err != nil {
		return err
	}
	if f.SkipOutput {
		return nil
	}
	if err := fileutil.CopyFile(inAudio, outAudio); err != nil {
		return &tools.ToolError{Tool: tools.ToolPitchShift, ExitCode: 2, Stderr: err.Error(), Err: err}
	}
	return nil
}

// Mux writes a placeholder container.
func (f *FakeAdapter) Mux(ctx context.Context, video, audio, outVideo string) error {
	return f.produce(ctx, tools.ToolMux, outVideo, []byte("muxed:"+video+"+"+audio), video, audio, outVideo)
}

// ProbeDuration returns the configured duration.
func (f *FakeAdapter) ProbeDuration(_ context.Context, path string) (float64, error) {
	if err := f.record(tools.ToolProbe, path); err != nil {
		return 0, err
	}
	if f.ProbeErr != nil {
		return 0, f.ProbeErr
	}
	if f.ProbeSeconds <= 0 {
		return 0, errors.New("fake probe: no duration configured")
	}
	return f.ProbeSeconds, nil
}
