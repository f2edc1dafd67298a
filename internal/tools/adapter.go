package tools

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"repitch/internal/logging"
	"repitch/internal/media/ffprobe"
)

// Adapter is the only path through which repitch runs media tools.
type Adapter interface {
	GrabFrame(ctx context.Context, video, outImage string, atSeconds float64) error
	ExtractAudio(ctx context.Context, video, outAudio string) error
	PitchShift(ctx context.Context, inAudio, outAudio string, semitones int) error
	Mux(ctx context.Context, video, audio, outVideo string) error
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// Binaries names the executables used by CLI.
type Binaries struct {
	FFmpeg  string
	FFprobe string
	Sox     string
}

// Option configures the CLI adapter.
type Option func(*CLI)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *CLI) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithTimeout bounds every invocation; zero leaves invocations unbounded.
func WithTimeout(timeout time.Duration) Option {
	return func(c *CLI) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger attaches a logger for per-invocation debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CLI) {
		c.logger = logging.NewComponentLogger(logger, "tools")
	}
}

// CLI implements Adapter by running the configured binaries.
type CLI struct {
	bins    Binaries
	exec    Executor
	timeout time.Duration
	logger  *slog.Logger
}

var _ Adapter = (*CLI)(nil)

// NewCLI constructs an adapter, filling empty binary names with their defaults.
func NewCLI(bins Binaries, opts ...Option) *CLI {
	if strings.TrimSpace(bins.FFmpeg) == "" {
		bins.FFmpeg = "ffmpeg"
	}
	if strings.TrimSpace(bins.FFprobe) == "" {
		bins.FFprobe = "ffprobe"
	}
	if strings.TrimSpace(bins.Sox) == "" {
		bins.Sox = "sox"
	}
	c := &CLI{bins: bins, exec: commandExecutor{}, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GrabFrame writes a single high-quality JPEG frame captured at atSeconds.
func (c *CLI) GrabFrame(ctx context.Context, video, outImage string, atSeconds float64) error {
	args := []string{
		"-y",
		"-ss", strconv.FormatFloat(atSeconds, 'f', -1, 64),
		"-i", video,
		"-vframes", "1",
		"-q:v", "2",
		outImage,
	}
	_, err := c.run(ctx, ToolFrameGrab, c.bins.FFmpeg, args)
	return err
}

// ExtractAudio decodes the video's audio to 48 kHz signed 16-bit PCM WAV.
func (c *CLI) ExtractAudio(ctx context.Context, video, outAudio string) error {
	args := []string{
		"-y",
		"-i", video,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "48000",
		outAudio,
	}
	_, err := c.run(ctx, ToolAudioExtract, c.bins.FFmpeg, args)
	return err
}

// PitchShift changes pitch by semitones while keeping duration. sox takes
// cents; -G guards against clipping.
func (c *CLI) PitchShift(ctx context.Context, inAudio, outAudio string, semitones int) error {
	args := []string{"-G", inAudio, outAudio, "pitch", strconv.Itoa(semitones * 100)}
	_, err := c.run(ctx, ToolPitchShift, c.bins.Sox, args)
	return err
}

// Mux copies the video stream and pairs it with audio encoded as AAC.
func (c *CLI) Mux(ctx context.Context, video, audio, outVideo string) error {
	args := []string{
		"-y",
		"-i", video,
		"-i", audio,
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		outVideo,
	}
	_, err := c.run(ctx, ToolMux, c.bins.FFmpeg, args)
	return err
}

// ProbeDuration asks ffprobe for the media duration in seconds.
func (c *CLI) ProbeDuration(ctx context.Context, path string) (float64, error) {
	stdout, err := c.run(ctx, ToolProbe, c.bins.FFprobe, ffprobe.Args(path))
	if err != nil {
		return 0, err
	}
	result, err := ffprobe.Parse(stdout)
	if err != nil {
		return 0, &ToolError{Tool: ToolProbe, ExitCode: 0, Err: err}
	}
	seconds, err := result.DurationSeconds()
	if err != nil {
		return 0, &ToolError{Tool: ToolProbe, ExitCode: 0, Err: err}
	}
	c.logger.Debug("probed duration",
		logging.String("path", path),
		logging.Float64("seconds", seconds),
		logging.Int("audio_streams", result.AudioStreamCount()),
	)
	return seconds, nil
}

func (c *CLI) run(ctx context.Context, tool, binary string, args []string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	logger := logging.WithContext(ctx, c.logger)
	started := time.Now()
	stdout, stderr, err := c.exec.Run(ctx, binary, args)
	elapsed := time.Since(started)
	if err != nil {
		toolErr := newToolError(tool, stderr, err)
		logger.Debug("tool invocation failed",
			logging.String("tool", tool),
			logging.String("command", quoteCommand(binary, args)),
			logging.Int("exit_code", toolErr.ExitCode),
			logging.Duration("elapsed", elapsed),
		)
		return nil, toolErr
	}
	logger.Debug("tool invocation",
		logging.String("tool", tool),
		logging.String("command", quoteCommand(binary, args)),
		logging.Duration("elapsed", elapsed),
	)
	return stdout, nil
}

func quoteCommand(binary string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, shellQuote(binary))
	for _, arg := range args {
		parts = append(parts, shellQuote(arg))
	}
	return strings.Join(parts, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, func(r rune) bool {
		return !(r == '-' || r == '_' || r == '.' || r == '/' || r == ':' || r == '+' || r == '=' ||
			(r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'))
	}) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
