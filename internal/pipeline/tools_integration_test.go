package pipeline_test

import (
	"bytes"
	"context"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"repitch/internal/artifact"
	"repitch/internal/library"
	"repitch/internal/logging"
	"repitch/internal/mediaid"
	"repitch/internal/pipeline"
	"repitch/internal/roots"
	"repitch/internal/testsupport"
	"repitch/internal/tools"
)

func TestRealToolsExtractPitchAndStore(t *testing.T) {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not available")
	}
	sox, err := exec.LookPath("sox")
	if err != nil {
		t.Skip("sox not available")
	}
	ffprobe, _ := exec.LookPath("ffprobe")

	cfg := testsupport.NewConfig(t)
	video := filepath.Join(testsupport.BaseDir(cfg), "media", "tone.mp4")
	if err := os.MkdirAll(filepath.Dir(video), 0o755); err != nil {
		t.Fatal(err)
	}
	gen := exec.Command(ffmpeg, "-hide_banner", "-loglevel", "error", "-y",
		"-f", "lavfi", "-i", "sine=frequency=440:duration=10",
		"-f", "lavfi", "-i", "color=c=black:s=64x64:d=10",
		"-c:v", "mpeg4", "-c:a", "aac", "-shortest", video)
	if out, err := gen.CombinedOutput(); err != nil {
		t.Skipf("ffmpeg cannot synthesize a test video: %v: %s", err, out)
	}

	logger := logging.NewNop()
	cli := tools.NewCLI(tools.Binaries{FFmpeg: ffmpeg, FFprobe: ffprobe, Sox: sox},
		tools.WithTimeout(time.Minute), tools.WithLogger(logger))
	svc, err := pipeline.NewService(pipeline.Dependencies{
		Store:  artifact.NewStore(artifact.Layout{CacheDir: cfg.Paths.CacheDir, DownloadsDir: cfg.Paths.DownloadsDir}, logger),
		Tools:  cli,
		Roots:  roots.Open(cfg.Paths.RootsFile, logger),
		Walker: library.NewWalker(cfg.Library.VideoExtensions, logger),
		Logger: logger,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ctx := context.Background()
	id := mediaid.Encode(video)
	base, err := svc.ExtractAudio(ctx, id)
	if err != nil {
		t.Fatalf("ExtractAudio: %v", err)
	}
	if base.DurationSeconds == nil || math.Abs(*base.DurationSeconds-10) > 0.5 {
		t.Fatalf("base duration = %v, want about 10s", base.DurationSeconds)
	}
	before, err := os.ReadFile(base.Path)
	if err != nil {
		t.Fatal(err)
	}

	pitched, err := svc.PitchShift(ctx, id, 5)
	if err != nil {
		t.Fatalf("PitchShift: %v", err)
	}
	if pitched.Path == base.Path {
		t.Fatal("pitched track must not overwrite the base track")
	}
	if pitched.DurationSeconds == nil || math.Abs(*pitched.DurationSeconds-10) > 0.5 {
		t.Fatalf("pitched duration = %v, want about 10s", pitched.DurationSeconds)
	}
	after, err := os.ReadFile(base.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Fatal("base track changed after pitch shift")
	}

	out, err := svc.StoreVideo(ctx, id, 5)
	if err != nil {
		t.Fatalf("StoreVideo: %v", err)
	}
	if filepath.Base(out) != "tone_+5.mp4" {
		t.Fatalf("unexpected output name %q", filepath.Base(out))
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Fatalf("muxed output missing or empty: %v", err)
	}
}
