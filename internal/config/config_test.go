package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"repitch/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv(config.APIBindEnv, "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "repitch", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if want := filepath.Join(tempHome, ".cache", "repitch"); cfg.Paths.CacheDir != want {
		t.Fatalf("unexpected cache dir: got %q want %q", cfg.Paths.CacheDir, want)
	}
	if want := filepath.Join(tempHome, "Downloads"); cfg.Paths.DownloadsDir != want {
		t.Fatalf("unexpected downloads dir: got %q want %q", cfg.Paths.DownloadsDir, want)
	}
	if want := filepath.Join(tempHome, ".config", "repitch", "roots.json"); cfg.Paths.RootsFile != want {
		t.Fatalf("unexpected roots file: got %q want %q", cfg.Paths.RootsFile, want)
	}
	if cfg.Paths.APIBind != "127.0.0.1:5001" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Tools.FFmpeg != "ffmpeg" || cfg.Tools.FFprobe != "ffprobe" || cfg.Tools.Sox != "sox" {
		t.Fatalf("unexpected tool binaries: %+v", cfg.Tools)
	}
	if cfg.ToolTimeout() != 0 {
		t.Fatalf("expected unlimited tool timeout, got %s", cfg.ToolTimeout())
	}
	if len(cfg.Library.VideoExtensions) != 1 || cfg.Library.VideoExtensions[0] != ".mp4" {
		t.Fatalf("unexpected video extensions: %v", cfg.Library.VideoExtensions)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadCustomConfigOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv(config.APIBindEnv, "")

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[paths]
cache_dir = "~/cache-root"
downloads_dir = "/tmp/repitch-out"
api_bind = "127.0.0.1:9000"

[tools]
ffmpeg = "/opt/ffmpeg/bin/ffmpeg"
timeout_seconds = 90

[library]
video_extensions = ["MKV", ".mp4", ".mkv"]
thumbnail_workers = 2

[logging]
format = "JSON"
level = "Warning"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected existing config at %q, got %q exists=%v", configPath, resolved, exists)
	}
	if cfg.Paths.CacheDir != filepath.Join(tempHome, "cache-root") {
		t.Fatalf("unexpected cache dir: %q", cfg.Paths.CacheDir)
	}
	if cfg.Paths.DownloadsDir != "/tmp/repitch-out" {
		t.Fatalf("unexpected downloads dir: %q", cfg.Paths.DownloadsDir)
	}
	if cfg.Paths.APIBind != "127.0.0.1:9000" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Tools.FFmpeg != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected ffmpeg: %q", cfg.Tools.FFmpeg)
	}
	if cfg.ToolTimeout().Seconds() != 90 {
		t.Fatalf("unexpected tool timeout: %s", cfg.ToolTimeout())
	}
	if got := strings.Join(cfg.Library.VideoExtensions, ","); got != ".mkv,.mp4" {
		t.Fatalf("unexpected extensions: %q", got)
	}
	if cfg.Library.ThumbnailWorkers != 2 {
		t.Fatalf("unexpected workers: %d", cfg.Library.ThumbnailWorkers)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "warn" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestAPIBindEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.APIBindEnv, "127.0.0.1:6060")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.APIBind != "127.0.0.1:6060" {
		t.Fatalf("expected env override, got %q", cfg.Paths.APIBind)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"bad bind", func(c *config.Config) { c.Paths.APIBind = "nope" }, "paths.api_bind"},
		{"negative timeout", func(c *config.Config) { c.Tools.TimeoutSeconds = -1 }, "tools.timeout_seconds"},
		{"negative offset", func(c *config.Config) { c.Tools.ThumbnailOffsetSeconds = -2 }, "tools.thumbnail_offset_seconds"},
		{"no workers", func(c *config.Config) { c.Library.ThumbnailWorkers = 0 }, "library.thumbnail_workers"},
		{"bad format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"empty cache", func(c *config.Config) { c.Paths.CacheDir = "" }, "paths.cache_dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[paths\ncache_dir = 1"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestEnsureDirectoriesCreatesPaths(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Paths.DownloadsDir = filepath.Join(base, "downloads")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.RootsFile = filepath.Join(base, "state", "roots.json")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.CacheDir, cfg.Paths.DownloadsDir, cfg.Paths.LogDir, filepath.Dir(cfg.Paths.RootsFile)} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.APIBindEnv, "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	if decoded.Paths.APIBind != "127.0.0.1:5001" {
		t.Fatalf("unexpected sample bind: %q", decoded.Paths.APIBind)
	}

	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("expected sample to load, exists=%v err=%v", exists, err)
	}
}
