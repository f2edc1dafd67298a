// Package daemonrun wires configuration, logging, the artifact pipeline and
// the HTTP server into one process lifetime.
package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofrs/flock"

	"repitch/internal/api"
	"repitch/internal/artifact"
	"repitch/internal/config"
	"repitch/internal/deps"
	"repitch/internal/library"
	"repitch/internal/logging"
	"repitch/internal/pipeline"
	"repitch/internal/preflight"
	"repitch/internal/roots"
	"repitch/internal/server"
	"repitch/internal/tools"
)

// ErrAlreadyRunning is returned when another server holds the instance lock.
var ErrAlreadyRunning = errors.New("another repitch server is already running")

// Options configures server process runtime behavior.
type Options struct {
	LogLevel string
	// Bind overrides cfg.Paths.APIBind when set.
	Bind string
	// Ready, when set, receives the bound address once the server listens.
	Ready func(addr string)
}

// Run starts the server and blocks until ctx is cancelled or the process
// receives SIGINT/SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, cfg.LockPath())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release instance lock",
				logging.Error(err),
				logging.String(logging.FieldEventType, "lock_release_failed"),
				logging.String(logging.FieldErrorHint, "remove the lock file if no server is running"),
				logging.String(logging.FieldImpact, "next start may report the server as running"),
			)
		}
	}()

	logPreflight(signalCtx, logger, cfg)
	statuses := deps.CheckConfigured(cfg)
	logDependencySnapshot(logger, statuses)

	layout := artifact.Layout{CacheDir: cfg.Paths.CacheDir, DownloadsDir: cfg.Paths.DownloadsDir}
	store := artifact.NewStore(layout, logger)
	if removed, err := store.SweepPartials(); err != nil {
		logging.WarnWithContext(logger, "partial artifact sweep failed", "partial_sweep_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check cache directory permissions"),
			logging.String(logging.FieldImpact, "stale temp files remain on disk"),
		)
	} else if removed > 0 {
		logger.Info("removed partial artifacts", logging.Int("count", removed))
	}

	registry := roots.Open(cfg.Paths.RootsFile, logger)
	adapter := tools.NewCLI(tools.Binaries{
		FFmpeg:  cfg.Tools.FFmpeg,
		FFprobe: cfg.Tools.FFprobe,
		Sox:     cfg.Tools.Sox,
	}, tools.WithTimeout(cfg.ToolTimeout()), tools.WithLogger(logger))

	svc, err := pipeline.NewService(pipeline.Dependencies{
		Store:  store,
		Tools:  adapter,
		Roots:  registry,
		Walker: library.NewWalker(cfg.Library.VideoExtensions, logger),
		Logger: logger,
	},
		pipeline.WithThumbnailOffset(cfg.Tools.ThumbnailOffsetSeconds),
		pipeline.WithThumbnailWorkers(cfg.Library.ThumbnailWorkers),
	)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}

	bind := cfg.Paths.APIBind
	if opts.Bind != "" {
		bind = opts.Bind
	}
	srv, err := server.New(bind, server.Dependencies{
		Pipeline: svc,
		Roots:    registry,
		Status:   statusFunc(cfg, bind, registry),
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	if err := srv.Start(signalCtx); err != nil {
		return err
	}
	logger.Info("repitch server started",
		logging.String("address", srv.Addr()),
		logging.String("cache_dir", cfg.Paths.CacheDir),
		logging.Int("roots", len(registry.List())),
	)
	if opts.Ready != nil {
		opts.Ready(srv.Addr())
	}

	<-signalCtx.Done()
	logger.Info("repitch server shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Warn("server shutdown incomplete",
			logging.Error(err),
			logging.String(logging.FieldEventType, "shutdown_incomplete"),
			logging.String(logging.FieldErrorHint, "long-running tool invocations were interrupted"),
			logging.String(logging.FieldImpact, "in-flight requests may have been dropped"),
		)
	}
	return nil
}

func statusFunc(cfg *config.Config, bind string, registry *roots.Registry) server.StatusFunc {
	return func(context.Context) api.ServerStatus {
		statuses := deps.CheckConfigured(cfg)
		out := api.ServerStatus{
			Running:      true,
			PID:          os.Getpid(),
			Bind:         bind,
			CacheDir:     cfg.Paths.CacheDir,
			DownloadsDir: cfg.Paths.DownloadsDir,
			RootsFile:    registry.Path(),
			Roots:        registry.List(),
			Dependencies: make([]api.DependencyStatus, 0, len(statuses)),
		}
		for _, dep := range statuses {
			out.Dependencies = append(out.Dependencies, api.DependencyStatus{
				Name:        dep.Name,
				Command:     dep.Command,
				Description: dep.Description,
				Optional:    dep.Optional,
				Available:   dep.Available,
				Detail:      dep.Detail,
			})
		}
		return out
	}
}

func logPreflight(ctx context.Context, logger *slog.Logger, cfg *config.Config) {
	for _, result := range preflight.Failed(preflight.RunAll(ctx, cfg)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "fix the path or free disk space"),
			logging.String(logging.FieldImpact, "artifact generation may fail"),
		)
	}
}

func logDependencySnapshot(logger *slog.Logger, statuses []deps.Status) {
	attrs := []any{logging.String(logging.FieldEventType, "dependency_snapshot")}
	for _, s := range statuses {
		attrs = append(attrs,
			logging.Bool(strings.ToLower(s.Name)+"_available", s.Available),
			logging.String(strings.ToLower(s.Name)+"_binary", s.Command),
		)
	}
	logger.Info("dependency snapshot", attrs...)

	for _, missing := range deps.MissingRequired(statuses) {
		logging.WarnWithContext(logger, "required tool unavailable", "dependency_missing",
			logging.String("tool", missing.Name),
			logging.String("detail", missing.Detail),
			logging.String(logging.FieldErrorHint, "install it or set its path under [tools]"),
			logging.String(logging.FieldImpact, missing.Description+" will fail"),
		)
	}
}
