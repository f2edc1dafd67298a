// Package duration resolves media durations through an ordered chain of
// probing strategies, memoizing successes per file version.
package duration

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"repitch/internal/logging"
	"repitch/internal/media/wav"
	"repitch/internal/tools"
)

const (
	defaultExpiration = 30 * time.Minute
	cleanupInterval   = 10 * time.Minute
)

// Strategy probes a single file.
type Strategy interface {
	Name() string
	Probe(ctx context.Context, path string) (float64, error)
}

type wavStrategy struct{}

// WAVHeader reads the RIFF header; it needs no external tool.
func WAVHeader() Strategy { return wavStrategy{} }

func (wavStrategy) Name() string { return "wav-header" }

func (wavStrategy) Probe(_ context.Context, path string) (float64, error) {
	return wav.DurationSeconds(path)
}

type ffprobeStrategy struct {
	adapter tools.Adapter
}

// FFprobe asks the tool adapter's probe.
func FFprobe(adapter tools.Adapter) Strategy { return ffprobeStrategy{adapter: adapter} }

func (ffprobeStrategy) Name() string { return "ffprobe" }

func (s ffprobeStrategy) Probe(ctx context.Context, path string) (float64, error) {
	return s.adapter.ProbeDuration(ctx, path)
}

// Prober runs strategies in order.
type Prober struct {
	strategies []Strategy
	memo       *gocache.Cache
	logger     *slog.Logger
}

// NewProber builds a prober over strategies, tried in the given order.
func NewProber(logger *slog.Logger, strategies ...Strategy) *Prober {
	return &Prober{
		strategies: strategies,
		memo:       gocache.New(defaultExpiration, cleanupInterval),
		logger:     logging.NewComponentLogger(logger, "duration"),
	}
}

// Probe tries every strategy against each path before moving to the next
// strategy, and returns the first positive duration. ok is false when nothing
// could report one.
func (p *Prober) Probe(ctx context.Context, paths ...string) (seconds float64, ok bool) {
	logger := logging.WithContext(ctx, p.logger)
	for _, strategy := range p.strategies {
		for _, path := range paths {
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			key := memoKey(strategy.Name(), path, info)
			if cached, found := p.memo.Get(key); found {
				if value, ok := cached.(float64); ok {
					return value, true
				}
			}
			value, err := strategy.Probe(ctx, path)
			if err != nil || value <= 0 {
				logger.Debug("duration probe miss",
					logging.String("strategy", strategy.Name()),
					logging.String("path", path),
					logging.Error(err),
				)
				continue
			}
			p.memo.SetDefault(key, value)
			return value, true
		}
	}
	return 0, false
}

// memoKey changes whenever the file is replaced, so stale entries are never read.
func memoKey(strategy, path string, info os.FileInfo) string {
	return fmt.Sprintf("%s|%s|%d|%d", strategy, path, info.Size(), info.ModTime().UnixNano())
}
