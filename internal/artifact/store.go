package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"repitch/internal/fileutil"
	"repitch/internal/logging"
)

// Producer writes an artifact to tmpPath. The store publishes tmpPath to the
// key's location only when the producer returns nil.
type Producer func(ctx context.Context, tmpPath string) error

// ErrNoOutput reports a producer that succeeded without writing its file.
var ErrNoOutput = errors.New("producer wrote no output")

// ErrLocationTaken reports a shared-name location that was published for a
// different ID.
var ErrLocationTaken = errors.New("location published for another source")

// Store decides cache hits and serializes producers per key.
type Store struct {
	layout Layout
	logger *slog.Logger
	group  singleflight.Group
}

// NewStore constructs a store over layout.
func NewStore(layout Layout, logger *slog.Logger) *Store {
	return &Store{
		layout: layout,
		logger: logging.NewComponentLogger(logger, "artifact-store"),
	}
}

// Resolve returns the canonical location for key.
func (s *Store) Resolve(key Key) (string, error) {
	return s.layout.Resolve(key)
}

// Exists reports whether the artifact for key has been published.
func (s *Store) Exists(key Key) bool {
	location, err := s.layout.Resolve(key)
	if err != nil {
		return false
	}
	return fileutil.IsRegularFile(location)
}

// Ensure returns the location of key's artifact, running produce on a miss.
//
// Concurrent calls for the same key share one producer run and observe the
// same outcome. A caller whose ctx ends stops waiting, but the producer keeps
// running detached from that ctx and still publishes its result.
func (s *Store) Ensure(ctx context.Context, key Key, produce Producer) (string, error) {
	location, err := s.layout.Resolve(key)
	if err != nil {
		return "", err
	}
	if fileutil.IsRegularFile(location) {
		if err := s.checkOwner(key, location); err != nil {
			return "", err
		}
		s.logger.DebugContext(ctx, "artifact cache hit",
			logging.String("key", key.String()),
			logging.String("location", location))
		return location, nil
	}

	runCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(location, func() (any, error) {
		return location, s.produce(runCtx, key, location, produce)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		// The flight may belong to another ID that resolves to the same name.
		if err := s.checkOwner(key, location); err != nil {
			return "", err
		}
		return location, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Store) produce(ctx context.Context, key Key, location string, produce Producer) error {
	// A flight that finished just before this one started may have published.
	if fileutil.IsRegularFile(location) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(location), 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}

	tmp := fileutil.PartialSibling(location)
	started := time.Now()
	logger := logging.WithContext(ctx, s.logger).With(
		logging.String("key", key.String()),
		logging.String("location", location),
	)
	logger.Info("producing artifact")

	if err := produce(ctx, tmp); err != nil {
		_ = os.Remove(tmp)
		logging.WarnWithContext(logger, "artifact production failed", "artifact_produce_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "inspect the tool output in the error"),
			logging.String(logging.FieldImpact, "artifact not cached; a later request will retry"),
		)
		return err
	}
	if !fileutil.IsRegularFile(tmp) {
		return fmt.Errorf("%s: %w", key, ErrNoOutput)
	}
	if key.sharesName() {
		if err := fileutil.WriteFileAtomic(OwnerMarker(location), []byte(key.ID), 0o644); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("record artifact owner: %w", err)
		}
	}
	if err := os.Rename(tmp, location); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("publish artifact: %w", err)
	}

	logger.Info("artifact published", logging.Duration("elapsed", time.Since(started)))
	return nil
}

// checkOwner rejects a published shared-name artifact whose marker names a
// different ID. A missing marker counts as foreign.
func (s *Store) checkOwner(key Key, location string) error {
	if !key.sharesName() {
		return nil
	}
	data, err := os.ReadFile(OwnerMarker(location))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read artifact owner: %w", err)
	}
	if owner := strings.TrimSpace(string(data)); owner != string(key.ID) {
		logging.WarnWithContext(s.logger, "artifact name owned by another source", "artifact_name_conflict",
			logging.String("key", key.String()),
			logging.String("location", location),
			logging.String("owner", owner),
			logging.String(logging.FieldErrorHint, "rename one of the source videos"),
			logging.String(logging.FieldImpact, "existing output left in place; request rejected"),
		)
		return fmt.Errorf("%s: %w", location, ErrLocationTaken)
	}
	return nil
}

// SweepPartials removes temp files left behind by a run that crashed
// mid-production.
func (s *Store) SweepPartials() (int, error) {
	total := 0
	for _, dir := range s.layout.Dirs() {
		n, err := fileutil.RemovePartials(dir)
		total += n
		if err != nil {
			return total, fmt.Errorf("sweep %s: %w", dir, err)
		}
	}
	if total > 0 {
		s.logger.Info("removed partial artifacts", logging.Int("count", total))
	}
	return total, nil
}
