package roots

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"repitch/internal/config"
	"repitch/internal/fileutil"
	"repitch/internal/logging"
)

// ErrEmptyPath is returned for blank root paths.
var ErrEmptyPath = errors.New("root path cannot be empty")

type document struct {
	Paths []string `json:"paths"`
}

// Registry is the persisted search-root set.
type Registry struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger

	mu    sync.Mutex
	paths []string
}

// Open returns a registry backed by path. A missing file is an empty set; an
// unreadable one is logged and treated as empty until it can be read.
func Open(path string, logger *slog.Logger) *Registry {
	r := &Registry{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logging.NewComponentLogger(logger, "roots"),
	}
	r.mu.Lock()
	_ = r.withFileLock(func() error { return nil })
	r.mu.Unlock()
	return r
}

// Path returns the backing document location.
func (r *Registry) Path() string { return r.path }

// List returns the registered roots in insertion order.
func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.withFileLock(func() error { return nil })
	return slices.Clone(r.paths)
}

// Add registers root. Adding a root that is already present is a no-op.
func (r *Registry) Add(root string) ([]string, error) {
	normalized, err := Normalize(root)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	err = r.withFileLock(func() error {
		if slices.Contains(r.paths, normalized) {
			return nil
		}
		next := append(slices.Clone(r.paths), normalized)
		if err := r.save(next); err != nil {
			return err
		}
		r.paths = next
		r.logger.Info("search root added", logging.String("root", normalized))
		return nil
	})
	return slices.Clone(r.paths), err
}

// Remove unregisters root. Removing an unknown root is a no-op.
func (r *Registry) Remove(root string) ([]string, error) {
	normalized, err := Normalize(root)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	err = r.withFileLock(func() error {
		idx := slices.Index(r.paths, normalized)
		if idx < 0 {
			// Fall back to the spelling as given, unresolved.
			if expanded, err := config.ExpandPath(strings.TrimSpace(root)); err == nil {
				idx = slices.Index(r.paths, expanded)
			}
		}
		if idx < 0 {
			return nil
		}
		next := slices.Delete(slices.Clone(r.paths), idx, idx+1)
		if err := r.save(next); err != nil {
			return err
		}
		r.paths = next
		r.logger.Info("search root removed", logging.String("root", normalized))
		return nil
	})
	return slices.Clone(r.paths), err
}

// withFileLock reloads the document under the cross-process lock, then runs
// fn. Callers hold r.mu.
func (r *Registry) withFileLock(fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create roots directory: %w", err)
	}
	if err := r.lock.Lock(); err != nil {
		return fmt.Errorf("lock roots file: %w", err)
	}
	defer func() { _ = r.lock.Unlock() }()

	if err := r.load(); err != nil {
		logging.WarnWithContext(r.logger, "failed to load search roots", "roots_load_failed",
			logging.Error(err),
			logging.String("path", r.path),
			logging.String(logging.FieldErrorHint, "fix or delete the roots file"),
			logging.String(logging.FieldImpact, "using the last known search roots"),
		)
	}
	return fn()
}

func (r *Registry) load() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.paths = nil
			return nil
		}
		return fmt.Errorf("read roots file: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse roots file: %w", err)
	}
	paths := make([]string, 0, len(doc.Paths))
	for _, p := range doc.Paths {
		normalized, err := Normalize(p)
		if err != nil || slices.Contains(paths, normalized) {
			continue
		}
		paths = append(paths, normalized)
	}
	r.paths = paths
	return nil
}

func (r *Registry) save(paths []string) error {
	if paths == nil {
		paths = []string{}
	}
	data, err := json.MarshalIndent(document{Paths: paths}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode roots: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(r.path, data, 0o644); err != nil {
		return fmt.Errorf("persist roots: %w", err)
	}
	return nil
}

// maxLinkHops bounds dangling-link resolution in resolveSymlinks.
const maxLinkHops = 40

// Normalize expands ~, makes root absolute and clean, and resolves symlinks.
// Missing trailing components and dangling links resolve as far as the
// filesystem allows, so a root keeps its stored spelling after its directory
// is deleted.
func Normalize(root string) (string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return "", ErrEmptyPath
	}
	expanded, err := config.ExpandPath(root)
	if err != nil {
		return "", err
	}
	return resolveSymlinks(expanded, maxLinkHops), nil
}

func resolveSymlinks(path string, hops int) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	if hops > 0 {
		if target, err := os.Readlink(path); err == nil {
			if !filepath.IsAbs(target) {
				target = filepath.Join(filepath.Dir(path), target)
			}
			return resolveSymlinks(filepath.Clean(target), hops-1)
		}
	}
	parent := filepath.Dir(path)
	if parent == path {
		return path
	}
	return filepath.Join(resolveSymlinks(parent, hops), filepath.Base(path))
}
