package library

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"repitch/internal/fileutil"
	"repitch/internal/logging"
)

// Walker finds files whose extension is in its filter.
type Walker struct {
	extensions map[string]struct{}
	logger     *slog.Logger
}

// NewWalker builds a walker matching extensions case-insensitively. Entries
// may be given with or without the leading dot.
func NewWalker(extensions []string, logger *slog.Logger) *Walker {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return &Walker{extensions: set, logger: logging.NewComponentLogger(logger, "library")}
}

// Matches reports whether name carries a recognised video extension.
func (w *Walker) Matches(name string) bool {
	if fileutil.IsPartial(name) {
		return false
	}
	_, ok := w.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// FindVideos walks root recursively and returns matching files in lexical
// order. A missing root yields no files; unreadable subdirectories are skipped.
func (w *Walker) FindVideos(ctx context.Context, root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var found []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			w.logger.Debug("skipping unreadable path",
				logging.String("path", path),
				logging.Error(walkErr))
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && w.Matches(d.Name()) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return found, err
	}
	return found, nil
}
