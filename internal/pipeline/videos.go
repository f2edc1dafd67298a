package pipeline

import (
	"context"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"repitch/internal/artifact"
	"repitch/internal/library"
	"repitch/internal/logging"
	"repitch/internal/mediaid"
)

// Video is a discovered source file.
type Video struct {
	ID             mediaid.ID
	Path           string
	Filename       string
	Title          string
	ThumbnailReady bool
}

// DiscoverVideos lists videos under every registered root without touching
// the artifact cache. A video reachable from overlapping roots is reported
// once, under the first root that found it.
func (s *Service) DiscoverVideos(ctx context.Context) ([]Video, error) {
	logger := logging.WithContext(ctx, s.logger)
	seen := make(map[mediaid.ID]struct{})
	var videos []Video
	for _, root := range s.roots.List() {
		paths, err := s.walker.FindVideos(ctx, root)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logging.WarnWithContext(logger, "search root walk incomplete", "root_walk_failed",
				logging.String("root", root),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the root's permissions"),
				logging.String(logging.FieldImpact, "some videos under this root are not listed"),
			)
		}
		for _, path := range paths {
			id := mediaid.Encode(path)
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			videos = append(videos, Video{
				ID:             id,
				Path:           path,
				Filename:       filepath.Base(path),
				Title:          library.DisplayTitle(path),
				ThumbnailReady: s.store.Exists(artifact.Thumbnail(id)),
			})
		}
	}
	return videos, nil
}

// ListVideos discovers videos and makes a best-effort attempt to generate any
// missing thumbnails. Thumbnail failures are logged and never fail the listing.
func (s *Service) ListVideos(ctx context.Context) ([]Video, error) {
	videos, err := s.DiscoverVideos(ctx)
	if err != nil {
		return nil, err
	}
	logger := logging.WithContext(ctx, s.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.thumbWorkers)
	for i := range videos {
		if videos[i].ThumbnailReady {
			continue
		}
		g.Go(func() error {
			video := &videos[i]
			if _, err := s.ensureThumbnail(gctx, video.ID, video.Path); err != nil {
				logging.WarnWithContext(logger, "thumbnail generation failed", "thumbnail_failed",
					logging.String("video", video.Path),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check that the video is readable by ffmpeg"),
					logging.String(logging.FieldImpact, "video listed without a thumbnail"),
				)
				return nil
			}
			video.ThumbnailReady = true
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Debug("listed videos", logging.Int("count", len(videos)))
	return videos, nil
}
