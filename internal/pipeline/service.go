package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"repitch/internal/artifact"
	"repitch/internal/fileutil"
	"repitch/internal/library"
	"repitch/internal/logging"
	"repitch/internal/media/duration"
	"repitch/internal/mediaid"
	"repitch/internal/tools"
)

// Semitone bounds accepted by PitchShift and StoreVideo.
const (
	MinSemitones = -8
	MaxSemitones = 8
)

const (
	defaultThumbnailOffset  = 1.0
	defaultThumbnailWorkers = 4
)

// RootLister supplies the registered search roots.
type RootLister interface {
	List() []string
}

// Dependencies are the collaborators a Service drives.
type Dependencies struct {
	Store     *artifact.Store
	Tools     tools.Adapter
	Durations *duration.Prober
	Roots     RootLister
	Walker    *library.Walker
	Logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithThumbnailOffset sets where frame grabs are taken, in seconds.
func WithThumbnailOffset(seconds float64) Option {
	return func(s *Service) {
		if seconds >= 0 {
			s.thumbOffset = seconds
		}
	}
}

// WithThumbnailWorkers bounds concurrent thumbnail generation during listing.
func WithThumbnailWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.thumbWorkers = n
		}
	}
}

// Service implements the pipeline operations.
type Service struct {
	store        *artifact.Store
	tools        tools.Adapter
	durations    *duration.Prober
	roots        RootLister
	walker       *library.Walker
	logger       *slog.Logger
	thumbOffset  float64
	thumbWorkers int
}

// NewService wires a Service. Store, Tools, Roots and Walker are required;
// a nil Durations gets the default header-then-ffprobe chain.
func NewService(deps Dependencies, opts ...Option) (*Service, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("pipeline: artifact store required")
	case deps.Tools == nil:
		return nil, errors.New("pipeline: tool adapter required")
	case deps.Roots == nil:
		return nil, errors.New("pipeline: root registry required")
	case deps.Walker == nil:
		return nil, errors.New("pipeline: library walker required")
	}
	if deps.Durations == nil {
		deps.Durations = duration.NewProber(deps.Logger, duration.WAVHeader(), duration.FFprobe(deps.Tools))
	}
	s := &Service{
		store:        deps.Store,
		tools:        deps.Tools,
		durations:    deps.Durations,
		roots:        deps.Roots,
		walker:       deps.Walker,
		logger:       logging.NewComponentLogger(deps.Logger, "pipeline"),
		thumbOffset:  defaultThumbnailOffset,
		thumbWorkers: defaultThumbnailWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AudioResult describes a playable audio artifact.
type AudioResult struct {
	ID        mediaid.ID
	Semitones int
	Path      string
	// Filename is the source video's base name; empty when the video was not consulted.
	Filename string
	// DurationSeconds is nil when no probe could determine it.
	DurationSeconds *float64
}

// Duration renders DurationSeconds for display.
func (r AudioResult) Duration() string { return FormatDuration(r.DurationSeconds) }

// VideoInfo identifies a source video.
type VideoInfo struct {
	ID       mediaid.ID
	Filename string
	Path     string
}

// ExtractAudio derives the base WAV track of the video identified by id.
func (s *Service) ExtractAudio(ctx context.Context, id mediaid.ID) (AudioResult, error) {
	video, err := s.resolveVideo(id)
	if err != nil {
		return AudioResult{}, err
	}
	location, err := s.store.Ensure(ctx, artifact.BaseAudio(id), func(ctx context.Context, tmp string) error {
		return s.tools.ExtractAudio(ctx, video, tmp)
	})
	if err != nil {
		return AudioResult{}, err
	}
	return AudioResult{
		ID:              id,
		Path:            location,
		Filename:        filepath.Base(video),
		DurationSeconds: s.probe(ctx, location),
	}, nil
}

// PitchShift derives the base track shifted by semitones. A zero shift is the
// base track itself. The base track must already exist.
func (s *Service) PitchShift(ctx context.Context, id mediaid.ID, semitones int) (AudioResult, error) {
	if err := checkSemitones(semitones); err != nil {
		return AudioResult{}, err
	}
	if err := mediaid.Validate(id); err != nil {
		return AudioResult{}, invalidArgument(msgInvalidID)
	}
	base, err := s.store.Resolve(artifact.BaseAudio(id))
	if err != nil {
		return AudioResult{}, invalidArgument(msgInvalidID)
	}
	if !fileutil.IsRegularFile(base) {
		return AudioResult{}, preconditionFailed(msgBaseMissing)
	}
	if semitones == 0 {
		return AudioResult{ID: id, Path: base, DurationSeconds: s.probe(ctx, base)}, nil
	}

	location, err := s.store.Ensure(ctx, artifact.PitchedAudio(id, semitones), func(ctx context.Context, tmp string) error {
		return s.tools.PitchShift(ctx, base, tmp, semitones)
	})
	if err != nil {
		return AudioResult{}, err
	}
	return AudioResult{
		ID:              id,
		Semitones:       semitones,
		Path:            location,
		DurationSeconds: s.probe(ctx, location, base),
	}, nil
}

// StoreVideo muxes the base (semitones == 0) or pitched track into a copy of
// the source video in the downloads directory and returns its location.
func (s *Service) StoreVideo(ctx context.Context, id mediaid.ID, semitones int) (string, error) {
	video, err := s.resolveVideo(id)
	if err != nil {
		return "", err
	}
	if err := checkSemitones(semitones); err != nil {
		return "", err
	}
	sourceKey := artifact.BaseAudio(id)
	if semitones != 0 {
		sourceKey = artifact.PitchedAudio(id, semitones)
	}
	source, err := s.store.Resolve(sourceKey)
	if err != nil {
		return "", invalidArgument(msgInvalidID)
	}
	if !fileutil.IsRegularFile(source) {
		return "", preconditionFailed(msgSourceMissing)
	}

	out, err := s.store.Ensure(ctx, artifact.MuxedOutput(id, semitones), func(ctx context.Context, tmp string) error {
		return s.tools.Mux(ctx, video, source, tmp)
	})
	if errors.Is(err, artifact.ErrLocationTaken) {
		return "", preconditionFailed(msgOutputNameTaken)
	}
	return out, err
}

// AudioMeta reports the duration of the extracted base track.
func (s *Service) AudioMeta(ctx context.Context, id mediaid.ID) (AudioResult, error) {
	if err := mediaid.Validate(id); err != nil {
		return AudioResult{}, invalidArgument(msgInvalidID)
	}
	base, err := s.store.Resolve(artifact.BaseAudio(id))
	if err != nil {
		return AudioResult{}, invalidArgument(msgInvalidID)
	}
	if !fileutil.IsRegularFile(base) {
		return AudioResult{}, notFound(msgAudioNotExtracted)
	}
	return AudioResult{ID: id, Path: base, DurationSeconds: s.probe(ctx, base)}, nil
}

// AudioLocation returns the cached track to stream: the base track for a zero
// shift, otherwise the pitched track. Nothing is produced here.
func (s *Service) AudioLocation(_ context.Context, id mediaid.ID, semitones int) (string, error) {
	if err := mediaid.Validate(id); err != nil {
		return "", invalidArgument(msgInvalidID)
	}
	if err := checkSemitones(semitones); err != nil {
		return "", err
	}
	key := artifact.BaseAudio(id)
	if semitones != 0 {
		key = artifact.PitchedAudio(id, semitones)
	}
	location, err := s.store.Resolve(key)
	if err != nil {
		return "", invalidArgument(msgInvalidID)
	}
	if !fileutil.IsRegularFile(location) {
		return "", notFound(msgAudioNotFound)
	}
	return location, nil
}

// VideoInfo resolves id to its source video.
func (s *Service) VideoInfo(_ context.Context, id mediaid.ID) (VideoInfo, error) {
	video, err := s.resolveVideo(id)
	if err != nil {
		return VideoInfo{}, err
	}
	return VideoInfo{ID: id, Filename: filepath.Base(video), Path: video}, nil
}

// Thumbnail returns the video's thumbnail, generating it when missing. Every
// failure is reported as not found.
func (s *Service) Thumbnail(ctx context.Context, id mediaid.ID) (string, error) {
	video, err := mediaid.Decode(id)
	if err != nil {
		return "", notFound(msgThumbnailMissing)
	}
	location, err := s.ensureThumbnail(ctx, id, video)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "thumbnail unavailable", "thumbnail_failed",
			logging.String("video", video),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the video is readable by ffmpeg"),
			logging.String(logging.FieldImpact, "thumbnail request answered with 404"),
		)
		return "", notFound(msgThumbnailMissing)
	}
	return location, nil
}

func (s *Service) ensureThumbnail(ctx context.Context, id mediaid.ID, video string) (string, error) {
	return s.store.Ensure(ctx, artifact.Thumbnail(id), func(ctx context.Context, tmp string) error {
		return s.tools.GrabFrame(ctx, video, tmp, s.thumbOffset)
	})
}

func (s *Service) resolveVideo(id mediaid.ID) (string, error) {
	video, err := mediaid.Decode(id)
	if err != nil {
		return "", invalidArgument(msgInvalidID)
	}
	if !fileutil.IsRegularFile(video) {
		return "", notFound(msgVideoNotFound)
	}
	return video, nil
}

func (s *Service) probe(ctx context.Context, paths ...string) *float64 {
	seconds, ok := s.durations.Probe(ctx, paths...)
	if !ok {
		return nil
	}
	return &seconds
}

func checkSemitones(n int) error {
	if n < MinSemitones || n > MaxSemitones {
		return invalidArgument(msgSemitoneRange)
	}
	return nil
}
