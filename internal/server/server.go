package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"repitch/internal/api"
	"repitch/internal/logging"
	"repitch/internal/mediaid"
	"repitch/internal/pipeline"
)

// Pipeline is the subset of pipeline.Service the handlers call.
type Pipeline interface {
	ListVideos(ctx context.Context) ([]pipeline.Video, error)
	ExtractAudio(ctx context.Context, id mediaid.ID) (pipeline.AudioResult, error)
	PitchShift(ctx context.Context, id mediaid.ID, semitones int) (pipeline.AudioResult, error)
	StoreVideo(ctx context.Context, id mediaid.ID, semitones int) (string, error)
	AudioMeta(ctx context.Context, id mediaid.ID) (pipeline.AudioResult, error)
	AudioLocation(ctx context.Context, id mediaid.ID, semitones int) (string, error)
	VideoInfo(ctx context.Context, id mediaid.ID) (pipeline.VideoInfo, error)
	Thumbnail(ctx context.Context, id mediaid.ID) (string, error)
}

// Roots manages the search-root registry.
type Roots interface {
	List() []string
	Add(root string) ([]string, error)
	Remove(root string) ([]string, error)
}

// StatusFunc reports runtime information for GET /api/status.
type StatusFunc func(ctx context.Context) api.ServerStatus

// Dependencies wires the server to the rest of the process.
type Dependencies struct {
	Pipeline Pipeline
	Roots    Roots
	Status   StatusFunc
	Logger   *slog.Logger
}

// Server owns the HTTP listener and router.
type Server struct {
	bind     string
	logger   *slog.Logger
	pipeline Pipeline
	roots    Roots
	status   StatusFunc
	validate *validator.Validate

	router   *mux.Router
	server   *http.Server
	listener net.Listener
}

// New builds a server bound to bind. Nothing listens until Start.
func New(bind string, deps Dependencies) (*Server, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, errors.New("server: bind address is required")
	}
	if deps.Pipeline == nil || deps.Roots == nil {
		return nil, errors.New("server: pipeline and roots are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &Server{
		bind:     bind,
		logger:   logging.NewComponentLogger(logger, "api-server"),
		pipeline: deps.Pipeline,
		roots:    deps.Roots,
		status:   deps.Status,
		validate: newValidator(),
	}
	s.router = s.routes()
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Tool runs and audio streams outlive any fixed write deadline.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on the bind address and serves until ctx is cancelled or
// Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		_ = s.Shutdown(context.Background())
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr is the bound address once Start succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting requests and waits up to five seconds for
// in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
