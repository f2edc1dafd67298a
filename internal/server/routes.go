package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"repitch/internal/logging"
)

const requestIDHeader = "X-Request-ID"

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestID)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/videos", s.handleVideos).Methods(http.MethodGet)
	r.HandleFunc("/api/paths", s.handleListPaths).Methods(http.MethodGet)
	r.HandleFunc("/api/paths", s.handleAddPath).Methods(http.MethodPost)
	r.HandleFunc("/api/paths", s.handleRemovePath).Methods(http.MethodDelete)
	r.HandleFunc("/api/extract-audio", s.handleExtractAudio).Methods(http.MethodPost)
	r.HandleFunc("/api/pitch", s.handlePitch).Methods(http.MethodPost)
	r.HandleFunc("/api/store-video", s.handleStoreVideo).Methods(http.MethodPost)
	r.HandleFunc("/api/audio-meta/{id}", s.handleAudioMeta).Methods(http.MethodGet)
	r.HandleFunc("/api/video-info/{id}", s.handleVideoInfo).Methods(http.MethodGet)
	r.HandleFunc("/audio", s.handleAudio).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/thumbs/{id}.jpg", s.handleThumbnail).Methods(http.MethodGet, http.MethodHead)

	// Router middleware only wraps matched routes.
	r.NotFoundHandler = s.requestID(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusNotFound, "not found")
	}))
	r.MethodNotAllowedHandler = s.requestID(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}))
	return r
}

// requestID tags each request with a UUID, reusing a well-formed inbound one.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := logging.WithRequestID(r.Context(), id)
		logging.WithContext(ctx, s.logger).Debug("request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
