package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"repitch/internal/api"
	"repitch/internal/logging"
	"repitch/internal/mediaid"
	"repitch/internal/rangeserve"
	"repitch/internal/roots"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, api.HealthResponse{OK: true})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.status == nil {
		s.writeJSON(w, http.StatusOK, api.ServerStatus{Running: true, Roots: s.roots.List()})
		return
	}
	s.writeJSON(w, http.StatusOK, s.status(r.Context()))
}

func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := s.pipeline.ListVideos(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.VideoListResponse{Videos: api.FromVideos(videos)})
}

func (s *Server) handleListPaths(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, api.PathsResponse{Paths: nonNil(s.roots.List())})
}

func (s *Server) handleAddPath(w http.ResponseWriter, r *http.Request) {
	s.mutatePaths(w, r, s.roots.Add)
}

func (s *Server) handleRemovePath(w http.ResponseWriter, r *http.Request) {
	s.mutatePaths(w, r, s.roots.Remove)
}

func (s *Server) mutatePaths(w http.ResponseWriter, r *http.Request, op func(string) ([]string, error)) {
	var req api.PathRequest
	if !s.decode(w, r, &req) {
		return
	}
	paths, err := op(req.Path)
	if err != nil {
		if errors.Is(err, roots.ErrEmptyPath) {
			s.writeError(w, http.StatusBadRequest, "Missing 'path'")
			return
		}
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.PathsResponse{OK: true, Paths: nonNil(paths)})
}

func (s *Server) handleExtractAudio(w http.ResponseWriter, r *http.Request) {
	var req api.ExtractAudioRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.pipeline.ExtractAudio(r.Context(), mediaid.ID(req.ID))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromAudioResult(res))
}

func (s *Server) handlePitch(w http.ResponseWriter, r *http.Request) {
	var req api.PitchRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.pipeline.PitchShift(r.Context(), mediaid.ID(req.ID), int(req.Semitones))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromAudioResult(res))
}

func (s *Server) handleStoreVideo(w http.ResponseWriter, r *http.Request) {
	var req api.PitchRequest
	if !s.decode(w, r, &req) {
		return
	}
	out, err := s.pipeline.StoreVideo(r.Context(), mediaid.ID(req.ID), int(req.Semitones))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.StoreVideoResponse{OK: true, OutputPath: out})
}

func (s *Server) handleAudioMeta(w http.ResponseWriter, r *http.Request) {
	res, err := s.pipeline.AudioMeta(r.Context(), mediaid.ID(mux.Vars(r)["id"]))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.AudioMetaResponse{
		DurationSeconds: res.DurationSeconds,
		Duration:        res.Duration(),
	})
}

func (s *Server) handleVideoInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.pipeline.VideoInfo(r.Context(), mediaid.ID(mux.Vars(r)["id"]))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromVideoInfo(info))
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	id := strings.TrimSpace(query.Get("id"))
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "Missing 'id'")
		return
	}
	semitones := 0
	if raw := strings.TrimSpace(query.Get("pitch")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "'pitch' must be an integer")
			return
		}
		semitones = n
	}
	location, err := s.pipeline.AudioLocation(r.Context(), mediaid.ID(id), semitones)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.serveFile(w, r, location, "audio/wav")
}

func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	location, err := s.pipeline.Thumbnail(r.Context(), mediaid.ID(mux.Vars(r)["id"]))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.serveFile(w, r, location, "image/jpeg")
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, location, contentType string) {
	if err := rangeserve.ServeFile(w, r, location, contentType); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.writeError(w, http.StatusNotFound, "File not found")
			return
		}
		// Headers may already be sent; the client sees a truncated body.
		logging.WithContext(r.Context(), s.logger).Debug("file stream interrupted",
			logging.String("path", location),
			logging.Error(err),
		)
	}
}

// decode reads a JSON body into dst and validates it. On failure the error
// response has already been written.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, requestErrorMessage(err))
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

// fail maps err onto a status code and logs server-side failures.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.ErrorWithContext(logging.WithContext(r.Context(), s.logger), "request failed", "request_failed",
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
			logging.Error(err),
		)
	}
	s.writeError(w, status, message)
}

// validationMessage renders the first failed field the way clients expect:
// a missing required field reads "Missing '<name>'".
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0]
		if field.Tag() == "required" {
			return fmt.Sprintf("Missing '%s'", field.Field())
		}
		return fmt.Sprintf("Invalid '%s'", field.Field())
	}
	return "Invalid request"
}

func requestErrorMessage(err error) string {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return "Request body too large"
	}
	if msg := err.Error(); strings.Contains(msg, "'semitones'") {
		return msg
	}
	return "Invalid JSON body"
}

func nonNil(paths []string) []string {
	if paths == nil {
		return []string{}
	}
	return paths
}
