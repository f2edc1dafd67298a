package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"repitch/internal/api"
	"repitch/internal/artifact"
	"repitch/internal/config"
	"repitch/internal/library"
	"repitch/internal/logging"
	"repitch/internal/mediaid"
	"repitch/internal/pipeline"
	"repitch/internal/roots"
	"repitch/internal/server"
	"repitch/internal/testsupport"
	"repitch/internal/tools"
)

type harness struct {
	cfg     *config.Config
	adapter *testsupport.FakeAdapter
	roots   *roots.Registry
	handler http.Handler
	media   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	adapter := &testsupport.FakeAdapter{AudioSeconds: 3}
	logger := logging.NewNop()
	registry := roots.Open(cfg.Paths.RootsFile, logger)
	store := artifact.NewStore(artifact.Layout{CacheDir: cfg.Paths.CacheDir, DownloadsDir: cfg.Paths.DownloadsDir}, logger)
	svc, err := pipeline.NewService(pipeline.Dependencies{
		Store:  store,
		Tools:  adapter,
		Roots:  registry,
		Walker: library.NewWalker(cfg.Library.VideoExtensions, logger),
		Logger: logger,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	srv, err := server.New(cfg.Paths.APIBind, server.Dependencies{
		Pipeline: svc,
		Roots:    registry,
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	return &harness{
		cfg:     cfg,
		adapter: adapter,
		roots:   registry,
		handler: srv.Handler(),
		media:   filepath.Join(testsupport.BaseDir(cfg), "media"),
	}
}

func (h *harness) video(t *testing.T, name string) mediaid.ID {
	t.Helper()
	path := filepath.Join(h.media, name)
	testsupport.WriteFile(t, path, 128)
	return mediaid.Encode(path)
}

func (h *harness) do(t *testing.T, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	got := decodeBody[api.ErrorResponse](t, rec)
	if got.Error != message {
		t.Fatalf("expected error %q, got %q", message, got.Error)
	}
}

func TestHealthAndRequestID(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"ok":true}` {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
	if _, err := uuid.Parse(rec.Header().Get("X-Request-ID")); err != nil {
		t.Fatalf("expected uuid request id, got %q", rec.Header().Get("X-Request-ID"))
	}

	inbound := uuid.NewString()
	rec = h.do(t, http.MethodGet, "/healthz", "", "X-Request-ID", inbound)
	if rec.Header().Get("X-Request-ID") != inbound {
		t.Fatalf("expected inbound request id to be reused")
	}
	rec = h.do(t, http.MethodGet, "/healthz", "", "X-Request-ID", "not-a-uuid")
	if rec.Header().Get("X-Request-ID") == "not-a-uuid" {
		t.Fatalf("malformed request id should be replaced")
	}
}

func TestPathsLifecycle(t *testing.T) {
	h := newHarness(t)
	if err := os.MkdirAll(h.media, 0o755); err != nil {
		t.Fatal(err)
	}

	rec := h.do(t, http.MethodGet, "/api/paths", "")
	if strings.TrimSpace(rec.Body.String()) != `{"paths":[]}` {
		t.Fatalf("unexpected initial paths %s", rec.Body.String())
	}

	rec = h.do(t, http.MethodPost, "/api/paths", `{"path":"`+h.media+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add path: %d %s", rec.Code, rec.Body.String())
	}
	added := decodeBody[api.PathsResponse](t, rec)
	if !added.OK || len(added.Paths) != 1 {
		t.Fatalf("unexpected add response %+v", added)
	}

	rec = h.do(t, http.MethodDelete, "/api/paths", `{"path":"`+h.media+`"}`)
	removed := decodeBody[api.PathsResponse](t, rec)
	if !removed.OK || len(removed.Paths) != 0 {
		t.Fatalf("unexpected remove response %+v", removed)
	}

	requireError(t, h.do(t, http.MethodPost, "/api/paths", `{}`), http.StatusBadRequest, "Missing 'path'")
	requireError(t, h.do(t, http.MethodPost, "/api/paths", `{"path":"   "}`), http.StatusBadRequest, "Missing 'path'")
	requireError(t, h.do(t, http.MethodDelete, "/api/paths", ""), http.StatusBadRequest, "Missing 'path'")
	requireError(t, h.do(t, http.MethodPost, "/api/paths", `{"path":`), http.StatusBadRequest, "Invalid JSON body")
}

func TestVideosListing(t *testing.T) {
	h := newHarness(t)
	id := h.video(t, "my_song-live.mp4")
	if _, err := h.roots.Add(h.media); err != nil {
		t.Fatalf("add root: %v", err)
	}

	rec := h.do(t, http.MethodGet, "/api/videos", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("videos: %d %s", rec.Code, rec.Body.String())
	}
	list := decodeBody[api.VideoListResponse](t, rec)
	if len(list.Videos) != 1 {
		t.Fatalf("expected one video, got %+v", list.Videos)
	}
	got := list.Videos[0]
	if got.ID != string(id) || got.Filename != "my_song-live.mp4" || got.Thumbnail != "/thumbs/"+string(id)+".jpg" {
		t.Fatalf("unexpected summary %+v", got)
	}
}

func TestExtractPitchStreamFlow(t *testing.T) {
	h := newHarness(t)
	id := h.video(t, "clip.mp4")

	requireError(t, h.do(t, http.MethodPost, "/api/pitch", `{"id":"`+string(id)+`","semitones":2}`),
		http.StatusConflict, "Base audio not extracted yet")

	rec := h.do(t, http.MethodPost, "/api/extract-audio", `{"id":"`+string(id)+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("extract: %d %s", rec.Code, rec.Body.String())
	}
	extracted := decodeBody[api.AudioResponse](t, rec)
	if !extracted.OK || extracted.Filename != "clip.mp4" || extracted.Duration != "00:03" {
		t.Fatalf("unexpected extract response %+v", extracted)
	}
	if extracted.AudioURL != api.AudioURL(id, 0) {
		t.Fatalf("unexpected audio url %q", extracted.AudioURL)
	}

	rec = h.do(t, http.MethodPost, "/api/pitch", `{"id":"`+string(id)+`","semitones":"-3"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("pitch: %d %s", rec.Code, rec.Body.String())
	}
	pitched := decodeBody[api.AudioResponse](t, rec)
	if pitched.AudioURL != api.AudioURL(id, -3) || pitched.DurationSeconds == nil {
		t.Fatalf("unexpected pitch response %+v", pitched)
	}
	if strings.Contains(rec.Body.String(), "filename") {
		t.Fatalf("pitch response should not carry a filename: %s", rec.Body.String())
	}

	rec = h.do(t, http.MethodGet, pitched.AudioURL, "", "Range", "bytes=0-9")
	if rec.Code != http.StatusPartialContent {
		t.Fatalf("expected 206, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "audio/wav" || rec.Body.Len() != 10 {
		t.Fatalf("unexpected ranged response %q len=%d", rec.Header().Get("Content-Type"), rec.Body.Len())
	}

	rec = h.do(t, http.MethodGet, "/api/audio-meta/"+string(id), "")
	meta := decodeBody[api.AudioMetaResponse](t, rec)
	if meta.Duration != "00:03" || meta.DurationSeconds == nil || *meta.DurationSeconds != 3 {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

func TestPitchValidation(t *testing.T) {
	h := newHarness(t)
	id := h.video(t, "clip.mp4")

	requireError(t, h.do(t, http.MethodPost, "/api/pitch", `{"semitones":1}`), http.StatusBadRequest, "Missing 'id'")
	requireError(t, h.do(t, http.MethodPost, "/api/pitch", `{"id":"`+string(id)+`","semitones":9}`),
		http.StatusBadRequest, "'semitones' must be between -8 and 8")
	requireError(t, h.do(t, http.MethodPost, "/api/pitch", `{"id":"!!","semitones":1}`),
		http.StatusBadRequest, "Invalid video id")
	rec := h.do(t, http.MethodPost, "/api/pitch", `{"id":"`+string(id)+`","semitones":"up"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric semitones, got %d", rec.Code)
	}
}

func TestExtractAudioErrors(t *testing.T) {
	h := newHarness(t)
	requireError(t, h.do(t, http.MethodPost, "/api/extract-audio", `{}`), http.StatusBadRequest, "Missing 'id'")
	requireError(t, h.do(t, http.MethodPost, "/api/extract-audio", `{"id":"`+string(mediaid.Encode("/nope/x.mp4"))+`"}`),
		http.StatusNotFound, "Video not found")

	id := h.video(t, "broken.mp4")
	h.adapter.Fail = map[string]error{tools.ToolAudioExtract: errors.New("Invalid data found")}
	rec := h.do(t, http.MethodPost, "/api/extract-audio", `{"id":"`+string(id)+`"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if msg := decodeBody[api.ErrorResponse](t, rec).Error; !strings.Contains(msg, "Invalid data found") {
		t.Fatalf("expected stderr in message, got %q", msg)
	}
}

func TestStoreVideo(t *testing.T) {
	h := newHarness(t)
	id := h.video(t, "take.mp4")

	requireError(t, h.do(t, http.MethodPost, "/api/store-video", `{"id":"`+string(id)+`","semitones":1}`),
		http.StatusConflict, "Requested audio not available. Generate it first.")

	h.do(t, http.MethodPost, "/api/extract-audio", `{"id":"`+string(id)+`"}`)
	h.do(t, http.MethodPost, "/api/pitch", `{"id":"`+string(id)+`","semitones":1}`)
	rec := h.do(t, http.MethodPost, "/api/store-video", `{"id":"`+string(id)+`","semitones":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("store: %d %s", rec.Code, rec.Body.String())
	}
	out := decodeBody[api.StoreVideoResponse](t, rec)
	if !out.OK || filepath.Dir(out.OutputPath) != h.cfg.Paths.DownloadsDir {
		t.Fatalf("unexpected store response %+v", out)
	}
	if _, err := os.Stat(out.OutputPath); err != nil {
		t.Fatalf("expected muxed output: %v", err)
	}
}

func TestAudioRouteErrors(t *testing.T) {
	h := newHarness(t)
	id := h.video(t, "clip.mp4")
	requireError(t, h.do(t, http.MethodGet, "/audio", ""), http.StatusBadRequest, "Missing 'id'")
	requireError(t, h.do(t, http.MethodGet, "/audio?id="+string(id)+"&pitch=0", ""), http.StatusNotFound, "Audio not found")
	requireError(t, h.do(t, http.MethodGet, "/audio?id="+string(id)+"&pitch=x", ""), http.StatusBadRequest, "'pitch' must be an integer")
	requireError(t, h.do(t, http.MethodGet, "/api/audio-meta/"+string(id), ""), http.StatusNotFound, "Audio not extracted")
}

func TestThumbnailAndVideoInfo(t *testing.T) {
	h := newHarness(t)
	id := h.video(t, "clip.mp4")

	rec := h.do(t, http.MethodGet, "/thumbs/"+string(id)+".jpg", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/jpeg" {
		t.Fatalf("unexpected thumbnail response %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	requireError(t, h.do(t, http.MethodGet, "/thumbs/"+string(mediaid.Encode("/gone.mp4"))+".jpg", ""),
		http.StatusNotFound, "Thumbnail not found")

	rec = h.do(t, http.MethodGet, "/api/video-info/"+string(id), "")
	info := decodeBody[api.VideoInfoResponse](t, rec)
	if info.Filename != "clip.mp4" || info.Path != filepath.Join(h.media, "clip.mp4") {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestMethodAndRouteFallbacks(t *testing.T) {
	h := newHarness(t)
	notAllowed := h.do(t, http.MethodPut, "/api/paths", "")
	requireError(t, notAllowed, http.StatusMethodNotAllowed, "method not allowed")
	missing := h.do(t, http.MethodGet, "/api/nothing", "")
	requireError(t, missing, http.StatusNotFound, "not found")

	for _, rec := range []*httptest.ResponseRecorder{notAllowed, missing} {
		if _, err := uuid.Parse(rec.Header().Get("X-Request-ID")); err != nil {
			t.Fatalf("fallback response lacks a request id: %q", rec.Header().Get("X-Request-ID"))
		}
	}
	inbound := uuid.NewString()
	rec := h.do(t, http.MethodGet, "/api/nothing", "", "X-Request-ID", inbound)
	if got := rec.Header().Get("X-Request-ID"); got != inbound {
		t.Fatalf("inbound request id not echoed on 404: %q", got)
	}
}

func TestStatusUsesProvider(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	logger := logging.NewNop()
	registry := roots.Open(cfg.Paths.RootsFile, logger)
	srv, err := server.New("127.0.0.1:0", server.Dependencies{
		Pipeline: stubPipeline{},
		Roots:    registry,
		Status: func(context.Context) api.ServerStatus {
			return api.ServerStatus{Running: true, PID: 42}
		},
	})
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	if err := srv.Start(t.Context()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer srv.Shutdown(context.Background())

	resp, err := http.Get("http://" + srv.Addr() + "/api/status")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	defer resp.Body.Close()
	var status api.ServerStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.Running || status.PID != 42 {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := server.New("", server.Dependencies{}); err == nil {
		t.Fatal("expected error for empty bind")
	}
	if _, err := server.New("127.0.0.1:0", server.Dependencies{}); err == nil {
		t.Fatal("expected error for missing pipeline")
	}
}

type stubPipeline struct{ server.Pipeline }
