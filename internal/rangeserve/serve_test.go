package rangeserve_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"repitch/internal/rangeserve"
)

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func serve(t *testing.T, method, path, rangeHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, "/audio", nil)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}
	rec := httptest.NewRecorder()
	if err := rangeserve.ServeFile(rec, req, path, "audio/wav"); err != nil {
		t.Fatalf("ServeFile: %v", err)
	}
	return rec.Result()
}

func TestServeFileResponses(t *testing.T) {
	path := writeSample(t)
	tests := []struct {
		name         string
		rangeHeader  string
		status       int
		body         string
		contentRange string
	}{
		{"full", "", http.StatusOK, "0123456789", ""},
		{"prefix", "bytes=0-3", http.StatusPartialContent, "0123", "bytes 0-3/10"},
		{"open ended", "bytes=6-", http.StatusPartialContent, "6789", "bytes 6-9/10"},
		{"suffix", "bytes=-2", http.StatusPartialContent, "89", "bytes 8-9/10"},
		{"start past end", "bytes=999999-", http.StatusPartialContent, "9", "bytes 9-9/10"},
		{"malformed falls back", "bytes=x-y", http.StatusOK, "0123456789", ""},
		{"multi range falls back", "bytes=0-1,4-5", http.StatusOK, "0123456789", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := serve(t, http.MethodGet, path, tt.rangeHeader)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			if resp.StatusCode != tt.status {
				t.Fatalf("status %d want %d", resp.StatusCode, tt.status)
			}
			if string(body) != tt.body {
				t.Fatalf("body %q want %q", body, tt.body)
			}
			if got := resp.Header.Get("Content-Range"); got != tt.contentRange {
				t.Fatalf("Content-Range %q want %q", got, tt.contentRange)
			}
			if resp.Header.Get("Accept-Ranges") != "bytes" {
				t.Fatal("missing Accept-Ranges")
			}
			if resp.Header.Get("Cache-Control") != "no-store" {
				t.Fatal("missing Cache-Control: no-store")
			}
			if resp.Header.Get("Content-Type") != "audio/wav" {
				t.Fatalf("unexpected Content-Type %q", resp.Header.Get("Content-Type"))
			}
		})
	}
}

func TestServeFilePartialContentLength(t *testing.T) {
	resp := serve(t, http.MethodGet, writeSample(t), "bytes=2-5")
	defer resp.Body.Close()
	if resp.Header.Get("Content-Length") != "4" {
		t.Fatalf("unexpected Content-Length %q", resp.Header.Get("Content-Length"))
	}
}

func TestServeFileHeadHasNoBody(t *testing.T) {
	resp := serve(t, http.MethodHead, writeSample(t), "bytes=0-3")
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusPartialContent || len(body) != 0 {
		t.Fatalf("unexpected HEAD response %d %q", resp.StatusCode, body)
	}
}

func TestServeFileMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/audio", nil)
	rec := httptest.NewRecorder()
	if err := rangeserve.ServeFile(rec, req, filepath.Join(t.TempDir(), "nope.wav"), "audio/wav"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
