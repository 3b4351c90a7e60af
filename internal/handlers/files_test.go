package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dancing/backend/internal/models"
)

type openerStub struct {
	contents string
	err      error
}

func (s openerStub) Open(context.Context, string) (io.ReadCloser, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return io.NopCloser(strings.NewReader(s.contents)), "video/mp4", nil
}

func TestFileHandlerRedirectsToObjectStore(t *testing.T) {
	store := newInMemoryVideoStore()
	store.videos["video-1"] = models.Video{ID: "video-1", FilePath: "videos/video-1.mp4", AssetStatus: models.AssetStatusReady}

	handler := FileHandler{Videos: store, BaseURL: "https://cdn.example.com"}

	req := httptest.NewRequest(http.MethodGet, "/api/files/video?path=videos/video-1.mp4", nil)
	rec := httptest.NewRecorder()

	handler.Video(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected status %d got %d", http.StatusFound, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://cdn.example.com/videos/video-1.mp4" {
		t.Fatalf("unexpected redirect location %q", loc)
	}
}

func TestFileHandlerStreamsWithoutBaseURL(t *testing.T) {
	store := newInMemoryVideoStore()
	store.videos["video-1"] = models.Video{ID: "video-1", FilePath: "videos/video-1.mp4", AssetStatus: models.AssetStatusReady}

	handler := FileHandler{Videos: store, Opener: openerStub{contents: "bytes"}}

	req := httptest.NewRequest(http.MethodGet, "/api/files/video?path=videos/video-1.mp4", nil)
	rec := httptest.NewRecorder()

	handler.Video(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if rec.Body.String() != "bytes" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "video/mp4" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestFileHandlerPendingAssetIsNotServed(t *testing.T) {
	store := newInMemoryVideoStore()
	store.videos["video-1"] = models.Video{ID: "video-1", FilePath: "videos/video-1.mp4", AssetStatus: models.AssetStatusPending}

	handler := FileHandler{Videos: store, BaseURL: "https://cdn.example.com"}

	req := httptest.NewRequest(http.MethodGet, "/api/files/video?path=videos/video-1.mp4", nil)
	rec := httptest.NewRecorder()

	handler.Video(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}

func TestFileHandlerUnknownPath(t *testing.T) {
	handler := FileHandler{Videos: newInMemoryVideoStore(), BaseURL: "https://cdn.example.com"}

	req := httptest.NewRequest(http.MethodGet, "/api/files/video?path=videos/missing.mp4", nil)
	rec := httptest.NewRecorder()

	handler.Video(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}

func TestFileHandlerRequiresPath(t *testing.T) {
	handler := FileHandler{Videos: newInMemoryVideoStore()}

	req := httptest.NewRequest(http.MethodGet, "/api/files/video", nil)
	rec := httptest.NewRecorder()

	handler.Video(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}
