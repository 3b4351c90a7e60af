package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dancing/backend/internal/apperr"
	"github.com/dancing/backend/internal/logging"
	"github.com/dancing/backend/internal/models"
	"github.com/dancing/backend/internal/repositories"
)

// FileOpener streams a stored object by key.
type FileOpener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
}

// FileHandler serves uploaded video assets. When a public base URL is
// configured the handler redirects to the object store; otherwise it streams
// the bytes through.
type FileHandler struct {
	Videos  VideoStore
	Opener  FileOpener
	BaseURL string
}

// Video handles GET /api/files/video?path=. Only assets that finished
// background persistence are served.
func (h FileHandler) Video(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key := strings.TrimSpace(r.URL.Query().Get("path"))
	if key == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "path is required"))
		return
	}

	video, err := h.Videos.FindByFilePath(ctx, key)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperr.New(apperr.KindNotFound, "file not found"))
			return
		}
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "load video", err))
		return
	}

	if video.AssetStatus != models.AssetStatusReady {
		respondError(ctx, w, apperr.New(apperr.KindNotFound, "file not available"))
		return
	}

	if h.BaseURL != "" {
		http.Redirect(w, r, fmt.Sprintf("%s/%s", strings.TrimSuffix(h.BaseURL, "/"), key), http.StatusFound)
		return
	}

	if h.Opener == nil {
		respondError(ctx, w, apperr.New(apperr.KindInternal, "file storage unavailable"))
		return
	}

	body, contentType, err := h.Opener.Open(ctx, key)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindNotFound, "file not found", err))
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, body); err != nil {
		logging.FromContext(ctx).Warn("stream file", "key", key, "error", err)
	}
}
