package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dancing/backend/internal/apperr"
	"github.com/dancing/backend/internal/logging"
	"github.com/dancing/backend/internal/models"
	"github.com/dancing/backend/internal/policy"
	"github.com/dancing/backend/internal/repositories"
)

// maxUploadBytes bounds the multipart body accepted by the upload endpoint.
const maxUploadBytes = 512 << 20

// VideoHandler implements the video catalogue and upload endpoints. Uploads
// are staged to a temp file and handed to the ingestor; the caller gets the
// pending record immediately.
type VideoHandler struct {
	Videos   VideoStore
	Identity IdentityResolver
	Ingestor AssetIngestor
	NowFunc  func() time.Time
}

// List handles GET /api/videos.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videos, err := h.Videos.ListAll(ctx)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "list videos", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, videosPayload(videos))
}

// Detail handles GET /api/videos/{id}.
func (h VideoHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, err := h.Videos.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperr.New(apperr.KindNotFound, "video not found"))
			return
		}
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "load video", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, video)
}

// Search handles GET /api/videos/search?keyword=.
func (h VideoHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	if keyword == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "keyword is required"))
		return
	}

	videos, err := h.Videos.Search(ctx, keyword)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "search videos", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, videosPayload(videos))
}

// Mine handles GET /api/videos/my.
func (h VideoHandler) Mine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.Identity.Resolve(ctx)
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
		return
	}

	videos, err := h.Videos.ListByUploader(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "list videos", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, videosPayload(videos))
}

// Upload handles POST /api/videos/upload.
func (h VideoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := h.Identity.Resolve(ctx)
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
		return
	}

	if h.Ingestor == nil {
		logger.Error("upload rejected, no asset ingestor configured")
		respondError(ctx, w, apperr.New(apperr.KindInternal, "video uploads unavailable"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindBadRequest, "invalid multipart body", err))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "title is required"))
		return
	}
	description := strings.TrimSpace(r.FormValue("description"))

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindBadRequest, "video file is required", err))
		return
	}
	defer file.Close()

	if !isVideoContentType(header.Header.Get("Content-Type"), header.Filename) {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "file must be a video"))
		return
	}

	videoID := uuid.NewString()
	ext := path.Ext(header.Filename)
	if ext == "" {
		ext = ".mp4"
	}
	key := fmt.Sprintf("videos/%s%s", videoID, ext)

	stagedPath, err := stageUpload(file)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "stage upload", err))
		return
	}

	video := models.Video{
		ID:           videoID,
		Title:        title,
		Description:  description,
		FilePath:     key,
		UploaderID:   user.ID,
		UploaderName: user.Username,
		AssetStatus:  models.AssetStatusPending,
		CreatedAt:    h.now(),
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		_ = os.Remove(stagedPath)
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "create video", err))
		return
	}

	if err := h.Ingestor.Enqueue(ctx, videoID, key, stagedPath); err != nil {
		logger.Error("enqueue upload", "videoId", videoID, "error", err)
		_ = os.Remove(stagedPath)
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "schedule upload", err))
		return
	}

	logger.Info("video upload accepted", "videoId", videoID, "userId", user.ID, "key", key)
	respondJSON(ctx, w, http.StatusAccepted, video)
}

// Delete handles DELETE /api/videos/{id}. Uploader-only, existence first.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.Identity.Resolve(ctx)
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
		return
	}

	id := r.PathValue("id")
	video, err := h.Videos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperr.New(apperr.KindNotFound, "video not found"))
			return
		}
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "load video", err))
		return
	}

	if !policy.CanModify(user.ID, video.UploaderID) {
		respondError(ctx, w, apperr.New(apperr.KindForbidden, "not the uploader of this video"))
		return
	}

	if err := h.Videos.Delete(ctx, id); err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "delete video", err))
		return
	}

	logging.FromContext(ctx).Info("video deleted", "videoId", id, "userId", user.ID)
	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

func stageUpload(file io.Reader) (string, error) {
	staged, err := os.CreateTemp("", "dancing-upload-*")
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(staged, file); err != nil {
		staged.Close()
		os.Remove(staged.Name())
		return "", err
	}
	if err := staged.Close(); err != nil {
		os.Remove(staged.Name())
		return "", err
	}
	return staged.Name(), nil
}

func isVideoContentType(contentType, filename string) bool {
	if strings.HasPrefix(contentType, "video/") {
		return true
	}
	if guessed := mime.TypeByExtension(path.Ext(filename)); strings.HasPrefix(guessed, "video/") {
		return true
	}
	return false
}

func videosPayload(videos []models.Video) []models.Video {
	if videos == nil {
		return []models.Video{}
	}
	return videos
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
