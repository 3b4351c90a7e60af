package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dancing/backend/internal/apperr"
	"github.com/dancing/backend/internal/models"
	"github.com/dancing/backend/internal/policy"
	"github.com/dancing/backend/internal/repositories"
)

// CommentHandler implements comments on posts and videos.
type CommentHandler struct {
	Comments CommentStore
	Posts    PostStore
	Videos   VideoStore
	Identity IdentityResolver
	NowFunc  func() time.Time
}

type commentRequest struct {
	Content string `json:"content"`
}

// ListForPost handles GET /api/posts/{postId}/comments.
func (h CommentHandler) ListForPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comments, err := h.Comments.ListForPost(ctx, r.PathValue("postId"))
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "list comments", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, commentsPayload(comments))
}

// CreateForPost handles POST /api/posts/{postId}/comments.
func (h CommentHandler) CreateForPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.Identity.Resolve(ctx)
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
		return
	}

	content, err := decodeCommentContent(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	postID := r.PathValue("postId")
	if _, err := h.Posts.FindByID(ctx, postID, user.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperr.New(apperr.KindNotFound, "post not found"))
			return
		}
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "load post", err))
		return
	}

	comment := models.Comment{
		ID:         uuid.NewString(),
		Content:    content,
		UserID:     user.ID,
		AuthorName: user.Username,
		PostID:     postID,
		CreatedAt:  h.now(),
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "create comment", err))
		return
	}

	respondJSON(ctx, w, http.StatusCreated, comment)
}

// ListForVideo handles GET /api/videos/{videoId}/comments.
func (h CommentHandler) ListForVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comments, err := h.Comments.ListForVideo(ctx, r.PathValue("videoId"))
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "list comments", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, commentsPayload(comments))
}

// CreateForVideo handles POST /api/videos/{videoId}/comments.
func (h CommentHandler) CreateForVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.Identity.Resolve(ctx)
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
		return
	}

	content, err := decodeCommentContent(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	videoID := r.PathValue("videoId")
	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperr.New(apperr.KindNotFound, "video not found"))
			return
		}
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "load video", err))
		return
	}

	comment := models.Comment{
		ID:         uuid.NewString(),
		Content:    content,
		UserID:     user.ID,
		AuthorName: user.Username,
		VideoID:    videoID,
		CreatedAt:  h.now(),
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "create comment", err))
		return
	}

	respondJSON(ctx, w, http.StatusCreated, comment)
}

// Delete handles DELETE /api/comments/{id}. Author-only, existence first.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.Identity.Resolve(ctx)
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
		return
	}

	id := r.PathValue("id")
	comment, err := h.Comments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperr.New(apperr.KindNotFound, "comment not found"))
			return
		}
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "load comment", err))
		return
	}

	if !policy.CanModify(user.ID, comment.UserID) {
		respondError(ctx, w, apperr.New(apperr.KindForbidden, "not the author of this comment"))
		return
	}

	if err := h.Comments.Delete(ctx, id); err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "delete comment", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

func decodeCommentContent(r *http.Request) (string, error) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", apperr.Wrap(apperr.KindBadRequest, "invalid request body", err)
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return "", apperr.New(apperr.KindBadRequest, "content is required")
	}
	return content, nil
}

func commentsPayload(comments []models.Comment) []models.Comment {
	if comments == nil {
		return []models.Comment{}
	}
	return comments
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
