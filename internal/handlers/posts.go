package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dancing/backend/internal/apperr"
	"github.com/dancing/backend/internal/logging"
	"github.com/dancing/backend/internal/models"
	"github.com/dancing/backend/internal/policy"
	"github.com/dancing/backend/internal/repositories"
)

// PostHandler implements the text-post endpoints. Reads are public; the
// viewer's liked flags are populated whenever a valid token accompanied the
// request.
type PostHandler struct {
	Posts    PostStore
	Identity IdentityResolver
	NowFunc  func() time.Time
}

type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Create handles POST /api/posts/create.
func (h PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.Identity.Resolve(ctx)
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
		return
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindBadRequest, "invalid request body", err))
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if req.Title == "" || req.Content == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "title and content are required"))
		return
	}

	now := h.now()
	post := models.Post{
		ID:         uuid.NewString(),
		Title:      req.Title,
		Content:    req.Content,
		UserID:     user.ID,
		AuthorName: user.Username,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.Posts.Create(ctx, post); err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "create post", err))
		return
	}

	logging.FromContext(ctx).Info("post created", "postId", post.ID, "userId", user.ID)
	respondJSON(ctx, w, http.StatusCreated, post)
}

// List handles GET /api/posts/list.
func (h PostHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	posts, err := h.Posts.ListAll(ctx, h.viewerID(r))
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "list posts", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, postsPayload(posts))
}

// Detail handles GET /api/posts/{id}.
func (h PostHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	post, err := h.Posts.FindByID(ctx, r.PathValue("id"), h.viewerID(r))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperr.New(apperr.KindNotFound, "post not found"))
			return
		}
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "load post", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, post)
}

// Mine handles GET /api/posts/my.
func (h PostHandler) Mine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.Identity.Resolve(ctx)
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
		return
	}

	posts, err := h.Posts.ListByUser(ctx, user.ID, user.ID)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "list posts", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, postsPayload(posts))
}

// ByUser handles GET /api/posts/user/{userId}.
func (h PostHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	posts, err := h.Posts.ListByUser(ctx, r.PathValue("userId"), h.viewerID(r))
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "list posts", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, postsPayload(posts))
}

// Search handles GET /api/posts/search?keyword=.
func (h PostHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	if keyword == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "keyword is required"))
		return
	}

	posts, err := h.Posts.Search(ctx, keyword, h.viewerID(r))
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "search posts", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, postsPayload(posts))
}

// Update handles PUT /api/posts/{id}. Only the author may edit; existence is
// checked before ownership so non-owners get 403, not 404.
func (h PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.Identity.Resolve(ctx)
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
		return
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindBadRequest, "invalid request body", err))
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if req.Title == "" || req.Content == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "title and content are required"))
		return
	}

	id := r.PathValue("id")
	post, err := h.Posts.FindByID(ctx, id, user.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperr.New(apperr.KindNotFound, "post not found"))
			return
		}
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "load post", err))
		return
	}

	if !policy.CanModify(user.ID, post.UserID) {
		respondError(ctx, w, apperr.New(apperr.KindForbidden, "not the author of this post"))
		return
	}

	if err := h.Posts.Update(ctx, id, req.Title, req.Content); err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "update post", err))
		return
	}

	post.Title = req.Title
	post.Content = req.Content
	post.UpdatedAt = h.now()
	respondJSON(ctx, w, http.StatusOK, post)
}

// Delete handles DELETE /api/posts/{id}.
func (h PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.Identity.Resolve(ctx)
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
		return
	}

	id := r.PathValue("id")
	post, err := h.Posts.FindByID(ctx, id, user.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperr.New(apperr.KindNotFound, "post not found"))
			return
		}
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "load post", err))
		return
	}

	if !policy.CanModify(user.ID, post.UserID) {
		respondError(ctx, w, apperr.New(apperr.KindForbidden, "not the author of this post"))
		return
	}

	if err := h.Posts.Delete(ctx, id); err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "delete post", err))
		return
	}

	logging.FromContext(ctx).Info("post deleted", "postId", id, "userId", user.ID)
	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ToggleLike handles POST /api/posts/{id}/like.
func (h PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.Identity.Resolve(ctx)
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
		return
	}

	liked, err := h.Posts.ToggleLike(ctx, r.PathValue("id"), user.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, apperr.New(apperr.KindNotFound, "post not found"))
			return
		}
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "toggle like", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]bool{"liked": liked})
}

// LikeUsers handles GET /api/posts/{id}/likes.
func (h PostHandler) LikeUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.Posts.LikeUsers(ctx, r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "list like users", err))
		return
	}

	if users == nil {
		users = []models.User{}
	}
	respondJSON(ctx, w, http.StatusOK, users)
}

// viewerID resolves the acting user when a token was supplied. Anonymous
// requests on public read paths view with no liked flags set.
func (h PostHandler) viewerID(r *http.Request) string {
	if user, ok := h.Identity.Resolve(r.Context()); ok {
		return user.ID
	}
	return ""
}

func postsPayload(posts []models.Post) []models.Post {
	if posts == nil {
		return []models.Post{}
	}
	return posts
}

func (h PostHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
