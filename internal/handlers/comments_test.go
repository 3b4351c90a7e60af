package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dancing/backend/internal/models"
)

func commentRoute(t *testing.T, handler CommentHandler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/posts/{postId}/comments", handler.ListForPost)
	mux.HandleFunc("POST /api/posts/{postId}/comments", handler.CreateForPost)
	mux.HandleFunc("GET /api/videos/{videoId}/comments", handler.ListForVideo)
	mux.HandleFunc("POST /api/videos/{videoId}/comments", handler.CreateForVideo)
	mux.HandleFunc("DELETE /api/comments/{id}", handler.Delete)

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestCommentHandlerCreateForPost(t *testing.T) {
	posts := newInMemoryPostStore()
	posts.posts["post-1"] = models.Post{ID: "post-1", UserID: "owner"}
	comments := newInMemoryCommentStore()

	handler := CommentHandler{
		Comments: comments,
		Posts:    posts,
		Videos:   newInMemoryVideoStore(),
		Identity: identityAs(models.User{ID: "user-1", Username: "alice"}),
	}

	body, _ := json.Marshal(commentRequest{Content: "Nice one"})
	rec := commentRoute(t, handler, http.MethodPost, "/api/posts/post-1/comments", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d", http.StatusCreated, rec.Code)
	}

	var resp models.Comment
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.PostID != "post-1" || resp.AuthorName != "alice" {
		t.Fatalf("unexpected comment: %+v", resp)
	}
	if len(comments.comments) != 1 {
		t.Fatalf("expected one stored comment, got %d", len(comments.comments))
	}
}

func TestCommentHandlerCreateForMissingPost(t *testing.T) {
	handler := CommentHandler{
		Comments: newInMemoryCommentStore(),
		Posts:    newInMemoryPostStore(),
		Videos:   newInMemoryVideoStore(),
		Identity: identityAs(models.User{ID: "user-1"}),
	}

	body, _ := json.Marshal(commentRequest{Content: "Hello"})
	rec := commentRoute(t, handler, http.MethodPost, "/api/posts/missing/comments", body)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}

func TestCommentHandlerCreateRejectsEmptyContent(t *testing.T) {
	posts := newInMemoryPostStore()
	posts.posts["post-1"] = models.Post{ID: "post-1"}

	handler := CommentHandler{
		Comments: newInMemoryCommentStore(),
		Posts:    posts,
		Videos:   newInMemoryVideoStore(),
		Identity: identityAs(models.User{ID: "user-1"}),
	}

	body, _ := json.Marshal(commentRequest{Content: "   "})
	rec := commentRoute(t, handler, http.MethodPost, "/api/posts/post-1/comments", body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestCommentHandlerCreateForVideo(t *testing.T) {
	videos := newInMemoryVideoStore()
	videos.videos["video-1"] = models.Video{ID: "video-1", UploaderID: "owner"}

	handler := CommentHandler{
		Comments: newInMemoryCommentStore(),
		Posts:    newInMemoryPostStore(),
		Videos:   videos,
		Identity: identityAs(models.User{ID: "user-1", Username: "alice"}),
	}

	body, _ := json.Marshal(commentRequest{Content: "Great clip"})
	rec := commentRoute(t, handler, http.MethodPost, "/api/videos/video-1/comments", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d", http.StatusCreated, rec.Code)
	}

	var resp models.Comment
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.VideoID != "video-1" || resp.PostID != "" {
		t.Fatalf("comment should target the video only: %+v", resp)
	}
}

func TestCommentHandlerDeleteByNonAuthorIsForbidden(t *testing.T) {
	comments := newInMemoryCommentStore()
	comments.comments["comment-1"] = models.Comment{ID: "comment-1", UserID: "author"}

	handler := CommentHandler{
		Comments: comments,
		Posts:    newInMemoryPostStore(),
		Videos:   newInMemoryVideoStore(),
		Identity: identityAs(models.User{ID: "intruder"}),
	}

	rec := commentRoute(t, handler, http.MethodDelete, "/api/comments/comment-1", nil)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d got %d", http.StatusForbidden, rec.Code)
	}
	if _, ok := comments.comments["comment-1"]; !ok {
		t.Fatal("comment must not be deleted")
	}
}

func TestCommentHandlerDeleteByAuthor(t *testing.T) {
	comments := newInMemoryCommentStore()
	comments.comments["comment-1"] = models.Comment{ID: "comment-1", UserID: "author"}

	handler := CommentHandler{
		Comments: comments,
		Posts:    newInMemoryPostStore(),
		Videos:   newInMemoryVideoStore(),
		Identity: identityAs(models.User{ID: "author"}),
	}

	rec := commentRoute(t, handler, http.MethodDelete, "/api/comments/comment-1", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if _, ok := comments.comments["comment-1"]; ok {
		t.Fatal("comment should be deleted")
	}
}

func TestCommentHandlerListEmpty(t *testing.T) {
	handler := CommentHandler{
		Comments: newInMemoryCommentStore(),
		Posts:    newInMemoryPostStore(),
		Videos:   newInMemoryVideoStore(),
		Identity: anonymous(),
	}

	rec := commentRoute(t, handler, http.MethodGet, "/api/posts/post-1/comments", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Fatalf("expected empty JSON array, got %q", got)
	}
}
