package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dancing/backend/internal/apperr"
	"github.com/dancing/backend/internal/logging"
	"github.com/dancing/backend/internal/models"
	"github.com/dancing/backend/internal/repositories"
)

// UserHandler implements account registration, login and profile endpoints.
type UserHandler struct {
	Users    UserStore
	Tokens   TokenIssuer
	Identity IdentityResolver
	Limiter  RateLimiter
	NowFunc  func() time.Time
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Register handles POST /api/user/register.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "register") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindBadRequest, "invalid request body", err))
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Username == "" || req.Password == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "username and password are required"))
		return
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			respondError(ctx, w, apperr.New(apperr.KindBadRequest, "invalid email address"))
			return
		}
	}
	if len(req.Password) < 6 {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "password must be at least 6 characters"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "hash password", err))
		return
	}

	now := h.now()
	user := models.User{
		ID:        uuid.NewString(),
		Username:  req.Username,
		Password:  string(hashed),
		Email:     req.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, apperr.New(apperr.KindConflict, "username already taken"))
			return
		}
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "create user", err))
		return
	}

	logger.Info("user registered", "userId", user.ID, "username", user.Username)
	respondJSON(ctx, w, http.StatusCreated, user)
}

// Login handles POST /api/user/login. Unknown usernames and wrong passwords
// produce the same response; no token is issued on either.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "login") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindBadRequest, "invalid request body", err))
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "username and password are required"))
		return
	}

	user, err := h.Users.FindByUsername(ctx, req.Username)
	if err != nil {
		logger.Warn("login user lookup failed", "username", req.Username, "error", err)
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.Warn("login password mismatch", "userId", user.ID)
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "invalid credentials"))
		return
	}

	token, err := h.Tokens.Issue(user.Username)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "issue token", err))
		return
	}

	respondJSON(ctx, w, http.StatusOK, loginResponse{Token: token, User: user})
}

// Current handles GET /api/user/current. The path is publicly reachable; the
// handler itself rejects anonymous callers.
func (h UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.Identity.Resolve(ctx)
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
		return
	}

	respondJSON(ctx, w, http.StatusOK, user)
}

// Logout handles POST /api/user/logout. Tokens are stateless, so logout is a
// client-side token deletion; the endpoint acknowledges and does nothing.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respondJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Update handles POST /api/user/update for the acting user's own profile.
func (h UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.Identity.Resolve(ctx)
	if !ok {
		respondError(ctx, w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindBadRequest, "invalid request body", err))
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Username == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "username is required"))
		return
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			respondError(ctx, w, apperr.New(apperr.KindBadRequest, "invalid email address"))
			return
		}
	}

	user.Username = req.Username
	user.Email = req.Email
	user.UpdatedAt = h.now()

	if err := h.Users.UpdateProfile(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrConflict):
			respondError(ctx, w, apperr.New(apperr.KindConflict, "username already taken"))
		case errors.Is(err, repositories.ErrNotFound):
			respondError(ctx, w, apperr.New(apperr.KindNotFound, "user not found"))
		default:
			respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "update user", err))
		}
		return
	}

	respondJSON(ctx, w, http.StatusOK, user)
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
