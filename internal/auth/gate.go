package auth

import (
	"encoding/json"
	"net/http"

	"github.com/dancing/backend/internal/logging"
	"github.com/dancing/backend/internal/token"
)

// Validator verifies a raw token and returns its subject.
type Validator interface {
	Validate(raw string) (string, error)
}

// Gate is the request-pipeline stage every inbound request flows through.
// Each request terminates in exactly one of four outcomes: pass anonymous on
// a public path, reject for a missing token on a protected path, pass with an
// attached subject, or reject for an invalid token.
type Gate struct {
	Tokens Validator
}

// Middleware classifies the request and either rejects it or forwards it with
// the resolved subject attached to the context.
func (g Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CORS preflight passes unconditionally, no identity attached.
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		raw := r.Header.Get("Authorization")
		if raw == "" {
			if IsPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			logging.FromContext(r.Context()).Warn("unauthenticated access rejected", "path", r.URL.Path)
			rejectJSON(w, "authentication required")
			return
		}

		// A presented token must be valid even on public paths.
		subject, err := g.Tokens.Validate(raw)
		if err != nil {
			logging.FromContext(r.Context()).Warn("invalid token rejected", "path", r.URL.Path)
			rejectJSON(w, "token is invalid or expired")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), subject)))
	})
}

var _ Validator = (*token.Codec)(nil)

func rejectJSON(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
