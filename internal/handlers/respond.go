package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dancing/backend/internal/apperr"
	"github.com/dancing/backend/internal/logging"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

// respondError collapses a handler failure to its error kind and writes the
// matching status with a caller-safe message.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		logging.FromContext(ctx).Error("request failed", "error", err)
	}
	respondJSON(ctx, w, apperr.HTTPStatus(kind), map[string]string{"error": apperr.MessageOf(err)})
}
