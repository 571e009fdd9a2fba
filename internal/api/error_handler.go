package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/vytor/chessvault/internal/errors"
	"github.com/vytor/chessvault/internal/logger"
)

// handleError centralizes error handling for HTTP responses. Everything is
// JSON; validation errors carry the full violation list.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.NewInternalError(err)
	}

	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else {
		log.Warn("client error: %v", appErr)
	}

	body := map[string]any{
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	if len(appErr.Violations) > 0 {
		body["violations"] = appErr.Violations
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	json.NewEncoder(w).Encode(map[string]any{"error": body})
}
