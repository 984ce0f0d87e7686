package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wealthpath/notifications/internal/apperror"
	"github.com/wealthpath/notifications/internal/logger"
)

// ErrorResponse represents a JSON error response body.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

func respondAppError(w http.ResponseWriter, err *apperror.AppError) {
	respondJSON(w, err.StatusCode, ErrorResponse{
		Error: err.Message,
		Field: err.Field,
	})
}

// handleServiceError maps a service error onto a status code. Unexpected
// errors are logged and reported without detail.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		respondAppError(w, appErr)
		return
	}

	status := apperror.GetStatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			"path", r.URL.Path,
			"error", err.Error(),
		)
		respondAppError(w, apperror.Internal(err))
		return
	}
	respondError(w, status, apperror.GetMessage(err))
}
