// Package httpx holds the JSON envelope shared by every HTTP handler and the
// mapping from the error taxonomy to status codes.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"filevault/internal/apperrors"
	"filevault/pkg/logger"

	"go.uber.org/zap"
)

const internalMessage = "Internal server error"

type ErrorResponse struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes an error envelope with an explicit status and message.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Success: false, Status: status, Message: message})
}

// WriteError maps err onto a status code. Causes of 5xx responses are logged
// and replaced with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.GetLogger(r.Context()).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		WriteMessage(w, status, internalMessage)
		return
	}
	WriteMessage(w, status, publicMessage(err))
}

func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage drops the sentinel prefix ("not found: file x" -> "file x").
func publicMessage(err error) string {
	msg := err.Error()
	for _, s := range []error{
		apperrors.ErrInvalidInput,
		apperrors.ErrUnauthorized,
		apperrors.ErrNotFound,
		apperrors.ErrConflict,
		apperrors.ErrTooManyAttempts,
	} {
		if rest, ok := strings.CutPrefix(msg, s.Error()+": "); ok {
			return rest
		}
	}
	return msg
}
