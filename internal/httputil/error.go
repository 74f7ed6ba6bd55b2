package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AdamBeresnev/bracket-scheduler/internal/bracket"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	zap.L().Error(msg, zap.Error(err))
	WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		zap.L().Warn("bad request", zap.String("message", msg), zap.Error(err))
	} else {
		zap.L().Warn("bad request", zap.String("message", msg))
	}
	WriteJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		zap.L().Warn("not found", zap.String("message", msg), zap.Error(err))
	} else {
		zap.L().Warn("not found", zap.String("message", msg))
	}
	WriteJSON(w, http.StatusNotFound, errorResponse{Error: msg})
}

func Conflict(w http.ResponseWriter, msg string, err error) {
	zap.L().Warn("conflict", zap.String("message", msg), zap.Error(err))
	WriteJSON(w, http.StatusConflict, errorResponse{Error: msg})
}

// StatusFor maps the engine's error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, bracket.ErrConfiguration),
		errors.Is(err, bracket.ErrInvalidWinner),
		errors.Is(err, bracket.ErrInvalidResult):
		return http.StatusBadRequest
	case errors.Is(err, bracket.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, bracket.ErrInvalidState),
		errors.Is(err, bracket.ErrLockContention):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err with the status StatusFor picks. Lock contention is the
// only retryable error and carries a Retry-After header.
func Error(w http.ResponseWriter, msg string, err error) {
	switch StatusFor(err) {
	case http.StatusBadRequest:
		BadRequest(w, err.Error(), err)
	case http.StatusNotFound:
		NotFound(w, err.Error(), err)
	case http.StatusConflict:
		if errors.Is(err, bracket.ErrLockContention) {
			w.Header().Set("Retry-After", "1")
		}
		Conflict(w, err.Error(), err)
	default:
		InternalServerError(w, msg, err)
	}
}
