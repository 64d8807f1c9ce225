package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/shuttle-league/internal/service"
)

type errorBody struct {
	Detail string `json:"detail"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	WriteJSON(w, status, errorBody{Detail: detail})
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	writeDetail(w, http.StatusBadRequest, msg)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	writeDetail(w, http.StatusNotFound, msg)
}

func Conflict(w http.ResponseWriter, msg string) {
	slog.Warn("conflict", "message", msg)
	writeDetail(w, http.StatusConflict, msg)
}

func Unavailable(w http.ResponseWriter, msg string, err error) {
	slog.Error("storage unavailable", "message", msg, "error", err)
	w.Header().Set("Retry-After", "1")
	writeDetail(w, http.StatusServiceUnavailable, msg)
}

// Error writes err with the status of its service error kind.
func Error(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, service.ErrNotFound):
		NotFound(w, err.Error(), nil)
	case errors.Is(err, service.ErrConflict):
		Conflict(w, err.Error())
	case errors.Is(err, service.ErrTransient):
		Unavailable(w, err.Error(), err)
	default:
		InternalServerError(w, "unhandled error", err)
	}
}
