package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ForestKatsch/apogee-ssg/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string         `json:"error" validate:"required"`
	Kind  string         `json:"kind,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps a classified error to a status code. Unclassified errors
// are logged and reported as internal.
func writeError(w http.ResponseWriter, op string, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	status := http.StatusUnprocessableEntity
	switch e.Kind {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindInternal, apperr.KindPermission:
		status = http.StatusInternalServerError
	}
	if status == http.StatusInternalServerError {
		slog.Error(op+" failed", slog.String("error", err.Error()))
	}
	writeJSON(w, status, errResponse{Error: err.Error(), Kind: string(e.Kind), Data: e.Data})
}
