package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"kanvas/contracts/faults"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Anything
// unclassified is logged and reported as an opaque 500.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch faults.Kind(err) {
	case faults.ErrUnauthenticated:
		writeError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	case faults.ErrForbidden:
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case faults.ErrNotFound:
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case faults.ErrConflict:
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case faults.ErrExpired:
		writeError(w, http.StatusGone, "expired", err.Error())
	case faults.ErrInvalid:
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case faults.ErrUnavailable:
		writeError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
	default:
		if logger != nil {
			logger.Error("unhandled request error",
				"event", "http_unhandled_error",
				"module", "internal/platform/httpserver",
				"layer", "platform",
				"error", err.Error(),
			)
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
