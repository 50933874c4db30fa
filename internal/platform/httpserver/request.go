package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	taskapp "kanvas/contexts/collaboration/task-service/application"

	"github.com/go-chi/chi/v5"
)

const (
	headerUserID    = "X-User-Id"
	headerBoardID   = "X-Board-Id"
	headerBoardRole = "X-Board-Role"

	maxBodyBytes = 1 << 20
)

// principal reads the caller injected by the gateway. Services trust this
// header because only the gateway is reachable from outside.
func principal(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.Header.Get(headerUserID))
	if raw == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "X-User-Id header is required")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "X-User-Id header is invalid")
		return 0, false
	}
	return id, true
}

// boardActor combines the principal with the board context resolved at the
// edge. Role checks happen in the task use cases.
func boardActor(w http.ResponseWriter, r *http.Request) (taskapp.Actor, bool) {
	userID, ok := principal(w, r)
	if !ok {
		return taskapp.Actor{}, false
	}
	boardID, ok := boardIDFrom(w, r)
	if !ok {
		return taskapp.Actor{}, false
	}
	return taskapp.Actor{
		UserID:  userID,
		BoardID: boardID,
		Role:    strings.TrimSpace(r.Header.Get(headerBoardRole)),
	}, true
}

func boardIDFrom(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.Header.Get(headerBoardID))
	if raw == "" {
		raw = strings.TrimSpace(r.URL.Query().Get("boardId"))
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "board id is required")
		return 0, false
	}
	return id, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid_request", "request body is required")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid_request", "request body is not valid json")
		return false
	}
	return true
}
