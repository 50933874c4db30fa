package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	boardservice "kanvas/contexts/collaboration/board-service"
	boardentities "kanvas/contexts/collaboration/board-service/domain/entities"
	taskservice "kanvas/contexts/collaboration/task-service"
	notificationservice "kanvas/contexts/engagement/notification-service"
	userservice "kanvas/contexts/identity-access/user-service"
	"kanvas/contexts/identity-access/user-service/adapters/crypto"
	"kanvas/contracts/faults"
	"kanvas/internal/platform/auth"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.Default()
	tokens, err := auth.NewTokenManager("test-secret", "kanvas-test", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}

	board := boardservice.NewInMemoryModule(nil, logger)
	for _, user := range []boardentities.User{
		{ID: 1, Username: "ada"},
		{ID: 2, Username: "grace"},
	} {
		if err := board.Store.UpsertUser(context.Background(), user); err != nil {
			t.Fatalf("seed user %d: %v", user.ID, err)
		}
	}
	task := taskservice.NewInMemoryModule(nil, logger)
	user := userservice.NewInMemoryModule(tokens, crypto.BcryptHasher{Cost: 4}, nil, logger)
	notification := notificationservice.NewInMemoryModule(nil, logger)

	return New(Services{
		Board:        &board,
		Task:         &task,
		User:         &user,
		Notification: &notification,
	}, Options{}, logger, ":0")
}

func serve(server *Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	return rr
}

func jsonRequest(method string, target string, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestWorkspaceRoutesRequirePrincipal(t *testing.T) {
	server := newTestServer(t)

	rr := serve(server, httptest.NewRequest(http.MethodGet, "/api/v1/workspaces", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/workspaces", nil)
	req.Header.Set("X-User-Id", "not-a-number")
	rr = serve(server, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed principal, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestMalformedPathIDIsRejected(t *testing.T) {
	server := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/workspaces/abc", nil)
	req.Header.Set("X-User-Id", "1")

	rr := serve(server, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func createBoard(t *testing.T, server *Server) int64 {
	t.Helper()
	req := jsonRequest(http.MethodPost, "/api/v1/workspaces", `{"name":"Platform"}`)
	req.Header.Set("X-User-Id", "1")
	rr := serve(server, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 for workspace, got %d body=%s", rr.Code, rr.Body.String())
	}
	var workspace struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &workspace); err != nil {
		t.Fatalf("decode workspace: %v", err)
	}

	req = jsonRequest(http.MethodPost, fmt.Sprintf("/api/v1/workspaces/%d/boards", workspace.ID), `{"name":"Roadmap"}`)
	req.Header.Set("X-User-Id", "1")
	rr = serve(server, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 for board, got %d body=%s", rr.Code, rr.Body.String())
	}
	var board struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &board); err != nil {
		t.Fatalf("decode board: %v", err)
	}
	return board.ID
}

func TestRoleLookupReturnsBareRole(t *testing.T) {
	server := newTestServer(t)
	boardID := createBoard(t, server)

	rr := serve(server, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/boards/roles/lookup?principal=1&container=%d", boardID), nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if body := rr.Body.String(); body != "ADMIN" {
		t.Fatalf("expected bare ADMIN role, got %q", body)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("expected text/plain, got %q", ct)
	}

	rr = serve(server, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/boards/roles/lookup?principal=2&container=%d", boardID), nil))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for outsider, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = serve(server, httptest.NewRequest(http.MethodGet, "/api/v1/boards/roles/lookup?principal=1&container=999", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing board, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = serve(server, httptest.NewRequest(http.MethodGet, "/api/v1/boards/roles/lookup?principal=1", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without container, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestColumnRoutesEnforceBoardRole(t *testing.T) {
	server := newTestServer(t)
	cases := []struct {
		name    string
		boardID string
		role    string
		want    int
	}{
		{name: "missing board", role: "EDITOR", want: http.StatusBadRequest},
		{name: "missing role", boardID: "7", want: http.StatusForbidden},
		{name: "viewer", boardID: "7", role: "VIEWER", want: http.StatusForbidden},
		{name: "unknown role", boardID: "7", role: "SUPERUSER", want: http.StatusForbidden},
		{name: "editor", boardID: "7", role: "EDITOR", want: http.StatusCreated},
	}
	for _, tc := range cases {
		req := jsonRequest(http.MethodPost, "/api/v1/columns", `{"name":"Todo"}`)
		req.Header.Set("X-User-Id", "1")
		if tc.boardID != "" {
			req.Header.Set("X-Board-Id", tc.boardID)
		}
		if tc.role != "" {
			req.Header.Set("X-Board-Role", tc.role)
		}
		rr := serve(server, req)
		if rr.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d body=%s", tc.name, tc.want, rr.Code, rr.Body.String())
		}
	}
}

func TestColumnListAcceptsBoardQuery(t *testing.T) {
	server := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/columns?boardId=7", nil)
	req.Header.Set("X-User-Id", "1")
	req.Header.Set("X-Board-Role", "VIEWER")

	rr := serve(server, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRejectsUnknownJSONFields(t *testing.T) {
	server := newTestServer(t)
	req := jsonRequest(http.MethodPost, "/api/v1/workspaces", `{"name":"Platform","owner":9}`)
	req.Header.Set("X-User-Id", "1")

	rr := serve(server, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAuthenticateSetsAccessCookie(t *testing.T) {
	server := newTestServer(t)
	register := jsonRequest(http.MethodPost, "/api/v1/auth/register",
		`{"firstname":"Ada","lastname":"Lovelace","email":"Ada@Example.com","username":"ada","password":"correct-horse"}`)
	rr := serve(server, register)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = serve(server, jsonRequest(http.MethodPost, "/api/v1/auth/authenticate", `{"email":"ada@example.com","password":"correct-horse"}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatalf("expected %s cookie, got %v", auth.CookieName, rr.Result().Cookies())
	}
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteStrictMode {
		t.Fatalf("expected HttpOnly strict cookie, got %+v", cookie)
	}

	rr = serve(server, jsonRequest(http.MethodPost, "/api/v1/auth/authenticate", `{"email":"ada@example.com","password":"wrong-password"}`))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = serve(server, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	cleared := rr.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Fatalf("expected cleared cookie, got %v", cleared)
	}
}

func TestNotificationStatusForUnknownNotification(t *testing.T) {
	server := newTestServer(t)
	req := jsonRequest(http.MethodPatch, "/api/v1/notifications/42/status", `{"status":"READ"}`)
	req.Header.Set("X-User-Id", "1")

	rr := serve(server, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestUnmountedServiceRoutesAreNotFound(t *testing.T) {
	server := New(Services{}, Options{}, slog.Default(), ":0")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/workspaces", nil)
	req.Header.Set("X-User-Id", "1")

	rr := serve(server, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestHealthReportsDependencyFailure(t *testing.T) {
	healthy := New(Services{}, Options{}, slog.Default(), ":0")
	rr := serve(healthy, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	failing := New(Services{Health: func(context.Context) error {
		return errors.New("postgres down")
	}}, Options{}, slog.Default(), ":0")
	rr = serve(failing, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "postgres") {
		t.Fatalf("health body leaked the cause: %s", rr.Body.String())
	}
}

func TestDomainErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{faults.New(faults.ErrUnauthenticated, "login required"), http.StatusUnauthorized},
		{faults.New(faults.ErrForbidden, "not a member"), http.StatusForbidden},
		{faults.New(faults.ErrNotFound, "board not found"), http.StatusNotFound},
		{fmt.Errorf("move: %w", faults.New(faults.ErrConflict, "invalid neighbors")), http.StatusConflict},
		{faults.New(faults.ErrExpired, "invitation expired"), http.StatusGone},
		{faults.New(faults.ErrInvalid, "name is required"), http.StatusBadRequest},
		{faults.New(faults.ErrUnavailable, "broker down"), http.StatusServiceUnavailable},
		{errors.New("pq: connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		writeDomainError(rr, nil, tc.err)
		if rr.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, rr.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode error body: %v", err)
		}
		if body.Code == "" || body.Message == "" {
			t.Fatalf("expected code and message, got %+v", body)
		}
	}

	rr := httptest.NewRecorder()
	writeDomainError(rr, nil, errors.New("pq: connection reset"))
	if strings.Contains(rr.Body.String(), "pq") {
		t.Fatalf("internal error leaked: %s", rr.Body.String())
	}
}
