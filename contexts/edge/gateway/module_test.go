package gateway

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"kanvas/contexts/edge/gateway/adapters/lookup"
	"kanvas/contexts/edge/gateway/domain/entities"
	"kanvas/internal/platform/auth"
)

type recordingObserver struct {
	mu         sync.Mutex
	lookups    map[string]int
	rejections map[string]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{lookups: map[string]int{}, rejections: map[string]int{}}
}

func (o *recordingObserver) RoleLookup(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lookups[outcome]++
}

func (o *recordingObserver) AuthRejected(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejections[reason]++
}

type harness struct {
	router      http.Handler
	tokens      *auth.TokenManager
	observer    *recordingObserver
	upstreamHit atomic.Int64
	lookupHit   atomic.Int64
	lastHeaders atomic.Value
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{observer: newRecordingObserver()}

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.upstreamHit.Add(1)
		h.lastHeaders.Store(r.Header.Clone())
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(upstream.Close)

	lookupServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.lookupHit.Add(1)
		if r.URL.Path != "/api/v1/boards/roles/lookup" || r.URL.Query().Get("principal") != "12" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch r.URL.Query().Get("container") {
		case "4":
			_, _ = w.Write([]byte("EDITOR"))
		case "5":
			w.WriteHeader(http.StatusForbidden)
		case "6":
			w.WriteHeader(http.StatusNotFound)
		case "7":
			w.WriteHeader(http.StatusInternalServerError)
		case "8":
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		default:
			_, _ = w.Write([]byte("OWNER"))
		}
	}))
	t.Cleanup(lookupServer.Close)

	tokens, err := auth.NewTokenManager("gateway-test-secret", "kanvas", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	h.tokens = tokens

	upstreams := map[string]string{
		entities.UpstreamBoard:        upstream.URL,
		entities.UpstreamTask:         upstream.URL,
		entities.UpstreamUser:         upstream.URL,
		entities.UpstreamNotification: upstream.URL,
		entities.UpstreamRealtime:     upstream.URL,
	}
	module, err := NewModule(Dependencies{
		Upstreams:     upstreams,
		Tokens:        tokens,
		Lookup:        lookup.Client{BaseURL: lookupServer.URL},
		LookupTimeout: 50 * time.Millisecond,
		Observer:      h.observer,
	})
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	h.router = module.Router
	return h
}

func (h *harness) token(t *testing.T, userID int64) string {
	t.Helper()
	token, _, err := h.tokens.Issue(userID, "ada")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return token
}

func (h *harness) do(request *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	h.router.ServeHTTP(recorder, request)
	return recorder
}

func (h *harness) forwarded() http.Header {
	headers, _ := h.lastHeaders.Load().(http.Header)
	return headers
}

func TestProtectedRouteRejectsMissingOrInvalidToken(t *testing.T) {
	h := newHarness(t)

	response := h.do(httptest.NewRequest(http.MethodGet, "/api/v1/boards/1", nil))
	if response.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", response.Code)
	}

	request := httptest.NewRequest(http.MethodGet, "/api/v1/boards/1", nil)
	request.Header.Set("Authorization", "Bearer not-a-token")
	if response := h.do(request); response.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", response.Code)
	}

	if h.upstreamHit.Load() != 0 {
		t.Fatalf("upstream must not be called for rejected requests")
	}
	if h.observer.rejections["missing_token"] != 1 || h.observer.rejections["invalid_token"] != 1 {
		t.Fatalf("unexpected rejection counts %v", h.observer.rejections)
	}
}

func TestClientIdentityHeadersAreReplaced(t *testing.T) {
	h := newHarness(t)
	request := httptest.NewRequest(http.MethodGet, "/api/v1/boards/1", nil)
	request.AddCookie(&http.Cookie{Name: auth.CookieName, Value: h.token(t, 12)})
	request.Header.Set("X-User-Id", "999")
	request.Header.Set("X-Board-Role", "ADMIN")

	if response := h.do(request); response.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", response.Code)
	}
	headers := h.forwarded()
	if headers.Get("X-User-Id") != "12" {
		t.Fatalf("expected X-User-Id 12, got %q", headers.Get("X-User-Id"))
	}
	if headers.Get("X-Board-Role") != "" {
		t.Fatalf("client role header leaked upstream: %q", headers.Get("X-Board-Role"))
	}
	if h.lookupHit.Load() != 0 {
		t.Fatalf("routes without enrichment must not look up roles")
	}
}

func TestBoardRoleEnrichment(t *testing.T) {
	h := newHarness(t)
	token := h.token(t, 12)

	request := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/9/move", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	request.Header.Set("X-Board-Id", "4")
	if response := h.do(request); response.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", response.Code, response.Body.String())
	}
	if got := h.forwarded().Get("X-Board-Role"); got != "EDITOR" {
		t.Fatalf("expected EDITOR, got %q", got)
	}

	stream := httptest.NewRequest(http.MethodGet, "/api/v1/realtime/boards?boardId=4", nil)
	stream.Header.Set("Authorization", "Bearer "+token)
	if response := h.do(stream); response.Code != http.StatusOK {
		t.Fatalf("expected 200 for query board id, got %d", response.Code)
	}
	if got := h.forwarded().Get("X-Board-Id"); got != "4" {
		t.Fatalf("expected resolved board id header, got %q", got)
	}
}

func TestEnrichmentFailuresStopForwarding(t *testing.T) {
	h := newHarness(t)
	token := h.token(t, 12)
	cases := []struct {
		boardID string
		status  int
	}{
		{"", http.StatusBadRequest},
		{"abc", http.StatusBadRequest},
		{"5", http.StatusForbidden},
		{"6", http.StatusForbidden},
		{"7", http.StatusBadGateway},
		{"8", http.StatusGatewayTimeout},
		{"9", http.StatusBadGateway},
	}
	for _, tc := range cases {
		request := httptest.NewRequest(http.MethodGet, "/api/v1/columns/", nil)
		request.Header.Set("Authorization", "Bearer "+token)
		if tc.boardID != "" {
			request.Header.Set("X-Board-Id", tc.boardID)
		}
		if response := h.do(request); response.Code != tc.status {
			t.Fatalf("board %q: expected %d, got %d", tc.boardID, tc.status, response.Code)
		}
	}
	if h.upstreamHit.Load() != 0 {
		t.Fatalf("upstream must not be called when enrichment fails")
	}
	if h.lookupHit.Load() != 5 {
		t.Fatalf("expected exactly one lookup per valid board id, got %d", h.lookupHit.Load())
	}
	if h.observer.lookups["denied"] != 2 || h.observer.lookups["timeout"] != 1 || h.observer.lookups["invalid_role"] != 1 {
		t.Fatalf("unexpected lookup outcomes %v", h.observer.lookups)
	}
}

func TestPublicAndInternalRoutes(t *testing.T) {
	h := newHarness(t)
	response := h.do(httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", nil))
	if response.Code != http.StatusOK {
		t.Fatalf("expected public route to pass, got %d", response.Code)
	}
	if h.forwarded().Get("X-User-Id") != "" {
		t.Fatalf("anonymous request must not carry a principal")
	}

	request := httptest.NewRequest(http.MethodGet, "/api/v1/boards/roles/lookup?principal=1&container=4", nil)
	request.Header.Set("Authorization", "Bearer "+h.token(t, 12))
	if response := h.do(request); response.Code != http.StatusNotFound {
		t.Fatalf("expected internal lookup route to be hidden, got %d", response.Code)
	}
	if response := h.do(httptest.NewRequest(http.MethodGet, "/nowhere", nil)); response.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown path, got %d", response.Code)
	}
}
