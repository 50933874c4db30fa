package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"

	"kanvas/contexts/edge/gateway/application"
	"kanvas/contexts/edge/gateway/domain/entities"
	domainerrors "kanvas/contexts/edge/gateway/domain/errors"
	"kanvas/contracts/faults"
)

const moduleName = "edge/gateway"

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Gateway runs the authentication and enrichment filters and forwards
// accepted requests to the matched upstream.
type Gateway struct {
	Routes        entities.RouteTable
	Authenticator application.Authenticator
	Enricher      application.Enricher
	TokenFrom     func(*http.Request) string
	Logger        *slog.Logger

	proxies map[string]*httputil.ReverseProxy
}

// NewGateway builds one reverse proxy per upstream base URL.
func NewGateway(g Gateway, upstreams map[string]string) (*Gateway, error) {
	g.proxies = make(map[string]*httputil.ReverseProxy, len(upstreams))
	for name, raw := range upstreams {
		target, err := url.Parse(raw)
		if err != nil || target.Scheme == "" || target.Host == "" {
			return nil, fmt.Errorf("invalid upstream url for %s: %q", name, raw)
		}
		g.proxies[name] = g.newProxy(name, target)
	}
	for _, route := range g.Routes.Routes() {
		if _, ok := g.proxies[route.Upstream]; !ok && !route.Internal {
			return nil, fmt.Errorf("route %s targets unknown upstream %s", route.Prefix, route.Upstream)
		}
	}
	return &g, nil
}

func (g *Gateway) newProxy(name string, target *url.URL) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.FlushInterval = -1
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		application.ResolveLogger(g.Logger).Error("upstream request failed",
			"event", "gateway_upstream_failed",
			"module", moduleName,
			"layer", "transport",
			"upstream", name,
			"path", r.URL.Path,
			"error", err.Error(),
		)
		writeError(w, http.StatusBadGateway, "upstream_unavailable", "upstream unavailable")
	}
	return proxy
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Header.Del(entities.HeaderUserID)
	r.Header.Del(entities.HeaderBoardRole)

	route, ok := g.Routes.Match(r.URL.Path)
	if !ok || route.Internal {
		g.fail(w, r, domainerrors.ErrRouteNotFound)
		return
	}

	tokenFrom := g.TokenFrom
	if tokenFrom == nil {
		tokenFrom = func(*http.Request) string { return "" }
	}
	principal, err := g.Authenticator.Authenticate(route, tokenFrom(r))
	if err != nil {
		g.fail(w, r, err)
		return
	}

	if route.Enrichment == entities.EnrichBoardRole {
		boardID, err := application.ParseBoardID(r.Header.Get(entities.HeaderBoardID), r.URL.Query().Get("boardId"))
		if err != nil {
			g.fail(w, r, err)
			return
		}
		role, err := g.Enricher.Enrich(r.Context(), route, principal, boardID)
		if err != nil {
			g.fail(w, r, err)
			return
		}
		r.Header.Set(entities.HeaderBoardID, strconv.FormatInt(boardID, 10))
		r.Header.Set(entities.HeaderBoardRole, string(role))
	}
	if principal > 0 {
		r.Header.Set(entities.HeaderUserID, strconv.FormatInt(principal, 10))
	}

	g.proxies[route.Upstream].ServeHTTP(w, r)
}

func (g *Gateway) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		application.ResolveLogger(g.Logger).Warn("gateway rejected request",
			"event", "gateway_request_rejected",
			"module", moduleName,
			"layer", "transport",
			"path", r.URL.Path,
			"status", status,
			"error", err.Error(),
		)
	}
	message := err.Error()
	var fault *faults.Error
	if errors.As(err, &fault) {
		message = fault.Error()
	}
	writeError(w, status, code, message)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domainerrors.ErrLookupTimeout):
		return http.StatusGatewayTimeout, "role_lookup_timeout"
	case errors.Is(err, domainerrors.ErrLookupFailed):
		return http.StatusBadGateway, "role_lookup_failed"
	case errors.Is(err, faults.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, faults.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, faults.ErrInvalid):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, faults.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusBadGateway, "bad_gateway"
	}
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Code: code, Message: message})
}
