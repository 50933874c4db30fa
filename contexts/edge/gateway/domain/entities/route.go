package entities

import (
	"sort"
	"strings"
)

type Enrichment string

const (
	EnrichNone      Enrichment = "none"
	EnrichBoardRole Enrichment = "board_role"
)

// Upstream service names used as route targets.
const (
	UpstreamBoard        = "board-service"
	UpstreamTask         = "task-service"
	UpstreamUser         = "user-service"
	UpstreamNotification = "notification-service"
	UpstreamRealtime     = "realtime-service"
)

// Trusted headers the gateway sets after authentication. Client-sent
// copies are always stripped.
const (
	HeaderUserID    = "X-User-Id"
	HeaderBoardRole = "X-Board-Role"
	HeaderBoardID   = "X-Board-Id"
)

type Route struct {
	Prefix     string
	Upstream   string
	Protected  bool
	Enrichment Enrichment
	// Internal routes are never forwarded.
	Internal bool
}

// RouteTable matches by longest prefix.
type RouteTable struct {
	routes []Route
}

func NewRouteTable(routes []Route) RouteTable {
	sorted := append([]Route(nil), routes...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i].Prefix) > len(sorted[j].Prefix) })
	return RouteTable{routes: sorted}
}

func (t RouteTable) Match(path string) (Route, bool) {
	for _, route := range t.routes {
		if path == strings.TrimSuffix(route.Prefix, "/") || strings.HasPrefix(path, route.Prefix) {
			return route, true
		}
	}
	return Route{}, false
}

func (t RouteTable) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

func DefaultRoutes() []Route {
	return []Route{
		{Prefix: "/api/v1/auth/", Upstream: UpstreamUser, Enrichment: EnrichNone},
		{Prefix: "/api/v1/users/", Upstream: UpstreamUser, Protected: true, Enrichment: EnrichNone},
		{Prefix: "/api/v1/workspaces/", Upstream: UpstreamBoard, Protected: true, Enrichment: EnrichNone},
		{Prefix: "/api/v1/boards/", Upstream: UpstreamBoard, Protected: true, Enrichment: EnrichNone},
		{Prefix: "/api/v1/boards/roles/", Upstream: UpstreamBoard, Internal: true},
		{Prefix: "/api/v1/invitations/", Upstream: UpstreamBoard, Protected: true, Enrichment: EnrichNone},
		{Prefix: "/api/v1/columns/", Upstream: UpstreamTask, Protected: true, Enrichment: EnrichBoardRole},
		{Prefix: "/api/v1/tasks/", Upstream: UpstreamTask, Protected: true, Enrichment: EnrichBoardRole},
		{Prefix: "/api/v1/notifications/", Upstream: UpstreamNotification, Protected: true, Enrichment: EnrichNone},
		{Prefix: "/api/v1/realtime/boards/", Upstream: UpstreamRealtime, Protected: true, Enrichment: EnrichBoardRole},
		{Prefix: "/api/v1/realtime/me/", Upstream: UpstreamRealtime, Protected: true, Enrichment: EnrichNone},
	}
}
