package entities

import "testing"

func TestRouteTableMatchesLongestPrefix(t *testing.T) {
	table := NewRouteTable(DefaultRoutes())
	cases := []struct {
		path     string
		upstream string
		internal bool
		enrich   Enrichment
	}{
		{"/api/v1/boards/4", UpstreamBoard, false, EnrichNone},
		{"/api/v1/boards", UpstreamBoard, false, EnrichNone},
		{"/api/v1/boards/roles/lookup", UpstreamBoard, true, ""},
		{"/api/v1/tasks/9/move", UpstreamTask, false, EnrichBoardRole},
		{"/api/v1/realtime/boards", UpstreamRealtime, false, EnrichBoardRole},
		{"/api/v1/auth/authenticate", UpstreamUser, false, EnrichNone},
	}
	for _, tc := range cases {
		route, ok := table.Match(tc.path)
		if !ok {
			t.Fatalf("%s: no route", tc.path)
		}
		if route.Upstream != tc.upstream || route.Internal != tc.internal || route.Enrichment != tc.enrich {
			t.Fatalf("%s: unexpected route %+v", tc.path, route)
		}
	}
	if _, ok := table.Match("/api/v2/boards"); ok {
		t.Fatalf("unknown prefix should not match")
	}
	if route, _ := table.Match("/api/v1/auth/register"); route.Protected {
		t.Fatalf("auth routes must be public")
	}
}
