package gateway

import (
	"log/slog"
	"net/http"
	"time"

	httpadapter "kanvas/contexts/edge/gateway/adapters/http"
	"kanvas/contexts/edge/gateway/adapters/lookup"
	metricsadapter "kanvas/contexts/edge/gateway/adapters/metrics"
	"kanvas/contexts/edge/gateway/application"
	"kanvas/contexts/edge/gateway/domain/entities"
	"kanvas/contexts/edge/gateway/ports"
	"kanvas/internal/platform/auth"
)

type Module struct {
	Gateway *httpadapter.Gateway
	Router  http.Handler
}

type Dependencies struct {
	// Routes defaults to entities.DefaultRoutes.
	Routes []entities.Route
	// Upstreams maps upstream names to base URLs.
	Upstreams     map[string]string
	Tokens        ports.TokenVerifier
	Lookup        ports.RoleLookup
	LookupTimeout time.Duration
	Observer      ports.Observer
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) (Module, error) {
	routes := deps.Routes
	if len(routes) == 0 {
		routes = entities.DefaultRoutes()
	}
	roleLookup := deps.Lookup
	if roleLookup == nil {
		roleLookup = lookup.Client{BaseURL: deps.Upstreams[entities.UpstreamBoard]}
	}
	observer := deps.Observer
	if observer == nil {
		observer = metricsadapter.Observer{}
	}

	gw, err := httpadapter.NewGateway(httpadapter.Gateway{
		Routes: entities.NewRouteTable(routes),
		Authenticator: application.Authenticator{
			Tokens:   deps.Tokens,
			Observer: observer,
			Logger:   deps.Logger,
		},
		Enricher: application.Enricher{
			Lookup:   roleLookup,
			Timeout:  deps.LookupTimeout,
			Observer: observer,
			Logger:   deps.Logger,
		},
		TokenFrom: auth.TokenFromRequest,
		Logger:    deps.Logger,
	}, deps.Upstreams)
	if err != nil {
		return Module{}, err
	}
	return Module{Gateway: gw, Router: httpadapter.NewRouter(gw)}, nil
}
