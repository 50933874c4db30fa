package bootstrap

import (
	"kanvas/contexts/edge/gateway"
	"kanvas/contexts/edge/gateway/domain/entities"
	"kanvas/internal/platform/auth"
	"kanvas/internal/platform/config"
)

// BuildGateway wires the edge: token verification, board role enrichment
// and reverse proxies to every service.
func BuildGateway() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg, "gateway")
	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		return nil, err
	}

	module, err := gateway.NewModule(gateway.Dependencies{
		Upstreams: map[string]string{
			entities.UpstreamBoard:        cfg.BoardServiceURL,
			entities.UpstreamTask:         cfg.TaskServiceURL,
			entities.UpstreamUser:         cfg.UserServiceURL,
			entities.UpstreamNotification: cfg.NotificationServiceURL,
			entities.UpstreamRealtime:     cfg.RealtimeServiceURL,
		},
		Tokens:        tokens,
		LookupTimeout: cfg.RoleLookupTimeout,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		name:   "gateway",
		server: newHandlerServer(module.Router, normalizeAddr(cfg.HTTPPort), logger),
		logger: logger,
	}, nil
}
