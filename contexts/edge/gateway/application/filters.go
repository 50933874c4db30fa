package application

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"kanvas/contexts/edge/gateway/domain/entities"
	domainerrors "kanvas/contexts/edge/gateway/domain/errors"
	"kanvas/contexts/edge/gateway/ports"
	"kanvas/contracts/roles"
)

const (
	moduleName = "edge/gateway"

	DefaultLookupTimeout = 2 * time.Second
)

// Lookup outcomes reported to the observer.
const (
	OutcomeGranted     = "granted"
	OutcomeDenied      = "denied"
	OutcomeTimeout     = "timeout"
	OutcomeFailed      = "failed"
	OutcomeInvalidRole = "invalid_role"
)

func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

type nopObserver struct{}

func (nopObserver) RoleLookup(string)   {}
func (nopObserver) AuthRejected(string) {}

func observer(o ports.Observer) ports.Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}

// Authenticator verifies the access token for protected routes. Public
// routes pass through with no principal.
type Authenticator struct {
	Tokens   ports.TokenVerifier
	Observer ports.Observer
	Logger   *slog.Logger
}

func (a Authenticator) Authenticate(route entities.Route, token string) (int64, error) {
	if !route.Protected {
		return 0, nil
	}
	if strings.TrimSpace(token) == "" {
		observer(a.Observer).AuthRejected("missing_token")
		return 0, domainerrors.ErrUnauthenticated
	}
	principal, err := a.Tokens.Verify(token)
	if err != nil || principal <= 0 {
		observer(a.Observer).AuthRejected("invalid_token")
		ResolveLogger(a.Logger).Debug("access token rejected",
			"event", "gateway_token_rejected",
			"module", moduleName,
			"layer", "application",
			"route", route.Prefix,
		)
		return 0, domainerrors.ErrUnauthenticated
	}
	return principal, nil
}

// Enricher resolves the board role for board_role routes. The lookup is
// attempted once under Timeout.
type Enricher struct {
	Lookup   ports.RoleLookup
	Timeout  time.Duration
	Observer ports.Observer
	Logger   *slog.Logger
}

// ParseBoardID accepts the X-Board-Id header, falling back to the boardId
// query parameter.
func ParseBoardID(header string, query string) (int64, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		raw = strings.TrimSpace(query)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domainerrors.ErrMissingBoardID
	}
	return id, nil
}

// Enrich returns the role to forward, or "" for routes without enrichment.
func (e Enricher) Enrich(ctx context.Context, route entities.Route, principal int64, boardID int64) (roles.BoardRole, error) {
	if route.Enrichment != entities.EnrichBoardRole {
		return "", nil
	}
	if principal <= 0 {
		return "", domainerrors.ErrUnauthenticated
	}
	if boardID <= 0 {
		return "", domainerrors.ErrMissingBoardID
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	obs := observer(e.Observer)
	raw, err := e.Lookup.LookupBoardRole(lookupCtx, principal, boardID)
	if err != nil {
		outcome := OutcomeFailed
		switch {
		case errors.Is(err, domainerrors.ErrRoleDenied):
			outcome = OutcomeDenied
		case errors.Is(err, domainerrors.ErrLookupTimeout):
			outcome = OutcomeTimeout
		case errors.Is(err, context.DeadlineExceeded):
			outcome = OutcomeTimeout
			err = domainerrors.ErrLookupTimeout
		case !errors.Is(err, domainerrors.ErrLookupFailed):
			err = errors.Join(domainerrors.ErrLookupFailed, err)
		}
		obs.RoleLookup(outcome)
		ResolveLogger(e.Logger).Warn("board role lookup rejected request",
			"event", "gateway_role_lookup_failed",
			"module", moduleName,
			"layer", "application",
			"outcome", outcome,
			"user_id", principal,
			"board_id", boardID,
			"error", err.Error(),
		)
		return "", err
	}

	role, ok := roles.ParseBoardRole(raw)
	if !ok {
		obs.RoleLookup(OutcomeInvalidRole)
		ResolveLogger(e.Logger).Warn("board role lookup returned an unknown role",
			"event", "gateway_role_lookup_invalid",
			"module", moduleName,
			"layer", "application",
			"user_id", principal,
			"board_id", boardID,
		)
		return "", domainerrors.ErrLookupFailed
	}
	obs.RoleLookup(OutcomeGranted)
	return role, nil
}
