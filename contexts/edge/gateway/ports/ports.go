package ports

import "context"

type TokenVerifier interface {
	Verify(raw string) (int64, error)
}

// RoleLookup resolves the caller's board role against board-service. It
// returns the bare role token or one of ErrRoleDenied, ErrLookupTimeout and
// ErrLookupFailed.
type RoleLookup interface {
	LookupBoardRole(ctx context.Context, principal int64, boardID int64) (string, error)
}

// Observer receives filter outcomes for metrics.
type Observer interface {
	RoleLookup(outcome string)
	AuthRejected(reason string)
}
