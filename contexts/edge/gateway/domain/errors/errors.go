package errors

import "kanvas/contracts/faults"

var (
	ErrRouteNotFound   = faults.New(faults.ErrNotFound, "no route")
	ErrUnauthenticated = faults.New(faults.ErrUnauthenticated, "authentication required")
	ErrMissingBoardID  = faults.New(faults.ErrInvalid, "board id is required")
	ErrRoleDenied      = faults.New(faults.ErrForbidden, "board access denied")
	// ErrLookupFailed and ErrLookupTimeout are reported as 502 and 504.
	ErrLookupFailed  = faults.New(faults.ErrUnavailable, "role lookup failed")
	ErrLookupTimeout = faults.New(faults.ErrUnavailable, "role lookup timed out")
)
