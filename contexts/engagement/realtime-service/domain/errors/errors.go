package errors

import "kanvas/contracts/faults"

var (
	ErrUnauthenticated   = faults.New(faults.ErrUnauthenticated, "principal is required")
	ErrForbidden         = faults.New(faults.ErrForbidden, "board access denied")
	ErrInvalidRequest    = faults.New(faults.ErrInvalid, "invalid request")
	ErrReplayUnavailable = faults.New(faults.ErrUnavailable, "replay log unavailable")
)
