package errors

import "kanvas/contracts/faults"

var (
	ErrUnauthenticated      = faults.New(faults.ErrUnauthenticated, "principal is required")
	ErrNotificationNotFound = faults.New(faults.ErrNotFound, "notification not found")
	ErrNotOwner             = faults.New(faults.ErrForbidden, "notification belongs to another user")
	ErrInvalidRequest       = faults.New(faults.ErrInvalid, "invalid request")
	ErrDedupConflict        = faults.New(faults.ErrConflict, "event id reused with a different payload")
)
