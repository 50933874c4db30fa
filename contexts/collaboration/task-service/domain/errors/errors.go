package errors

import "kanvas/contracts/faults"

var (
	ErrUnauthenticated    = faults.New(faults.ErrUnauthenticated, "principal is required")
	ErrForbidden          = faults.New(faults.ErrForbidden, "insufficient board role")
	ErrColumnNotFound     = faults.New(faults.ErrNotFound, "column not found")
	ErrTaskNotFound       = faults.New(faults.ErrNotFound, "task not found")
	ErrAssigneeNotFound   = faults.New(faults.ErrNotFound, "user is not assigned")
	ErrAlreadyAssigned    = faults.New(faults.ErrConflict, "user is already assigned")
	ErrInvalidRequest     = faults.New(faults.ErrInvalid, "invalid request")
	ErrNeighborOutOfScope = faults.New(faults.ErrInvalid, "neighbor does not belong to the target scope")
	ErrEmptyScope         = faults.New(faults.ErrInvalid, "no neighbor to place against")
	ErrInvalidNeighbors   = faults.New(faults.ErrConflict, "preceding item must order before following item")
	ErrPrecisionExhausted = faults.New(faults.ErrConflict, "no representable position between neighbors")
)
