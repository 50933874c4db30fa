package errors

import "kanvas/contracts/faults"

var (
	ErrInvalidRequest     = faults.New(faults.ErrInvalid, "invalid request")
	ErrWeakPassword       = faults.New(faults.ErrInvalid, "password should be at least 8 characters long")
	ErrEmailTaken         = faults.New(faults.ErrConflict, "this email is already taken")
	ErrUsernameTaken      = faults.New(faults.ErrConflict, "this username is already taken")
	ErrInvalidCredentials = faults.New(faults.ErrUnauthenticated, "invalid email or password")
	ErrUnauthenticated    = faults.New(faults.ErrUnauthenticated, "principal is required")
	ErrUserNotFound       = faults.New(faults.ErrNotFound, "user not found")
)
