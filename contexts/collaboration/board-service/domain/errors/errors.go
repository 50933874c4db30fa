package errors

import "kanvas/contracts/faults"

var (
	ErrUnauthenticated      = faults.New(faults.ErrUnauthenticated, "principal is required")
	ErrForbidden            = faults.New(faults.ErrForbidden, "insufficient role for this operation")
	ErrWorkspaceNotFound    = faults.New(faults.ErrNotFound, "workspace not found")
	ErrBoardNotFound        = faults.New(faults.ErrNotFound, "board not found")
	ErrMemberNotFound       = faults.New(faults.ErrNotFound, "member not found")
	ErrInvitationNotFound   = faults.New(faults.ErrNotFound, "invitation not found")
	ErrUserNotFound         = faults.New(faults.ErrNotFound, "user not found")
	ErrBoardNameTaken       = faults.New(faults.ErrConflict, "board name already exists in workspace")
	ErrAlreadyMember        = faults.New(faults.ErrConflict, "user is already a member")
	ErrInvitationPending    = faults.New(faults.ErrConflict, "invitation already pending")
	ErrInvitationNotPending = faults.New(faults.ErrConflict, "invitation is not pending")
	ErrLastBoardAdmin       = faults.New(faults.ErrConflict, "board must keep at least one admin")
	ErrLastWorkspaceOwner   = faults.New(faults.ErrConflict, "workspace must keep at least one owner")
	ErrInvitationExpired    = faults.New(faults.ErrExpired, "invitation has expired")
	ErrInvalidRequest       = faults.New(faults.ErrInvalid, "invalid request")
	ErrInvalidRole          = faults.New(faults.ErrInvalid, "invalid role")
)
