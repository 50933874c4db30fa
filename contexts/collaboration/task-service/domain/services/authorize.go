package services

import (
	domainerrors "kanvas/contexts/collaboration/task-service/domain/errors"
	"kanvas/contracts/roles"
)

// Authorize checks the board role the gateway resolved for principal. A
// missing or unknown role is treated as no access.
func Authorize(principal int64, role string, required roles.BoardRole) (roles.BoardRole, error) {
	if principal <= 0 {
		return "", domainerrors.ErrUnauthenticated
	}
	held, ok := roles.ParseBoardRole(role)
	if !ok {
		return "", domainerrors.ErrForbidden
	}
	if !held.AtLeast(required) {
		return held, domainerrors.ErrForbidden
	}
	return held, nil
}
