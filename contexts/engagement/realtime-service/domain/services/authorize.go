package services

import (
	domainerrors "kanvas/contexts/engagement/realtime-service/domain/errors"
	"kanvas/contracts/roles"
)

// AuthorizeBoardStream accepts any resolved board role from VIEWER up.
func AuthorizeBoardStream(principal int64, role string) error {
	if principal <= 0 {
		return domainerrors.ErrUnauthenticated
	}
	held, ok := roles.ParseBoardRole(role)
	if !ok || !held.AtLeast(roles.BoardViewer) {
		return domainerrors.ErrForbidden
	}
	return nil
}
