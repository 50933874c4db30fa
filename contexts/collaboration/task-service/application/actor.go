package application

import (
	"kanvas/contexts/collaboration/task-service/domain/services"
	"kanvas/contracts/roles"
)

// Actor is the caller as the gateway described it: the authenticated user,
// the board the request targets and the role resolved on that board.
type Actor struct {
	UserID  int64
	BoardID int64
	Role    string
}

func (a Actor) Require(required roles.BoardRole) error {
	_, err := services.Authorize(a.UserID, a.Role, required)
	return err
}
