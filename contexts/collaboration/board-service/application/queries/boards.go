package queries

import (
	"context"
	"log/slog"

	application "kanvas/contexts/collaboration/board-service/application"
	"kanvas/contexts/collaboration/board-service/domain/entities"
	domainerrors "kanvas/contexts/collaboration/board-service/domain/errors"
	"kanvas/contexts/collaboration/board-service/domain/services"
	"kanvas/contexts/collaboration/board-service/ports"
	"kanvas/contracts/roles"
)

type GetBoardUseCase struct {
	Access application.AccessEvaluator
}

func (u GetBoardUseCase) Execute(ctx context.Context, actorID int64, boardID int64) (BoardSummary, error) {
	access, err := u.Access.BoardAccess(ctx, actorID, boardID)
	if err != nil {
		return BoardSummary{}, err
	}
	role, ok := services.EffectiveBoardRole(access)
	if !ok {
		return BoardSummary{}, domainerrors.ErrForbidden
	}
	return BoardSummary{Board: access.Board, Role: role}, nil
}

type BoardMemberView struct {
	Member entities.BoardMember
	User   entities.User
}

type ListBoardMembersUseCase struct {
	Access application.AccessEvaluator
	Boards ports.BoardRepository
	Users  ports.UserReplica
}

func (u ListBoardMembersUseCase) Execute(ctx context.Context, actorID int64, boardID int64) ([]BoardMemberView, error) {
	allowed, err := u.Access.CanViewBoard(ctx, actorID, boardID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domainerrors.ErrForbidden
	}
	members, err := u.Boards.ListBoardMembers(ctx, boardID)
	if err != nil {
		return nil, err
	}
	userIDs := make([]int64, 0, len(members))
	for _, member := range members {
		userIDs = append(userIDs, member.UserID)
	}
	users, err := u.Users.GetUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	items := make([]BoardMemberView, 0, len(members))
	for _, member := range members {
		user, ok := users[member.UserID]
		if !ok {
			user = entities.User{ID: member.UserID}
		}
		items = append(items, BoardMemberView{Member: member, User: user})
	}
	return items, nil
}

// LookupBoardRoleUseCase answers the edge's synchronous role lookup.
type LookupBoardRoleUseCase struct {
	Access application.AccessEvaluator
	Logger *slog.Logger
}

func (u LookupBoardRoleUseCase) Execute(ctx context.Context, principal int64, boardID int64) (roles.BoardRole, error) {
	role, err := u.Access.ResolveBoardRole(ctx, principal, boardID)
	if err != nil {
		application.ResolveLogger(u.Logger).Debug("board role lookup refused",
			"event", "board_role_lookup_refused",
			"module", moduleName,
			"layer", "application",
			"principal", principal,
			"board_id", boardID,
			"error", err.Error(),
		)
		return "", err
	}
	return role, nil
}
