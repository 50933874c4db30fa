package commands

import (
	"context"
	"log/slog"

	application "kanvas/contexts/collaboration/board-service/application"
	"kanvas/contexts/collaboration/board-service/domain/entities"
	domainerrors "kanvas/contexts/collaboration/board-service/domain/errors"
	"kanvas/contexts/collaboration/board-service/domain/services"
	"kanvas/contexts/collaboration/board-service/ports"
	eventsv1 "kanvas/contracts/events/v1"
	"kanvas/contracts/roles"
)

type ChangeBoardMemberRoleCommand struct {
	ActorID  int64
	BoardID  int64
	MemberID int64
	Role     string
}

type ChangeBoardMemberRoleUseCase struct {
	Access  application.AccessEvaluator
	Boards  ports.BoardRepository
	Reader  ports.MembershipReader
	Tx      ports.TxRunner
	Emitter application.Emitter
	Logger  *slog.Logger
}

func (u ChangeBoardMemberRoleUseCase) Execute(ctx context.Context, cmd ChangeBoardMemberRoleCommand) (entities.BoardMember, error) {
	role, ok := roles.ParseBoardRole(cmd.Role)
	if !ok {
		return entities.BoardMember{}, domainerrors.ErrInvalidRole
	}
	allowed, _, target, err := u.Access.CanModerateBoard(ctx, cmd.ActorID, cmd.BoardID, cmd.MemberID)
	if err != nil {
		return entities.BoardMember{}, err
	}
	if target.ID == 0 || target.BoardID != cmd.BoardID {
		return entities.BoardMember{}, domainerrors.ErrMemberNotFound
	}
	if !allowed {
		return entities.BoardMember{}, domainerrors.ErrForbidden
	}

	var changed entities.BoardMember
	err = u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := lockBoardMember(ctx, u.Boards, u.Reader, cmd.BoardID, cmd.MemberID)
		if err != nil {
			return err
		}
		if err := guardBoardAdmin(ctx, u.Boards, current, role); err != nil {
			return err
		}
		if err := u.Boards.UpdateBoardMemberRole(ctx, current.ID, role); err != nil {
			return err
		}
		current.Role = role
		changed = current
		return u.Emitter.Emit(ctx, cmd.BoardID, eventsv1.BoardRoleChanged{
			BoardID:  cmd.BoardID,
			MemberID: current.ID,
			UserID:   current.UserID,
			Role:     string(role),
		})
	})
	if err != nil {
		application.ResolveLogger(u.Logger).Warn("change board member role failed",
			"event", "board_member_role_change_failed",
			"module", moduleName,
			"layer", "application",
			"board_id", cmd.BoardID,
			"member_id", cmd.MemberID,
			"role", string(role),
			"error", err.Error(),
		)
		return entities.BoardMember{}, err
	}
	return changed, nil
}

type RemoveBoardMemberCommand struct {
	ActorID  int64
	BoardID  int64
	MemberID int64
}

type RemoveBoardMemberUseCase struct {
	Access  application.AccessEvaluator
	Boards  ports.BoardRepository
	Reader  ports.MembershipReader
	Tx      ports.TxRunner
	Emitter application.Emitter
	Logger  *slog.Logger
}

// Execute removes a board member. Workspace OWNER and ADMIN may remove any
// member without holding a board role.
func (u RemoveBoardMemberUseCase) Execute(ctx context.Context, cmd RemoveBoardMemberCommand) error {
	logger := application.ResolveLogger(u.Logger)
	allowed, access, target, err := u.Access.CanModerateBoard(ctx, cmd.ActorID, cmd.BoardID, cmd.MemberID)
	if err != nil {
		return err
	}
	if target.ID == 0 || target.BoardID != cmd.BoardID {
		return domainerrors.ErrMemberNotFound
	}
	if !allowed {
		logger.Warn("remove board member denied",
			"event", "board_member_remove_denied",
			"module", moduleName,
			"layer", "application",
			"board_id", cmd.BoardID,
			"member_id", cmd.MemberID,
			"actor_id", cmd.ActorID,
		)
		return domainerrors.ErrForbidden
	}

	err = u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := lockBoardMember(ctx, u.Boards, u.Reader, cmd.BoardID, cmd.MemberID)
		if err != nil {
			return err
		}
		if err := guardBoardAdmin(ctx, u.Boards, current, ""); err != nil {
			return err
		}
		if err := u.Boards.DeleteBoardMember(ctx, current.ID); err != nil {
			return err
		}
		return u.Emitter.Emit(ctx, cmd.BoardID, eventsv1.BoardMemberRemoved{
			BoardMembership: eventsv1.BoardMembership{
				BoardID:   cmd.BoardID,
				MemberID:  current.ID,
				UserID:    current.UserID,
				BoardName: access.Board.Name,
			},
			RemovedBy: cmd.ActorID,
		})
	})
	if err != nil {
		logger.Warn("remove board member failed",
			"event", "board_member_remove_failed",
			"module", moduleName,
			"layer", "application",
			"board_id", cmd.BoardID,
			"member_id", cmd.MemberID,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("board member removed",
		"event", "board_member_removed",
		"module", moduleName,
		"layer", "application",
		"board_id", cmd.BoardID,
		"member_id", cmd.MemberID,
		"actor_id", cmd.ActorID,
	)
	return nil
}

type LeaveBoardCommand struct {
	ActorID int64
	BoardID int64
}

type LeaveBoardUseCase struct {
	Boards  ports.BoardRepository
	Reader  ports.MembershipReader
	Tx      ports.TxRunner
	Emitter application.Emitter
	Logger  *slog.Logger
}

func (u LeaveBoardUseCase) Execute(ctx context.Context, cmd LeaveBoardCommand) error {
	if cmd.ActorID <= 0 {
		return domainerrors.ErrUnauthenticated
	}
	err := u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		board, err := u.Boards.LockBoard(ctx, cmd.BoardID)
		if err != nil {
			return err
		}
		member, found, err := u.Reader.FindBoardMember(ctx, cmd.BoardID, cmd.ActorID)
		if err != nil {
			return err
		}
		if !found {
			return domainerrors.ErrMemberNotFound
		}
		if err := guardBoardAdmin(ctx, u.Boards, member, ""); err != nil {
			return err
		}
		if err := u.Boards.DeleteBoardMember(ctx, member.ID); err != nil {
			return err
		}
		return u.Emitter.Emit(ctx, board.ID, eventsv1.BoardMemberLeft{
			BoardMembership: eventsv1.BoardMembership{
				BoardID:   board.ID,
				MemberID:  member.ID,
				UserID:    member.UserID,
				BoardName: board.Name,
			},
		})
	})
	if err != nil {
		application.ResolveLogger(u.Logger).Warn("leave board failed",
			"event", "board_leave_failed",
			"module", moduleName,
			"layer", "application",
			"board_id", cmd.BoardID,
			"actor_id", cmd.ActorID,
			"error", err.Error(),
		)
		return err
	}
	return nil
}

// lockBoardMember takes the board row lock and re-reads the member under it.
func lockBoardMember(
	ctx context.Context,
	boards ports.BoardRepository,
	reader ports.MembershipReader,
	boardID int64,
	memberID int64,
) (entities.BoardMember, error) {
	if _, err := boards.LockBoard(ctx, boardID); err != nil {
		return entities.BoardMember{}, err
	}
	member, err := reader.GetBoardMember(ctx, memberID)
	if err != nil {
		return entities.BoardMember{}, err
	}
	if member.BoardID != boardID {
		return entities.BoardMember{}, domainerrors.ErrMemberNotFound
	}
	return member, nil
}

func guardBoardAdmin(ctx context.Context, boards ports.BoardRepository, member entities.BoardMember, newRole roles.BoardRole) error {
	if member.Role != roles.BoardAdmin {
		return nil
	}
	admins, err := boards.CountBoardMembersWithRole(ctx, member.BoardID, roles.BoardAdmin)
	if err != nil {
		return err
	}
	if !services.RetainsBoardAdmin(member, newRole, admins) {
		return domainerrors.ErrLastBoardAdmin
	}
	return nil
}
