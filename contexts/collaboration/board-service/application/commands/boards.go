package commands

import (
	"context"
	"log/slog"
	"strings"

	application "kanvas/contexts/collaboration/board-service/application"
	"kanvas/contexts/collaboration/board-service/domain/entities"
	domainerrors "kanvas/contexts/collaboration/board-service/domain/errors"
	"kanvas/contexts/collaboration/board-service/ports"
	eventsv1 "kanvas/contracts/events/v1"
	"kanvas/contracts/roles"
)

type CreateBoardCommand struct {
	ActorID     int64
	WorkspaceID int64
	Name        string
	Description string
	Visibility  string
}

type CreateBoardUseCase struct {
	Access     application.AccessEvaluator
	Workspaces ports.WorkspaceRepository
	Boards     ports.BoardRepository
	Reader     ports.MembershipReader
	Users      ports.UserReplica
	Tx         ports.TxRunner
	Emitter    application.Emitter
	Clock      ports.Clock
	Logger     *slog.Logger
}

// Execute creates a board in the workspace with the actor as its ADMIN.
// The workspace row is locked so a concurrent workspace delete either sees
// the new board in its cascade or makes this call fail with not found.
func (u CreateBoardUseCase) Execute(ctx context.Context, cmd CreateBoardCommand) (entities.Board, error) {
	logger := application.ResolveLogger(u.Logger)
	visibility, ok := entities.ParseVisibility(cmd.Visibility)
	if !ok {
		return entities.Board{}, domainerrors.ErrInvalidRequest
	}
	allowed, err := u.Access.HasWorkspaceRole(ctx, cmd.ActorID, cmd.WorkspaceID, roles.WorkspaceMember)
	if err != nil {
		return entities.Board{}, err
	}
	if !allowed {
		return entities.Board{}, domainerrors.ErrForbidden
	}

	now := currentTime(u.Clock)
	board := entities.Board{
		WorkspaceID: cmd.WorkspaceID,
		Name:        strings.TrimSpace(cmd.Name),
		Description: strings.TrimSpace(cmd.Description),
		Visibility:  visibility,
		CreatedBy:   cmd.ActorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if !board.Validate() {
		return entities.Board{}, domainerrors.ErrInvalidRequest
	}
	creator, err := replicaUser(ctx, u.Users, cmd.ActorID)
	if err != nil {
		return entities.Board{}, err
	}

	err = u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := u.Workspaces.LockWorkspace(ctx, cmd.WorkspaceID); err != nil {
			return err
		}
		if _, found, err := u.Reader.FindWorkspaceMember(ctx, cmd.WorkspaceID, cmd.ActorID); err != nil {
			return err
		} else if !found {
			return domainerrors.ErrForbidden
		}
		created, err := u.Boards.CreateBoard(ctx, board)
		if err != nil {
			return err
		}
		board = created
		member, err := u.Boards.AddBoardMember(ctx, entities.BoardMember{
			BoardID:  created.ID,
			UserID:   cmd.ActorID,
			Role:     roles.BoardAdmin,
			JoinedAt: now,
		})
		if err != nil {
			return err
		}
		return u.Emitter.Emit(ctx, created.ID, memberJoined(member, creator))
	})
	if err != nil {
		logger.Error("create board failed",
			"event", "board_create_failed",
			"module", moduleName,
			"layer", "application",
			"workspace_id", cmd.WorkspaceID,
			"error", err.Error(),
		)
		return entities.Board{}, err
	}

	logger.Info("board created",
		"event", "board_created",
		"module", moduleName,
		"layer", "application",
		"workspace_id", cmd.WorkspaceID,
		"board_id", board.ID,
	)
	return board, nil
}

type UpdateBoardCommand struct {
	ActorID     int64
	BoardID     int64
	Name        *string
	Description *string
	Visibility  *string
}

type UpdateBoardUseCase struct {
	Access  application.AccessEvaluator
	Boards  ports.BoardRepository
	Tx      ports.TxRunner
	Emitter application.Emitter
	Clock   ports.Clock
	Logger  *slog.Logger
}

func (u UpdateBoardUseCase) Execute(ctx context.Context, cmd UpdateBoardCommand) (entities.Board, error) {
	allowed, err := u.Access.HasBoardRole(ctx, cmd.ActorID, cmd.BoardID, roles.BoardAdmin)
	if err != nil {
		return entities.Board{}, err
	}
	if !allowed {
		return entities.Board{}, domainerrors.ErrForbidden
	}

	var updated entities.Board
	err = u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		board, err := u.Boards.LockBoard(ctx, cmd.BoardID)
		if err != nil {
			return err
		}
		if cmd.Name != nil {
			board.Name = strings.TrimSpace(*cmd.Name)
		}
		if cmd.Description != nil {
			board.Description = strings.TrimSpace(*cmd.Description)
		}
		if cmd.Visibility != nil {
			visibility, ok := entities.ParseVisibility(*cmd.Visibility)
			if !ok {
				return domainerrors.ErrInvalidRequest
			}
			board.Visibility = visibility
		}
		if !board.Validate() {
			return domainerrors.ErrInvalidRequest
		}
		board.UpdatedAt = currentTime(u.Clock)
		if err := u.Boards.UpdateBoard(ctx, board); err != nil {
			return err
		}
		updated = board
		return u.Emitter.Emit(ctx, board.ID, eventsv1.BoardUpdated{
			BoardID:     board.ID,
			WorkspaceID: board.WorkspaceID,
			Name:        board.Name,
			Description: board.Description,
			Visibility:  string(board.Visibility),
		})
	})
	if err != nil {
		application.ResolveLogger(u.Logger).Error("update board failed",
			"event", "board_update_failed",
			"module", moduleName,
			"layer", "application",
			"board_id", cmd.BoardID,
			"error", err.Error(),
		)
		return entities.Board{}, err
	}
	return updated, nil
}

type DeleteBoardCommand struct {
	ActorID int64
	BoardID int64
}

type DeleteBoardUseCase struct {
	Access  application.AccessEvaluator
	Boards  ports.BoardRepository
	Tx      ports.TxRunner
	Emitter application.Emitter
	Logger  *slog.Logger
}

func (u DeleteBoardUseCase) Execute(ctx context.Context, cmd DeleteBoardCommand) error {
	logger := application.ResolveLogger(u.Logger)
	allowed, err := u.Access.CanDeleteBoard(ctx, cmd.ActorID, cmd.BoardID)
	if err != nil {
		return err
	}
	if !allowed {
		return domainerrors.ErrForbidden
	}

	err = u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		board, err := u.Boards.LockBoard(ctx, cmd.BoardID)
		if err != nil {
			return err
		}
		if err := u.Boards.DeleteBoard(ctx, board.ID); err != nil {
			return err
		}
		return u.Emitter.Emit(ctx, board.ID, eventsv1.BoardDeleted{
			BoardID:     board.ID,
			WorkspaceID: board.WorkspaceID,
		})
	})
	if err != nil {
		logger.Error("delete board failed",
			"event", "board_delete_failed",
			"module", moduleName,
			"layer", "application",
			"board_id", cmd.BoardID,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("board deleted",
		"event", "board_deleted",
		"module", moduleName,
		"layer", "application",
		"board_id", cmd.BoardID,
		"actor_id", cmd.ActorID,
	)
	return nil
}

func memberJoined(member entities.BoardMember, user entities.User) eventsv1.BoardMemberJoined {
	return eventsv1.BoardMemberJoined{
		BoardID:     member.BoardID,
		MemberID:    member.ID,
		UserID:      member.UserID,
		Role:        string(member.Role),
		Username:    user.Username,
		Firstname:   user.Firstname,
		Lastname:    user.Lastname,
		AvatarColor: user.AvatarColor,
		JoinedAt:    member.JoinedAt,
	}
}
