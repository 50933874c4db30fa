package commands

import (
	"context"
	"log/slog"
	"strings"

	application "kanvas/contexts/collaboration/board-service/application"
	"kanvas/contexts/collaboration/board-service/domain/entities"
	domainerrors "kanvas/contexts/collaboration/board-service/domain/errors"
	"kanvas/contexts/collaboration/board-service/domain/services"
	"kanvas/contexts/collaboration/board-service/ports"
	eventsv1 "kanvas/contracts/events/v1"
	"kanvas/contracts/roles"
)

type CreateWorkspaceCommand struct {
	ActorID     int64
	Name        string
	Description string
}

type CreateWorkspaceUseCase struct {
	Workspaces ports.WorkspaceRepository
	Tx         ports.TxRunner
	Clock      ports.Clock
	Logger     *slog.Logger
}

// Execute creates the workspace and makes the actor its OWNER.
func (u CreateWorkspaceUseCase) Execute(ctx context.Context, cmd CreateWorkspaceCommand) (entities.Workspace, error) {
	logger := application.ResolveLogger(u.Logger)
	if cmd.ActorID <= 0 {
		return entities.Workspace{}, domainerrors.ErrUnauthenticated
	}
	now := currentTime(u.Clock)
	workspace := entities.Workspace{
		Name:        strings.TrimSpace(cmd.Name),
		Description: strings.TrimSpace(cmd.Description),
		CreatedBy:   cmd.ActorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if !workspace.Validate() {
		return entities.Workspace{}, domainerrors.ErrInvalidRequest
	}

	err := u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		created, err := u.Workspaces.CreateWorkspace(ctx, workspace)
		if err != nil {
			return err
		}
		workspace = created
		_, err = u.Workspaces.AddWorkspaceMember(ctx, entities.WorkspaceMember{
			WorkspaceID: created.ID,
			UserID:      cmd.ActorID,
			Role:        roles.WorkspaceOwner,
			JoinedAt:    now,
		})
		return err
	})
	if err != nil {
		logger.Error("create workspace failed",
			"event", "workspace_create_failed",
			"module", moduleName,
			"layer", "application",
			"actor_id", cmd.ActorID,
			"error", err.Error(),
		)
		return entities.Workspace{}, err
	}

	logger.Info("workspace created",
		"event", "workspace_created",
		"module", moduleName,
		"layer", "application",
		"workspace_id", workspace.ID,
		"actor_id", cmd.ActorID,
	)
	return workspace, nil
}

type UpdateWorkspaceCommand struct {
	ActorID     int64
	WorkspaceID int64
	Name        *string
	Description *string
}

type UpdateWorkspaceUseCase struct {
	Access     application.AccessEvaluator
	Workspaces ports.WorkspaceRepository
	Tx         ports.TxRunner
	Clock      ports.Clock
	Logger     *slog.Logger
}

func (u UpdateWorkspaceUseCase) Execute(ctx context.Context, cmd UpdateWorkspaceCommand) (entities.Workspace, error) {
	allowed, err := u.Access.HasWorkspaceRole(ctx, cmd.ActorID, cmd.WorkspaceID, roles.WorkspaceAdmin)
	if err != nil {
		return entities.Workspace{}, err
	}
	if !allowed {
		return entities.Workspace{}, domainerrors.ErrForbidden
	}

	var updated entities.Workspace
	err = u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		workspace, err := u.Workspaces.LockWorkspace(ctx, cmd.WorkspaceID)
		if err != nil {
			return err
		}
		if cmd.Name != nil {
			workspace.Name = strings.TrimSpace(*cmd.Name)
		}
		if cmd.Description != nil {
			workspace.Description = strings.TrimSpace(*cmd.Description)
		}
		if !workspace.Validate() {
			return domainerrors.ErrInvalidRequest
		}
		workspace.UpdatedAt = currentTime(u.Clock)
		updated = workspace
		return u.Workspaces.UpdateWorkspace(ctx, workspace)
	})
	if err != nil {
		application.ResolveLogger(u.Logger).Error("update workspace failed",
			"event", "workspace_update_failed",
			"module", moduleName,
			"layer", "application",
			"workspace_id", cmd.WorkspaceID,
			"error", err.Error(),
		)
		return entities.Workspace{}, err
	}
	return updated, nil
}

type DeleteWorkspaceCommand struct {
	ActorID     int64
	WorkspaceID int64
}

type DeleteWorkspaceUseCase struct {
	Access     application.AccessEvaluator
	Workspaces ports.WorkspaceRepository
	Boards     ports.BoardRepository
	Tx         ports.TxRunner
	Emitter    application.Emitter
	Logger     *slog.Logger
}

// Execute deletes the workspace and its boards, then announces the board ids
// so that downstream services can drop their board-scoped state.
func (u DeleteWorkspaceUseCase) Execute(ctx context.Context, cmd DeleteWorkspaceCommand) error {
	logger := application.ResolveLogger(u.Logger)
	allowed, err := u.Access.CanDeleteWorkspace(ctx, cmd.ActorID, cmd.WorkspaceID)
	if err != nil {
		return err
	}
	if !allowed {
		return domainerrors.ErrForbidden
	}

	var boardIDs []int64
	err = u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := u.Workspaces.LockWorkspace(ctx, cmd.WorkspaceID); err != nil {
			return err
		}
		boards, err := u.Boards.ListBoardsByWorkspace(ctx, cmd.WorkspaceID)
		if err != nil {
			return err
		}
		boardIDs = make([]int64, 0, len(boards))
		for _, board := range boards {
			boardIDs = append(boardIDs, board.ID)
		}
		if err := u.Workspaces.DeleteWorkspace(ctx, cmd.WorkspaceID); err != nil {
			return err
		}
		return u.Emitter.Emit(ctx, cmd.WorkspaceID, eventsv1.WorkspaceDeleted{
			WorkspaceID: cmd.WorkspaceID,
			BoardIDs:    boardIDs,
		})
	})
	if err != nil {
		logger.Error("delete workspace failed",
			"event", "workspace_delete_failed",
			"module", moduleName,
			"layer", "application",
			"workspace_id", cmd.WorkspaceID,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("workspace deleted",
		"event", "workspace_deleted",
		"module", moduleName,
		"layer", "application",
		"workspace_id", cmd.WorkspaceID,
		"board_count", len(boardIDs),
	)
	return nil
}

type ChangeWorkspaceMemberRoleCommand struct {
	ActorID     int64
	WorkspaceID int64
	MemberID    int64
	Role        string
}

type ChangeWorkspaceMemberRoleUseCase struct {
	Access     application.AccessEvaluator
	Workspaces ports.WorkspaceRepository
	Reader     ports.MembershipReader
	Tx         ports.TxRunner
	Logger     *slog.Logger
}

// Execute changes a member's workspace role. Only an OWNER may grant OWNER,
// and the last OWNER cannot be demoted.
func (u ChangeWorkspaceMemberRoleUseCase) Execute(
	ctx context.Context,
	cmd ChangeWorkspaceMemberRoleCommand,
) (entities.WorkspaceMember, error) {
	role, ok := roles.ParseWorkspaceRole(cmd.Role)
	if !ok {
		return entities.WorkspaceMember{}, domainerrors.ErrInvalidRole
	}
	allowed, access, target, err := u.Access.CanModerateWorkspace(ctx, cmd.ActorID, cmd.WorkspaceID, cmd.MemberID)
	if err != nil {
		return entities.WorkspaceMember{}, err
	}
	if target.ID == 0 {
		return entities.WorkspaceMember{}, domainerrors.ErrMemberNotFound
	}
	if !allowed || (role == roles.WorkspaceOwner && access.Role != roles.WorkspaceOwner) {
		return entities.WorkspaceMember{}, domainerrors.ErrForbidden
	}

	err = u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := u.Workspaces.LockWorkspace(ctx, cmd.WorkspaceID); err != nil {
			return err
		}
		current, err := u.Reader.GetWorkspaceMember(ctx, cmd.MemberID)
		if err != nil {
			return err
		}
		if current.WorkspaceID != cmd.WorkspaceID {
			return domainerrors.ErrMemberNotFound
		}
		owners, err := u.Workspaces.CountWorkspaceMembersWithRole(ctx, cmd.WorkspaceID, roles.WorkspaceOwner)
		if err != nil {
			return err
		}
		if !services.RetainsWorkspaceOwner(current, role, owners) {
			return domainerrors.ErrLastWorkspaceOwner
		}
		if err := u.Workspaces.UpdateWorkspaceMemberRole(ctx, current.ID, role); err != nil {
			return err
		}
		current.Role = role
		target = current
		return nil
	})
	if err != nil {
		application.ResolveLogger(u.Logger).Warn("change workspace member role failed",
			"event", "workspace_member_role_change_failed",
			"module", moduleName,
			"layer", "application",
			"workspace_id", cmd.WorkspaceID,
			"member_id", cmd.MemberID,
			"role", string(role),
			"error", err.Error(),
		)
		return entities.WorkspaceMember{}, err
	}
	return target, nil
}

type RemoveWorkspaceMemberCommand struct {
	ActorID     int64
	WorkspaceID int64
	MemberID    int64
}

type RemoveWorkspaceMemberUseCase struct {
	Access     application.AccessEvaluator
	Workspaces ports.WorkspaceRepository
	Boards     ports.BoardRepository
	Reader     ports.MembershipReader
	Tx         ports.TxRunner
	Emitter    application.Emitter
	Logger     *slog.Logger
}

// Execute removes a workspace member, or lets a member leave when the target
// is the actor. The member's board memberships inside the workspace go with
// it, each announced as MEMBER_REMOVED.
func (u RemoveWorkspaceMemberUseCase) Execute(ctx context.Context, cmd RemoveWorkspaceMemberCommand) error {
	logger := application.ResolveLogger(u.Logger)
	allowed, _, target, err := u.Access.CanModerateWorkspace(ctx, cmd.ActorID, cmd.WorkspaceID, cmd.MemberID)
	if err != nil {
		return err
	}
	if target.ID == 0 || target.WorkspaceID != cmd.WorkspaceID {
		return domainerrors.ErrMemberNotFound
	}
	if !allowed && target.UserID != cmd.ActorID {
		return domainerrors.ErrForbidden
	}

	removedBoards := 0
	err = u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := u.Workspaces.LockWorkspace(ctx, cmd.WorkspaceID); err != nil {
			return err
		}
		current, err := u.Reader.GetWorkspaceMember(ctx, cmd.MemberID)
		if err != nil {
			return err
		}
		owners, err := u.Workspaces.CountWorkspaceMembersWithRole(ctx, cmd.WorkspaceID, roles.WorkspaceOwner)
		if err != nil {
			return err
		}
		if !services.RetainsWorkspaceOwner(current, "", owners) {
			return domainerrors.ErrLastWorkspaceOwner
		}

		removedBoards, err = u.removeBoardMemberships(ctx, cmd, current.UserID)
		if err != nil {
			return err
		}
		return u.Workspaces.DeleteWorkspaceMember(ctx, current.ID)
	})
	if err != nil {
		logger.Warn("remove workspace member failed",
			"event", "workspace_member_remove_failed",
			"module", moduleName,
			"layer", "application",
			"workspace_id", cmd.WorkspaceID,
			"member_id", cmd.MemberID,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("workspace member removed",
		"event", "workspace_member_removed",
		"module", moduleName,
		"layer", "application",
		"workspace_id", cmd.WorkspaceID,
		"member_id", cmd.MemberID,
		"board_memberships_removed", removedBoards,
	)
	return nil
}

func (u RemoveWorkspaceMemberUseCase) removeBoardMemberships(
	ctx context.Context,
	cmd RemoveWorkspaceMemberCommand,
	userID int64,
) (int, error) {
	boards, err := u.Boards.ListBoardsByWorkspace(ctx, cmd.WorkspaceID)
	if err != nil {
		return 0, err
	}
	byID := make(map[int64]entities.Board, len(boards))
	for _, board := range boards {
		byID[board.ID] = board
	}
	memberships, err := u.Boards.ListBoardMembershipsForUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, membership := range memberships {
		board, ok := byID[membership.BoardID]
		if !ok {
			continue
		}
		if _, err := u.Boards.LockBoard(ctx, board.ID); err != nil {
			return 0, err
		}
		if err := guardBoardAdmin(ctx, u.Boards, membership, ""); err != nil {
			return 0, err
		}
		if err := u.Boards.DeleteBoardMember(ctx, membership.ID); err != nil {
			return 0, err
		}
		if err := u.Emitter.Emit(ctx, board.ID, eventsv1.BoardMemberRemoved{
			BoardMembership: eventsv1.BoardMembership{
				BoardID:   board.ID,
				MemberID:  membership.ID,
				UserID:    userID,
				BoardName: board.Name,
			},
			RemovedBy: cmd.ActorID,
		}); err != nil {
			return 0, err
		}
		removed++
	}
	return removed, nil
}
