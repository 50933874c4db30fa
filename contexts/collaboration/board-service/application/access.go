package application

import (
	"context"
	"errors"

	"kanvas/contexts/collaboration/board-service/domain/entities"
	domainerrors "kanvas/contexts/collaboration/board-service/domain/errors"
	"kanvas/contexts/collaboration/board-service/domain/services"
	"kanvas/contexts/collaboration/board-service/ports"
	"kanvas/contracts/roles"

	"golang.org/x/sync/errgroup"
)

// AccessEvaluator resolves membership facts and applies the RBAC policies in
// domain/services. Membership lookups for one decision run concurrently.
//
// Callers must not hold a transaction in ctx: the parallel reads need their
// own connections.
type AccessEvaluator struct {
	Reader ports.MembershipReader
}

// BoardAccess loads the board together with the principal's board and
// workspace roles.
func (e AccessEvaluator) BoardAccess(ctx context.Context, principal int64, boardID int64) (services.BoardAccess, error) {
	if principal <= 0 {
		return services.BoardAccess{}, domainerrors.ErrUnauthenticated
	}
	board, err := e.Reader.GetBoard(ctx, boardID)
	if err != nil {
		return services.BoardAccess{}, err
	}

	access := services.BoardAccess{Principal: principal, Board: board}
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		member, found, err := e.Reader.FindBoardMember(groupCtx, board.ID, principal)
		if err != nil || !found {
			return err
		}
		access.BoardRole = member.Role
		return nil
	})
	group.Go(func() error {
		member, found, err := e.Reader.FindWorkspaceMember(groupCtx, board.WorkspaceID, principal)
		if err != nil || !found {
			return err
		}
		access.WorkspaceRole = member.Role
		return nil
	})
	if err := group.Wait(); err != nil {
		return services.BoardAccess{}, err
	}
	return access, nil
}

func (e AccessEvaluator) HasBoardRole(ctx context.Context, principal int64, boardID int64, required roles.BoardRole) (bool, error) {
	access, err := e.BoardAccess(ctx, principal, boardID)
	if err != nil {
		return false, err
	}
	return services.HasBoardRole(access, required), nil
}

func (e AccessEvaluator) CanViewBoard(ctx context.Context, principal int64, boardID int64) (bool, error) {
	access, err := e.BoardAccess(ctx, principal, boardID)
	if err != nil {
		return false, err
	}
	return services.CanViewBoard(access), nil
}

// CanModerateBoard reports false, without error, when the target member does
// not exist on the board.
func (e AccessEvaluator) CanModerateBoard(
	ctx context.Context,
	principal int64,
	boardID int64,
	targetMemberID int64,
) (bool, services.BoardAccess, entities.BoardMember, error) {
	if principal <= 0 {
		return false, services.BoardAccess{}, entities.BoardMember{}, domainerrors.ErrUnauthenticated
	}

	var (
		access services.BoardAccess
		target entities.BoardMember
		found  = true
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		access, err = e.BoardAccess(groupCtx, principal, boardID)
		return err
	})
	group.Go(func() error {
		member, err := e.Reader.GetBoardMember(groupCtx, targetMemberID)
		if errors.Is(err, domainerrors.ErrMemberNotFound) {
			found = false
			return nil
		}
		target = member
		return err
	})
	if err := group.Wait(); err != nil {
		return false, services.BoardAccess{}, entities.BoardMember{}, err
	}
	if !found {
		return false, access, entities.BoardMember{}, nil
	}
	return services.CanModerateBoard(access, target), access, target, nil
}

func (e AccessEvaluator) CanDeleteBoard(ctx context.Context, principal int64, boardID int64) (bool, error) {
	access, err := e.BoardAccess(ctx, principal, boardID)
	if err != nil {
		return false, err
	}
	return services.CanDeleteBoard(access), nil
}

// ResolveBoardRole returns the role the edge injects for principal, or
// ErrForbidden when the principal has no standing on the board.
func (e AccessEvaluator) ResolveBoardRole(ctx context.Context, principal int64, boardID int64) (roles.BoardRole, error) {
	access, err := e.BoardAccess(ctx, principal, boardID)
	if err != nil {
		return "", err
	}
	role, ok := services.EffectiveBoardRole(access)
	if !ok {
		return "", domainerrors.ErrForbidden
	}
	return role, nil
}

func (e AccessEvaluator) WorkspaceAccess(ctx context.Context, principal int64, workspaceID int64) (services.WorkspaceAccess, error) {
	if principal <= 0 {
		return services.WorkspaceAccess{}, domainerrors.ErrUnauthenticated
	}
	access := services.WorkspaceAccess{Principal: principal, WorkspaceID: workspaceID}
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		_, err := e.Reader.GetWorkspace(groupCtx, workspaceID)
		return err
	})
	group.Go(func() error {
		member, found, err := e.Reader.FindWorkspaceMember(groupCtx, workspaceID, principal)
		if err != nil || !found {
			return err
		}
		access.Role = member.Role
		return nil
	})
	if err := group.Wait(); err != nil {
		return services.WorkspaceAccess{}, err
	}
	return access, nil
}

func (e AccessEvaluator) HasWorkspaceRole(ctx context.Context, principal int64, workspaceID int64, required roles.WorkspaceRole) (bool, error) {
	access, err := e.WorkspaceAccess(ctx, principal, workspaceID)
	if err != nil {
		return false, err
	}
	return services.HasWorkspaceRole(access, required), nil
}

// CanModerateWorkspace reports false, without error, when the target member
// does not exist.
func (e AccessEvaluator) CanModerateWorkspace(
	ctx context.Context,
	principal int64,
	workspaceID int64,
	targetMemberID int64,
) (bool, services.WorkspaceAccess, entities.WorkspaceMember, error) {
	access, err := e.WorkspaceAccess(ctx, principal, workspaceID)
	if err != nil {
		return false, services.WorkspaceAccess{}, entities.WorkspaceMember{}, err
	}
	target, err := e.Reader.GetWorkspaceMember(ctx, targetMemberID)
	if errors.Is(err, domainerrors.ErrMemberNotFound) {
		return false, access, entities.WorkspaceMember{}, nil
	}
	if err != nil {
		return false, services.WorkspaceAccess{}, entities.WorkspaceMember{}, err
	}
	return services.CanModerateWorkspace(access, target), access, target, nil
}

func (e AccessEvaluator) CanDeleteWorkspace(ctx context.Context, principal int64, workspaceID int64) (bool, error) {
	access, err := e.WorkspaceAccess(ctx, principal, workspaceID)
	if err != nil {
		return false, err
	}
	return services.CanDeleteWorkspace(access), nil
}
