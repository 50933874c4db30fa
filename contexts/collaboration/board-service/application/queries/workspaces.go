package queries

import (
	"context"
	"log/slog"
	"sort"

	application "kanvas/contexts/collaboration/board-service/application"
	"kanvas/contexts/collaboration/board-service/domain/entities"
	domainerrors "kanvas/contexts/collaboration/board-service/domain/errors"
	"kanvas/contexts/collaboration/board-service/domain/services"
	"kanvas/contexts/collaboration/board-service/ports"
	"kanvas/contracts/roles"
)

const moduleName = "collaboration/board-service"

type BoardSummary struct {
	Board entities.Board
	// Role is the caller's effective board role; empty when the caller only
	// sees the board through workspace administration.
	Role roles.BoardRole
}

type WorkspaceView struct {
	Workspace entities.Workspace
	Role      roles.WorkspaceRole
	Boards    []BoardSummary
}

type GetWorkspaceUseCase struct {
	Access application.AccessEvaluator
	Reader ports.MembershipReader
	Boards ports.BoardRepository
	Logger *slog.Logger
}

// Execute returns the workspace with the boards the caller may see. OWNER and
// ADMIN see every board; members see boards they belong to and public ones.
func (u GetWorkspaceUseCase) Execute(ctx context.Context, actorID int64, workspaceID int64) (WorkspaceView, error) {
	access, err := u.Access.WorkspaceAccess(ctx, actorID, workspaceID)
	if err != nil {
		return WorkspaceView{}, err
	}
	if !services.HasWorkspaceRole(access, roles.WorkspaceMember) {
		return WorkspaceView{}, domainerrors.ErrForbidden
	}
	workspace, err := u.Reader.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return WorkspaceView{}, err
	}
	boards, err := u.Boards.ListBoardsByWorkspace(ctx, workspaceID)
	if err != nil {
		return WorkspaceView{}, err
	}
	memberships, err := u.Boards.ListBoardMembershipsForUser(ctx, actorID)
	if err != nil {
		return WorkspaceView{}, err
	}
	held := make(map[int64]roles.BoardRole, len(memberships))
	for _, membership := range memberships {
		held[membership.BoardID] = membership.Role
	}

	view := WorkspaceView{Workspace: workspace, Role: access.Role, Boards: []BoardSummary{}}
	for _, board := range boards {
		boardAccess := services.BoardAccess{
			Principal:     actorID,
			Board:         board,
			BoardRole:     held[board.ID],
			WorkspaceRole: access.Role,
		}
		role, visible := services.EffectiveBoardRole(boardAccess)
		if !visible && !access.Role.AtLeast(roles.WorkspaceAdmin) {
			continue
		}
		view.Boards = append(view.Boards, BoardSummary{Board: board, Role: role})
	}

	application.ResolveLogger(u.Logger).Debug("workspace view resolved",
		"event", "workspace_view_resolved",
		"module", moduleName,
		"layer", "application",
		"workspace_id", workspaceID,
		"visible_boards", len(view.Boards),
		"total_boards", len(boards),
	)
	return view, nil
}

type WorkspaceSummary struct {
	Workspace entities.Workspace
	Role      roles.WorkspaceRole
}

type ListWorkspacesUseCase struct {
	Workspaces ports.WorkspaceRepository
}

func (u ListWorkspacesUseCase) Execute(ctx context.Context, actorID int64) ([]WorkspaceSummary, error) {
	if actorID <= 0 {
		return nil, domainerrors.ErrUnauthenticated
	}
	workspaces, err := u.Workspaces.ListWorkspacesForUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	memberships, err := u.Workspaces.ListWorkspaceMembershipsForUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	held := make(map[int64]roles.WorkspaceRole, len(memberships))
	for _, membership := range memberships {
		held[membership.WorkspaceID] = membership.Role
	}
	items := make([]WorkspaceSummary, 0, len(workspaces))
	for _, workspace := range workspaces {
		items = append(items, WorkspaceSummary{Workspace: workspace, Role: held[workspace.ID]})
	}
	return items, nil
}

type GuestWorkspace struct {
	Workspace entities.Workspace
	Boards    []BoardSummary
}

// ListGuestWorkspacesUseCase lists workspaces where the caller holds board
// memberships without being a workspace member.
type ListGuestWorkspacesUseCase struct {
	Reader     ports.MembershipReader
	Workspaces ports.WorkspaceRepository
	Boards     ports.BoardRepository
}

func (u ListGuestWorkspacesUseCase) Execute(ctx context.Context, actorID int64) ([]GuestWorkspace, error) {
	if actorID <= 0 {
		return nil, domainerrors.ErrUnauthenticated
	}
	memberships, err := u.Boards.ListBoardMembershipsForUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	workspaceMemberships, err := u.Workspaces.ListWorkspaceMembershipsForUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	joined := make(map[int64]bool, len(workspaceMemberships))
	for _, membership := range workspaceMemberships {
		joined[membership.WorkspaceID] = true
	}

	boardIDs := make([]int64, 0, len(memberships))
	held := make(map[int64]roles.BoardRole, len(memberships))
	for _, membership := range memberships {
		boardIDs = append(boardIDs, membership.BoardID)
		held[membership.BoardID] = membership.Role
	}
	boards, err := u.Boards.GetBoards(ctx, boardIDs)
	if err != nil {
		return nil, err
	}

	grouped := map[int64]*GuestWorkspace{}
	for _, board := range boards {
		if joined[board.WorkspaceID] {
			continue
		}
		guest, ok := grouped[board.WorkspaceID]
		if !ok {
			workspace, err := u.Reader.GetWorkspace(ctx, board.WorkspaceID)
			if err != nil {
				return nil, err
			}
			guest = &GuestWorkspace{Workspace: workspace}
			grouped[board.WorkspaceID] = guest
		}
		guest.Boards = append(guest.Boards, BoardSummary{Board: board, Role: held[board.ID]})
	}

	items := make([]GuestWorkspace, 0, len(grouped))
	for _, guest := range grouped {
		items = append(items, *guest)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Workspace.ID < items[j].Workspace.ID })
	return items, nil
}

type WorkspaceMemberView struct {
	Member entities.WorkspaceMember
	User   entities.User
}

type ListWorkspaceMembersUseCase struct {
	Access     application.AccessEvaluator
	Workspaces ports.WorkspaceRepository
	Users      ports.UserReplica
}

func (u ListWorkspaceMembersUseCase) Execute(ctx context.Context, actorID int64, workspaceID int64) ([]WorkspaceMemberView, error) {
	allowed, err := u.Access.HasWorkspaceRole(ctx, actorID, workspaceID, roles.WorkspaceMember)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domainerrors.ErrForbidden
	}
	members, err := u.Workspaces.ListWorkspaceMembers(ctx, workspaceID)
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
	items := make([]WorkspaceMemberView, 0, len(members))
	for _, member := range members {
		user, ok := users[member.UserID]
		if !ok {
			user = entities.User{ID: member.UserID}
		}
		items = append(items, WorkspaceMemberView{Member: member, User: user})
	}
	return items, nil
}
