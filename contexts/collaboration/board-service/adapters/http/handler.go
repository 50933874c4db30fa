package httpadapter

import (
	"context"
	"fmt"
	"log/slog"

	application "kanvas/contexts/collaboration/board-service/application"
	"kanvas/contexts/collaboration/board-service/application/commands"
	"kanvas/contexts/collaboration/board-service/application/queries"
	"kanvas/contexts/collaboration/board-service/domain/entities"
	domainerrors "kanvas/contexts/collaboration/board-service/domain/errors"
	httptransport "kanvas/contexts/collaboration/board-service/transport/http"

	"github.com/go-playground/validator/v10"
)

// Handler maps HTTP DTOs to application commands/queries.
type Handler struct {
	CreateWorkspace       commands.CreateWorkspaceUseCase
	UpdateWorkspace       commands.UpdateWorkspaceUseCase
	DeleteWorkspace       commands.DeleteWorkspaceUseCase
	ChangeWorkspaceRole   commands.ChangeWorkspaceMemberRoleUseCase
	RemoveWorkspaceMember commands.RemoveWorkspaceMemberUseCase
	CreateBoard           commands.CreateBoardUseCase
	UpdateBoard           commands.UpdateBoardUseCase
	DeleteBoard           commands.DeleteBoardUseCase
	ChangeBoardRole       commands.ChangeBoardMemberRoleUseCase
	RemoveBoardMember     commands.RemoveBoardMemberUseCase
	LeaveBoard            commands.LeaveBoardUseCase
	CreateInvitation      commands.CreateInvitationUseCase
	RespondInvitation     commands.RespondInvitationUseCase

	GetWorkspace          queries.GetWorkspaceUseCase
	ListWorkspaces        queries.ListWorkspacesUseCase
	ListGuestWorkspaces   queries.ListGuestWorkspacesUseCase
	ListWorkspaceMembers  queries.ListWorkspaceMembersUseCase
	GetBoard              queries.GetBoardUseCase
	ListBoardMembers      queries.ListBoardMembersUseCase
	LookupBoardRole       queries.LookupBoardRoleUseCase
	ListInvitations       queries.ListInvitationsUseCase

	Validate *validator.Validate
	Logger   *slog.Logger
}

func (h Handler) validate(request any) error {
	if h.Validate == nil {
		return nil
	}
	if err := h.Validate.Struct(request); err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrInvalidRequest, err)
	}
	return nil
}

func (h Handler) CreateWorkspaceHandler(
	ctx context.Context,
	actorID int64,
	request httptransport.CreateWorkspaceRequest,
) (httptransport.WorkspaceResponse, error) {
	if err := h.validate(request); err != nil {
		return httptransport.WorkspaceResponse{}, err
	}
	workspace, err := h.CreateWorkspace.Execute(ctx, commands.CreateWorkspaceCommand{
		ActorID:     actorID,
		Name:        request.Name,
		Description: request.Description,
	})
	if err != nil {
		return httptransport.WorkspaceResponse{}, err
	}
	response := toWorkspaceResponse(workspace)
	response.Role = "OWNER"
	return response, nil
}

func (h Handler) ListWorkspacesHandler(ctx context.Context, actorID int64) (httptransport.ListWorkspacesResponse, error) {
	items, err := h.ListWorkspaces.Execute(ctx, actorID)
	if err != nil {
		return httptransport.ListWorkspacesResponse{}, err
	}
	response := httptransport.ListWorkspacesResponse{Workspaces: make([]httptransport.WorkspaceResponse, 0, len(items))}
	for _, item := range items {
		workspace := toWorkspaceResponse(item.Workspace)
		workspace.Role = string(item.Role)
		response.Workspaces = append(response.Workspaces, workspace)
	}
	return response, nil
}

func (h Handler) ListGuestWorkspacesHandler(ctx context.Context, actorID int64) (httptransport.ListGuestWorkspacesResponse, error) {
	items, err := h.ListGuestWorkspaces.Execute(ctx, actorID)
	if err != nil {
		return httptransport.ListGuestWorkspacesResponse{}, err
	}
	response := httptransport.ListGuestWorkspacesResponse{
		Workspaces: make([]httptransport.GuestWorkspaceResponse, 0, len(items)),
	}
	for _, item := range items {
		response.Workspaces = append(response.Workspaces, httptransport.GuestWorkspaceResponse{
			Workspace: toWorkspaceResponse(item.Workspace),
			Boards:    toBoardSummaries(item.Boards),
		})
	}
	return response, nil
}

func (h Handler) GetWorkspaceHandler(ctx context.Context, actorID int64, workspaceID int64) (httptransport.WorkspaceViewResponse, error) {
	view, err := h.GetWorkspace.Execute(ctx, actorID, workspaceID)
	if err != nil {
		return httptransport.WorkspaceViewResponse{}, err
	}
	workspace := toWorkspaceResponse(view.Workspace)
	workspace.Role = string(view.Role)
	return httptransport.WorkspaceViewResponse{
		WorkspaceResponse: workspace,
		Boards:            toBoardSummaries(view.Boards),
	}, nil
}

func (h Handler) UpdateWorkspaceHandler(
	ctx context.Context,
	actorID int64,
	workspaceID int64,
	request httptransport.UpdateWorkspaceRequest,
) (httptransport.WorkspaceResponse, error) {
	if err := h.validate(request); err != nil {
		return httptransport.WorkspaceResponse{}, err
	}
	workspace, err := h.UpdateWorkspace.Execute(ctx, commands.UpdateWorkspaceCommand{
		ActorID:     actorID,
		WorkspaceID: workspaceID,
		Name:        request.Name,
		Description: request.Description,
	})
	if err != nil {
		return httptransport.WorkspaceResponse{}, err
	}
	return toWorkspaceResponse(workspace), nil
}

func (h Handler) DeleteWorkspaceHandler(ctx context.Context, actorID int64, workspaceID int64) error {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("http workspace delete received",
		"event", "board_http_workspace_delete_received",
		"module", "collaboration/board-service",
		"layer", "transport",
		"workspace_id", workspaceID,
		"actor_id", actorID,
	)
	return h.DeleteWorkspace.Execute(ctx, commands.DeleteWorkspaceCommand{ActorID: actorID, WorkspaceID: workspaceID})
}

func (h Handler) ListWorkspaceMembersHandler(ctx context.Context, actorID int64, workspaceID int64) (httptransport.ListMembersResponse, error) {
	items, err := h.ListWorkspaceMembers.Execute(ctx, actorID, workspaceID)
	if err != nil {
		return httptransport.ListMembersResponse{}, err
	}
	response := httptransport.ListMembersResponse{Members: make([]httptransport.MemberResponse, 0, len(items))}
	for _, item := range items {
		response.Members = append(response.Members, toMemberResponse(
			item.Member.ID, string(item.Member.Role), item.Member.JoinedAt, item.User,
		))
	}
	return response, nil
}

func (h Handler) ChangeWorkspaceMemberRoleHandler(
	ctx context.Context,
	actorID int64,
	workspaceID int64,
	memberID int64,
	request httptransport.ChangeRoleRequest,
) (httptransport.MemberResponse, error) {
	if err := h.validate(request); err != nil {
		return httptransport.MemberResponse{}, err
	}
	member, err := h.ChangeWorkspaceRole.Execute(ctx, commands.ChangeWorkspaceMemberRoleCommand{
		ActorID:     actorID,
		WorkspaceID: workspaceID,
		MemberID:    memberID,
		Role:        request.Role,
	})
	if err != nil {
		return httptransport.MemberResponse{}, err
	}
	return toMemberResponse(member.ID, string(member.Role), member.JoinedAt, entities.User{ID: member.UserID}), nil
}

func (h Handler) RemoveWorkspaceMemberHandler(ctx context.Context, actorID int64, workspaceID int64, memberID int64) error {
	return h.RemoveWorkspaceMember.Execute(ctx, commands.RemoveWorkspaceMemberCommand{
		ActorID:     actorID,
		WorkspaceID: workspaceID,
		MemberID:    memberID,
	})
}

func (h Handler) CreateBoardHandler(
	ctx context.Context,
	actorID int64,
	workspaceID int64,
	request httptransport.CreateBoardRequest,
) (httptransport.BoardResponse, error) {
	if err := h.validate(request); err != nil {
		return httptransport.BoardResponse{}, err
	}
	board, err := h.CreateBoard.Execute(ctx, commands.CreateBoardCommand{
		ActorID:     actorID,
		WorkspaceID: workspaceID,
		Name:        request.Name,
		Description: request.Description,
		Visibility:  request.Visibility,
	})
	if err != nil {
		return httptransport.BoardResponse{}, err
	}
	return toBoardResponse(board, "ADMIN"), nil
}

func (h Handler) GetBoardHandler(ctx context.Context, actorID int64, boardID int64) (httptransport.BoardResponse, error) {
	summary, err := h.GetBoard.Execute(ctx, actorID, boardID)
	if err != nil {
		return httptransport.BoardResponse{}, err
	}
	return toBoardResponse(summary.Board, string(summary.Role)), nil
}

func (h Handler) UpdateBoardHandler(
	ctx context.Context,
	actorID int64,
	boardID int64,
	request httptransport.UpdateBoardRequest,
) (httptransport.BoardResponse, error) {
	if err := h.validate(request); err != nil {
		return httptransport.BoardResponse{}, err
	}
	board, err := h.UpdateBoard.Execute(ctx, commands.UpdateBoardCommand{
		ActorID:     actorID,
		BoardID:     boardID,
		Name:        request.Name,
		Description: request.Description,
		Visibility:  request.Visibility,
	})
	if err != nil {
		return httptransport.BoardResponse{}, err
	}
	return toBoardResponse(board, ""), nil
}

func (h Handler) DeleteBoardHandler(ctx context.Context, actorID int64, boardID int64) error {
	return h.DeleteBoard.Execute(ctx, commands.DeleteBoardCommand{ActorID: actorID, BoardID: boardID})
}

func (h Handler) ListBoardMembersHandler(ctx context.Context, actorID int64, boardID int64) (httptransport.ListMembersResponse, error) {
	items, err := h.ListBoardMembers.Execute(ctx, actorID, boardID)
	if err != nil {
		return httptransport.ListMembersResponse{}, err
	}
	response := httptransport.ListMembersResponse{Members: make([]httptransport.MemberResponse, 0, len(items))}
	for _, item := range items {
		response.Members = append(response.Members, toMemberResponse(
			item.Member.ID, string(item.Member.Role), item.Member.JoinedAt, item.User,
		))
	}
	return response, nil
}

func (h Handler) ChangeBoardMemberRoleHandler(
	ctx context.Context,
	actorID int64,
	boardID int64,
	memberID int64,
	request httptransport.ChangeRoleRequest,
) (httptransport.MemberResponse, error) {
	if err := h.validate(request); err != nil {
		return httptransport.MemberResponse{}, err
	}
	member, err := h.ChangeBoardRole.Execute(ctx, commands.ChangeBoardMemberRoleCommand{
		ActorID:  actorID,
		BoardID:  boardID,
		MemberID: memberID,
		Role:     request.Role,
	})
	if err != nil {
		return httptransport.MemberResponse{}, err
	}
	return toMemberResponse(member.ID, string(member.Role), member.JoinedAt, entities.User{ID: member.UserID}), nil
}

func (h Handler) RemoveBoardMemberHandler(ctx context.Context, actorID int64, boardID int64, memberID int64) error {
	return h.RemoveBoardMember.Execute(ctx, commands.RemoveBoardMemberCommand{
		ActorID:  actorID,
		BoardID:  boardID,
		MemberID: memberID,
	})
}

func (h Handler) LeaveBoardHandler(ctx context.Context, actorID int64, boardID int64) error {
	return h.LeaveBoard.Execute(ctx, commands.LeaveBoardCommand{ActorID: actorID, BoardID: boardID})
}

// LookupBoardRoleHandler resolves the role the edge injects for principal.
func (h Handler) LookupBoardRoleHandler(ctx context.Context, principal int64, boardID int64) (string, error) {
	role, err := h.LookupBoardRole.Execute(ctx, principal, boardID)
	if err != nil {
		return "", err
	}
	return string(role), nil
}

func (h Handler) CreateInvitationHandler(
	ctx context.Context,
	actorID int64,
	scope entities.InvitationScope,
	containerID int64,
	request httptransport.CreateInvitationRequest,
) (httptransport.InvitationResponse, error) {
	if err := h.validate(request); err != nil {
		return httptransport.InvitationResponse{}, err
	}
	invitation, err := h.CreateInvitation.Execute(ctx, commands.CreateInvitationCommand{
		ActorID:     actorID,
		Scope:       scope,
		ContainerID: containerID,
		InviteeID:   request.InviteeID,
		Role:        request.Role,
	})
	if err != nil {
		return httptransport.InvitationResponse{}, err
	}
	return toInvitationResponse(invitation), nil
}

func (h Handler) ListInvitationsHandler(ctx context.Context, actorID int64) (httptransport.ListInvitationsResponse, error) {
	items, err := h.ListInvitations.Execute(ctx, actorID)
	if err != nil {
		return httptransport.ListInvitationsResponse{}, err
	}
	response := httptransport.ListInvitationsResponse{
		Invitations: make([]httptransport.InvitationResponse, 0, len(items)),
	}
	for _, item := range items {
		response.Invitations = append(response.Invitations, toInvitationResponse(item))
	}
	return response, nil
}

// RespondInvitationHandler returns the invitation in its EXPIRED state along
// with ErrInvitationExpired when it lapsed before the answer arrived.
func (h Handler) RespondInvitationHandler(
	ctx context.Context,
	actorID int64,
	invitationID int64,
	accept bool,
) (httptransport.InvitationResponse, error) {
	invitation, err := h.RespondInvitation.Execute(ctx, commands.RespondInvitationCommand{
		ActorID:      actorID,
		InvitationID: invitationID,
		Accept:       accept,
	})
	if err != nil {
		return httptransport.InvitationResponse{}, err
	}
	return toInvitationResponse(invitation), nil
}
