package httpadapter

import (
	"time"

	"kanvas/contexts/collaboration/board-service/application/queries"
	"kanvas/contexts/collaboration/board-service/domain/entities"
	httptransport "kanvas/contexts/collaboration/board-service/transport/http"
)

func toWorkspaceResponse(workspace entities.Workspace) httptransport.WorkspaceResponse {
	return httptransport.WorkspaceResponse{
		ID:          workspace.ID,
		Name:        workspace.Name,
		Description: workspace.Description,
		CreatedBy:   workspace.CreatedBy,
		CreatedAt:   workspace.CreatedAt,
		UpdatedAt:   workspace.UpdatedAt,
	}
}

func toBoardResponse(board entities.Board, role string) httptransport.BoardResponse {
	return httptransport.BoardResponse{
		ID:          board.ID,
		WorkspaceID: board.WorkspaceID,
		Name:        board.Name,
		Description: board.Description,
		Visibility:  string(board.Visibility),
		CreatedBy:   board.CreatedBy,
		Role:        role,
		CreatedAt:   board.CreatedAt,
		UpdatedAt:   board.UpdatedAt,
	}
}

func toBoardSummaries(items []queries.BoardSummary) []httptransport.BoardResponse {
	boards := make([]httptransport.BoardResponse, 0, len(items))
	for _, item := range items {
		boards = append(boards, toBoardResponse(item.Board, string(item.Role)))
	}
	return boards
}

func toMemberResponse(id int64, role string, joinedAt time.Time, user entities.User) httptransport.MemberResponse {
	return httptransport.MemberResponse{
		ID:          id,
		UserID:      user.ID,
		Role:        role,
		JoinedAt:    joinedAt,
		Username:    user.Username,
		Firstname:   user.Firstname,
		Lastname:    user.Lastname,
		Email:       user.Email,
		AvatarColor: user.AvatarColor,
	}
}

func toInvitationResponse(invitation entities.Invitation) httptransport.InvitationResponse {
	return httptransport.InvitationResponse{
		ID:          invitation.ID,
		Scope:       string(invitation.Scope),
		ContainerID: invitation.ContainerID,
		InviterID:   invitation.InviterID,
		InviteeID:   invitation.InviteeID,
		Role:        invitation.Role,
		Status:      string(invitation.Status),
		ExpiresAt:   invitation.ExpiresAt,
		CreatedAt:   invitation.CreatedAt,
	}
}
