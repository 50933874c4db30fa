package httptransport

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateWorkspaceRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type UpdateWorkspaceRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

type WorkspaceResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   int64     `json:"createdBy"`
	Role        string    `json:"role,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type WorkspaceViewResponse struct {
	WorkspaceResponse
	Boards []BoardResponse `json:"boards"`
}

type ListWorkspacesResponse struct {
	Workspaces []WorkspaceResponse `json:"workspaces"`
}

type GuestWorkspaceResponse struct {
	Workspace WorkspaceResponse `json:"workspace"`
	Boards    []BoardResponse   `json:"boards"`
}

type ListGuestWorkspacesResponse struct {
	Workspaces []GuestWorkspaceResponse `json:"workspaces"`
}

type MemberResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joinedAt"`
	Username    string    `json:"username,omitempty"`
	Firstname   string    `json:"firstname,omitempty"`
	Lastname    string    `json:"lastname,omitempty"`
	Email       string    `json:"email,omitempty"`
	AvatarColor string    `json:"avatarColor,omitempty"`
}

type ListMembersResponse struct {
	Members []MemberResponse `json:"members"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type CreateBoardRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Visibility  string `json:"visibility,omitempty"`
}

type UpdateBoardRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Visibility  *string `json:"visibility,omitempty"`
}

type BoardResponse struct {
	ID          int64     `json:"id"`
	WorkspaceID int64     `json:"workspaceId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Visibility  string    `json:"visibility"`
	CreatedBy   int64     `json:"createdBy"`
	Role        string    `json:"role,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateInvitationRequest struct {
	InviteeID int64  `json:"inviteeId" validate:"required,gt=0"`
	Role      string `json:"role" validate:"required"`
}

type InvitationResponse struct {
	ID          int64     `json:"id"`
	Scope       string    `json:"scope"`
	ContainerID int64     `json:"containerId"`
	InviterID   int64     `json:"inviterId"`
	InviteeID   int64     `json:"inviteeId"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
	ExpiresAt   time.Time `json:"expiresAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ListInvitationsResponse struct {
	Invitations []InvitationResponse `json:"invitations"`
}
