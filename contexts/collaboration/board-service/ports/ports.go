package ports

import (
	"context"
	"time"

	"kanvas/contexts/collaboration/board-service/domain/entities"
	eventsv1 "kanvas/contracts/events/v1"
	"kanvas/contracts/roles"
)

// MembershipReader resolves the facts every authorization decision needs.
type MembershipReader interface {
	GetWorkspace(ctx context.Context, workspaceID int64) (entities.Workspace, error)
	GetBoard(ctx context.Context, boardID int64) (entities.Board, error)
	FindBoardMember(ctx context.Context, boardID int64, userID int64) (entities.BoardMember, bool, error)
	GetBoardMember(ctx context.Context, memberID int64) (entities.BoardMember, error)
	FindWorkspaceMember(ctx context.Context, workspaceID int64, userID int64) (entities.WorkspaceMember, bool, error)
	GetWorkspaceMember(ctx context.Context, memberID int64) (entities.WorkspaceMember, error)
}

type WorkspaceRepository interface {
	CreateWorkspace(ctx context.Context, workspace entities.Workspace) (entities.Workspace, error)
	// LockWorkspace loads the workspace FOR UPDATE; membership changes on the
	// workspace serialize on this lock.
	LockWorkspace(ctx context.Context, workspaceID int64) (entities.Workspace, error)
	UpdateWorkspace(ctx context.Context, workspace entities.Workspace) error
	// DeleteWorkspace removes the workspace with its boards, memberships and
	// invitations.
	DeleteWorkspace(ctx context.Context, workspaceID int64) error
	ListWorkspacesForUser(ctx context.Context, userID int64) ([]entities.Workspace, error)
	AddWorkspaceMember(ctx context.Context, member entities.WorkspaceMember) (entities.WorkspaceMember, error)
	ListWorkspaceMembers(ctx context.Context, workspaceID int64) ([]entities.WorkspaceMember, error)
	ListWorkspaceMembershipsForUser(ctx context.Context, userID int64) ([]entities.WorkspaceMember, error)
	UpdateWorkspaceMemberRole(ctx context.Context, memberID int64, role roles.WorkspaceRole) error
	DeleteWorkspaceMember(ctx context.Context, memberID int64) error
	CountWorkspaceMembersWithRole(ctx context.Context, workspaceID int64, role roles.WorkspaceRole) (int, error)
}

type BoardRepository interface {
	CreateBoard(ctx context.Context, board entities.Board) (entities.Board, error)
	LockBoard(ctx context.Context, boardID int64) (entities.Board, error)
	UpdateBoard(ctx context.Context, board entities.Board) error
	// DeleteBoard removes the board with its memberships and invitations.
	DeleteBoard(ctx context.Context, boardID int64) error
	ListBoardsByWorkspace(ctx context.Context, workspaceID int64) ([]entities.Board, error)
	GetBoards(ctx context.Context, boardIDs []int64) ([]entities.Board, error)
	AddBoardMember(ctx context.Context, member entities.BoardMember) (entities.BoardMember, error)
	ListBoardMembers(ctx context.Context, boardID int64) ([]entities.BoardMember, error)
	ListBoardMembershipsForUser(ctx context.Context, userID int64) ([]entities.BoardMember, error)
	UpdateBoardMemberRole(ctx context.Context, memberID int64, role roles.BoardRole) error
	DeleteBoardMember(ctx context.Context, memberID int64) error
	CountBoardMembersWithRole(ctx context.Context, boardID int64, role roles.BoardRole) (int, error)
}

type InvitationRepository interface {
	// CreateInvitation fails with ErrInvitationPending when a PENDING row
	// already exists for the invitee and container.
	CreateInvitation(ctx context.Context, invitation entities.Invitation) (entities.Invitation, error)
	LockInvitation(ctx context.Context, invitationID int64) (entities.Invitation, error)
	FindPendingInvitation(
		ctx context.Context,
		scope entities.InvitationScope,
		containerID int64,
		inviteeID int64,
	) (entities.Invitation, bool, error)
	UpdateInvitationStatus(
		ctx context.Context,
		invitationID int64,
		status entities.InvitationStatus,
		updatedAt time.Time,
	) error
	ListInvitationsForInvitee(ctx context.Context, inviteeID int64, status entities.InvitationStatus) ([]entities.Invitation, error)
}

// UserReplica is the local copy of user-service identities.
type UserReplica interface {
	UpsertUser(ctx context.Context, user entities.User) error
	GetUsers(ctx context.Context, userIDs []int64) (map[int64]entities.User, error)
}

// TxRunner runs fn in one read-committed transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Clock allows deterministic testing of expiry rules.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts event identifier generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope reuses the shared envelope contract.
type EventEnvelope = eventsv1.Envelope

// OutboxWriter stores an envelope in the transaction bound to ctx.
type OutboxWriter interface {
	AppendOutbox(ctx context.Context, topic string, event EventEnvelope) error
}

// EventSubscriber registers a topic consumer callback.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
