package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "kanvas/contexts/collaboration/board-service/application"
	"kanvas/contexts/collaboration/board-service/domain/entities"
	domainerrors "kanvas/contexts/collaboration/board-service/domain/errors"
	"kanvas/contexts/collaboration/board-service/ports"
	eventsv1 "kanvas/contracts/events/v1"
	"kanvas/contracts/roles"
)

type CreateInvitationCommand struct {
	ActorID     int64
	Scope       entities.InvitationScope
	ContainerID int64
	InviteeID   int64
	Role        string
}

type CreateInvitationUseCase struct {
	Access      application.AccessEvaluator
	Reader      ports.MembershipReader
	Workspaces  ports.WorkspaceRepository
	Boards      ports.BoardRepository
	Invitations ports.InvitationRepository
	Users       ports.UserReplica
	Tx          ports.TxRunner
	Emitter     application.Emitter
	Clock       ports.Clock
	TTL         time.Duration
	Logger      *slog.Logger
}

// Execute invites InviteeID into a workspace (ADMIN or above required) or a
// board (board ADMIN required).
func (u CreateInvitationUseCase) Execute(ctx context.Context, cmd CreateInvitationCommand) (entities.Invitation, error) {
	logger := application.ResolveLogger(u.Logger)
	if cmd.ActorID <= 0 {
		return entities.Invitation{}, domainerrors.ErrUnauthenticated
	}
	if cmd.InviteeID <= 0 || cmd.InviteeID == cmd.ActorID {
		return entities.Invitation{}, domainerrors.ErrInvalidRequest
	}
	now := currentTime(u.Clock)
	invitation := entities.Invitation{
		Scope:       cmd.Scope,
		ContainerID: cmd.ContainerID,
		InviterID:   cmd.ActorID,
		InviteeID:   cmd.InviteeID,
		Status:      entities.InvitationPending,
		ExpiresAt:   now.Add(u.ttl()),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	switch cmd.Scope {
	case entities.ScopeWorkspace:
		role, _ := roles.ParseWorkspaceRole(cmd.Role)
		invitation.Role = string(role)
	case entities.ScopeBoard:
		role, _ := roles.ParseBoardRole(cmd.Role)
		invitation.Role = string(role)
	default:
		return entities.Invitation{}, domainerrors.ErrInvalidRequest
	}
	if !invitation.ValidRole() {
		return entities.Invitation{}, domainerrors.ErrInvalidRole
	}

	containerName, err := u.authorize(ctx, cmd)
	if err != nil {
		return entities.Invitation{}, err
	}
	users, err := u.Users.GetUsers(ctx, []int64{cmd.ActorID, cmd.InviteeID})
	if err != nil {
		return entities.Invitation{}, err
	}
	if _, ok := users[cmd.InviteeID]; !ok {
		return entities.Invitation{}, domainerrors.ErrUserNotFound
	}
	inviter := users[cmd.ActorID]

	err = u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := u.lockContainer(ctx, cmd); err != nil {
			return err
		}
		member, err := u.isMember(ctx, cmd)
		if err != nil {
			return err
		}
		if member {
			return domainerrors.ErrAlreadyMember
		}

		pending, found, err := u.Invitations.FindPendingInvitation(ctx, cmd.Scope, cmd.ContainerID, cmd.InviteeID)
		if err != nil {
			return err
		}
		if found {
			if !pending.ExpiredAt(now) {
				return domainerrors.ErrInvitationPending
			}
			if err := expireInvitation(ctx, u.Invitations, u.Emitter, pending, now); err != nil {
				return err
			}
		}

		created, err := u.Invitations.CreateInvitation(ctx, invitation)
		if err != nil {
			return err
		}
		invitation = created
		return u.Emitter.Emit(ctx, cmd.ContainerID, eventsv1.InvitationCreated{
			InvitationID:    created.ID,
			Scope:           string(created.Scope),
			ContainerID:     created.ContainerID,
			ContainerName:   containerName,
			InviterID:       created.InviterID,
			InviterUsername: inviter.Username,
			InviteeID:       created.InviteeID,
			Role:            created.Role,
			ExpiresAt:       created.ExpiresAt,
		})
	})
	if err != nil {
		logger.Warn("create invitation failed",
			"event", "invitation_create_failed",
			"module", moduleName,
			"layer", "application",
			"scope", string(cmd.Scope),
			"container_id", cmd.ContainerID,
			"invitee_id", cmd.InviteeID,
			"error", err.Error(),
		)
		return entities.Invitation{}, err
	}

	logger.Info("invitation created",
		"event", "invitation_created",
		"module", moduleName,
		"layer", "application",
		"invitation_id", invitation.ID,
		"scope", string(cmd.Scope),
		"container_id", cmd.ContainerID,
	)
	return invitation, nil
}

func (u CreateInvitationUseCase) authorize(ctx context.Context, cmd CreateInvitationCommand) (string, error) {
	if cmd.Scope == entities.ScopeBoard {
		access, err := u.Access.BoardAccess(ctx, cmd.ActorID, cmd.ContainerID)
		if err != nil {
			return "", err
		}
		if !access.BoardRole.AtLeast(roles.BoardAdmin) {
			return "", domainerrors.ErrForbidden
		}
		return access.Board.Name, nil
	}

	allowed, err := u.Access.HasWorkspaceRole(ctx, cmd.ActorID, cmd.ContainerID, roles.WorkspaceAdmin)
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", domainerrors.ErrForbidden
	}
	workspace, err := u.Reader.GetWorkspace(ctx, cmd.ContainerID)
	if err != nil {
		return "", err
	}
	return workspace.Name, nil
}

func (u CreateInvitationUseCase) lockContainer(ctx context.Context, cmd CreateInvitationCommand) error {
	if cmd.Scope == entities.ScopeBoard {
		_, err := u.Boards.LockBoard(ctx, cmd.ContainerID)
		return err
	}
	_, err := u.Workspaces.LockWorkspace(ctx, cmd.ContainerID)
	return err
}

func (u CreateInvitationUseCase) isMember(ctx context.Context, cmd CreateInvitationCommand) (bool, error) {
	if cmd.Scope == entities.ScopeBoard {
		_, found, err := u.Reader.FindBoardMember(ctx, cmd.ContainerID, cmd.InviteeID)
		return found, err
	}
	_, found, err := u.Reader.FindWorkspaceMember(ctx, cmd.ContainerID, cmd.InviteeID)
	return found, err
}

func (u CreateInvitationUseCase) ttl() time.Duration {
	if u.TTL <= 0 {
		return 14 * 24 * time.Hour
	}
	return u.TTL
}

type RespondInvitationCommand struct {
	ActorID      int64
	InvitationID int64
	Accept       bool
}

type RespondInvitationUseCase struct {
	Workspaces  ports.WorkspaceRepository
	Boards      ports.BoardRepository
	Invitations ports.InvitationRepository
	Users       ports.UserReplica
	Tx          ports.TxRunner
	Emitter     application.Emitter
	Clock       ports.Clock
	Logger      *slog.Logger
}

// Execute accepts or declines an invitation on behalf of its invitee. An
// invitation found past its expiry is persisted as EXPIRED before
// ErrInvitationExpired is returned.
func (u RespondInvitationUseCase) Execute(ctx context.Context, cmd RespondInvitationCommand) (entities.Invitation, error) {
	logger := application.ResolveLogger(u.Logger)
	if cmd.ActorID <= 0 {
		return entities.Invitation{}, domainerrors.ErrUnauthenticated
	}
	now := currentTime(u.Clock)
	invitee, err := replicaUser(ctx, u.Users, cmd.ActorID)
	if err != nil {
		return entities.Invitation{}, err
	}

	var (
		result  entities.Invitation
		expired bool
	)
	err = u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		invitation, err := u.Invitations.LockInvitation(ctx, cmd.InvitationID)
		if err != nil {
			return err
		}
		if invitation.InviteeID != cmd.ActorID {
			return domainerrors.ErrForbidden
		}
		if invitation.Status != entities.InvitationPending {
			return domainerrors.ErrInvitationNotPending
		}
		if invitation.ExpiredAt(now) {
			expired = true
			invitation.Status = entities.InvitationExpired
			invitation.UpdatedAt = now
			result = invitation
			return expireInvitation(ctx, u.Invitations, u.Emitter, invitation, now)
		}

		status := entities.InvitationDeclined
		if cmd.Accept {
			status = entities.InvitationAccepted
			if err := u.join(ctx, invitation, invitee, now); err != nil {
				return err
			}
		}
		if err := u.Invitations.UpdateInvitationStatus(ctx, invitation.ID, status, now); err != nil {
			return err
		}
		invitation.Status = status
		invitation.UpdatedAt = now
		result = invitation
		return u.Emitter.Emit(ctx, invitation.ContainerID, invitationUpdated(invitation))
	})
	if err == nil && expired {
		err = domainerrors.ErrInvitationExpired
	}
	if err != nil {
		logger.Warn("respond to invitation failed",
			"event", "invitation_response_failed",
			"module", moduleName,
			"layer", "application",
			"invitation_id", cmd.InvitationID,
			"accept", cmd.Accept,
			"error", err.Error(),
		)
		if errors.Is(err, domainerrors.ErrInvitationExpired) {
			return result, err
		}
		return entities.Invitation{}, err
	}

	logger.Info("invitation answered",
		"event", "invitation_answered",
		"module", moduleName,
		"layer", "application",
		"invitation_id", result.ID,
		"status", string(result.Status),
	)
	return result, nil
}

func (u RespondInvitationUseCase) join(
	ctx context.Context,
	invitation entities.Invitation,
	invitee entities.User,
	now time.Time,
) error {
	if invitation.Scope == entities.ScopeWorkspace {
		if _, err := u.Workspaces.LockWorkspace(ctx, invitation.ContainerID); err != nil {
			return err
		}
		_, err := u.Workspaces.AddWorkspaceMember(ctx, entities.WorkspaceMember{
			WorkspaceID: invitation.ContainerID,
			UserID:      invitation.InviteeID,
			Role:        roles.WorkspaceRole(invitation.Role),
			JoinedAt:    now,
		})
		return err
	}

	if _, err := u.Boards.LockBoard(ctx, invitation.ContainerID); err != nil {
		return err
	}
	member, err := u.Boards.AddBoardMember(ctx, entities.BoardMember{
		BoardID:  invitation.ContainerID,
		UserID:   invitation.InviteeID,
		Role:     roles.BoardRole(invitation.Role),
		JoinedAt: now,
	})
	if err != nil {
		return err
	}
	return u.Emitter.Emit(ctx, invitation.ContainerID, memberJoined(member, invitee))
}

func expireInvitation(
	ctx context.Context,
	invitations ports.InvitationRepository,
	emitter application.Emitter,
	invitation entities.Invitation,
	now time.Time,
) error {
	if err := invitations.UpdateInvitationStatus(ctx, invitation.ID, entities.InvitationExpired, now); err != nil {
		return err
	}
	invitation.Status = entities.InvitationExpired
	return emitter.Emit(ctx, invitation.ContainerID, invitationUpdated(invitation))
}

func invitationUpdated(invitation entities.Invitation) eventsv1.InvitationUpdated {
	return eventsv1.InvitationUpdated{
		InvitationID: invitation.ID,
		Scope:        string(invitation.Scope),
		ContainerID:  invitation.ContainerID,
		InviteeID:    invitation.InviteeID,
		Status:       string(invitation.Status),
	}
}
