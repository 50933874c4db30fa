package boardservice

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"kanvas/contexts/collaboration/board-service/application/commands"
	"kanvas/contexts/collaboration/board-service/domain/entities"
	domainerrors "kanvas/contexts/collaboration/board-service/domain/errors"
	"kanvas/contexts/collaboration/board-service/ports"
	eventsv1 "kanvas/contracts/events/v1"
	"kanvas/contracts/faults"
	"kanvas/contracts/roles"
)

const (
	ownerID  int64 = 1
	adminID  int64 = 2
	viewerID int64 = 3
	guestID  int64 = 4
)

type fixture struct {
	module    Module
	workspace entities.Workspace
	board     entities.Board
	viewer    entities.BoardMember
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	module := NewInMemoryModule(nil, nil)
	store := module.Store
	base := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return base })

	for _, user := range []entities.User{
		{ID: ownerID, Username: "owner"},
		{ID: adminID, Username: "admin"},
		{ID: viewerID, Username: "viewer"},
		{ID: guestID, Username: "guest"},
	} {
		if err := store.UpsertUser(ctx, user); err != nil {
			t.Fatalf("seed user %d: %v", user.ID, err)
		}
	}

	workspace, err := module.Handler.CreateWorkspace.Execute(ctx, commands.CreateWorkspaceCommand{
		ActorID: ownerID,
		Name:    "Platform",
	})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	board, err := module.Handler.CreateBoard.Execute(ctx, commands.CreateBoardCommand{
		ActorID:     ownerID,
		WorkspaceID: workspace.ID,
		Name:        "Roadmap",
	})
	if err != nil {
		t.Fatalf("create board: %v", err)
	}

	if _, err := store.AddWorkspaceMember(ctx, entities.WorkspaceMember{
		WorkspaceID: workspace.ID, UserID: adminID, Role: roles.WorkspaceAdmin, JoinedAt: base,
	}); err != nil {
		t.Fatalf("add workspace admin: %v", err)
	}
	if _, err := store.AddWorkspaceMember(ctx, entities.WorkspaceMember{
		WorkspaceID: workspace.ID, UserID: viewerID, Role: roles.WorkspaceMember, JoinedAt: base,
	}); err != nil {
		t.Fatalf("add workspace member: %v", err)
	}
	viewer, err := store.AddBoardMember(ctx, entities.BoardMember{
		BoardID: board.ID, UserID: viewerID, Role: roles.BoardViewer, JoinedAt: base,
	})
	if err != nil {
		t.Fatalf("add board viewer: %v", err)
	}
	return fixture{module: module, workspace: workspace, board: board, viewer: viewer}
}

func (f fixture) outboxEnvelopes(t *testing.T) []eventsv1.Envelope {
	t.Helper()
	var out []eventsv1.Envelope
	for _, message := range f.module.Store.OutboxEvents() {
		var env eventsv1.Envelope
		if err := json.Unmarshal(message.Payload, &env); err != nil {
			t.Fatalf("decode outbox row %s: %v", message.ID, err)
		}
		out = append(out, env)
	}
	return out
}

func TestWorkspaceAdminWithoutBoardRoleRemovesViewer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.module.Handler.RemoveBoardMember.Execute(ctx, commands.RemoveBoardMemberCommand{
		ActorID:  adminID,
		BoardID:  f.board.ID,
		MemberID: f.viewer.ID,
	})
	if err != nil {
		t.Fatalf("expected workspace admin to remove viewer, got %v", err)
	}

	if _, found, _ := f.module.Store.FindBoardMember(ctx, f.board.ID, viewerID); found {
		t.Fatalf("expected viewer membership to be gone")
	}

	var removed *eventsv1.BoardMemberRemoved
	for _, env := range f.outboxEnvelopes(t) {
		if env.EventType != eventsv1.TypeBoardMemberRemoved {
			continue
		}
		event, err := eventsv1.DecodeBoardEvent(env)
		if err != nil {
			t.Fatalf("decode removal: %v", err)
		}
		removed = event.(*eventsv1.BoardMemberRemoved)
		if env.EventID == "" || env.Key == "" {
			t.Fatalf("expected event id and partition key, got %+v", env)
		}
	}
	if removed == nil {
		t.Fatalf("expected BOARD_MEMBER_REMOVED in outbox")
	}
	if removed.UserID != viewerID || removed.RemovedBy != adminID || removed.BoardName != "Roadmap" {
		t.Fatalf("unexpected removal payload: %+v", removed)
	}
}

func TestViewerCannotRemoveBoardAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin, found, err := f.module.Store.FindBoardMember(ctx, f.board.ID, ownerID)
	if err != nil || !found {
		t.Fatalf("expected creator to be board admin, found=%v err=%v", found, err)
	}

	err = f.module.Handler.RemoveBoardMember.Execute(ctx, commands.RemoveBoardMemberCommand{
		ActorID:  viewerID,
		BoardID:  f.board.ID,
		MemberID: admin.ID,
	})
	if !errors.Is(err, faults.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestLastBoardAdminIsKept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin, _, _ := f.module.Store.FindBoardMember(ctx, f.board.ID, ownerID)

	err := f.module.Handler.LeaveBoard.Execute(ctx, commands.LeaveBoardCommand{ActorID: ownerID, BoardID: f.board.ID})
	if !errors.Is(err, domainerrors.ErrLastBoardAdmin) {
		t.Fatalf("expected last admin guard on leave, got %v", err)
	}

	_, err = f.module.Handler.ChangeBoardRole.Execute(ctx, commands.ChangeBoardMemberRoleCommand{
		ActorID:  adminID,
		BoardID:  f.board.ID,
		MemberID: admin.ID,
		Role:     "VIEWER",
	})
	if !errors.Is(err, domainerrors.ErrLastBoardAdmin) {
		t.Fatalf("expected last admin guard on demotion, got %v", err)
	}
	if !errors.Is(err, faults.ErrConflict) {
		t.Fatalf("expected conflict kind, got %v", faults.Kind(err))
	}

	current, _, _ := f.module.Store.FindBoardMember(ctx, f.board.ID, ownerID)
	if current.Role != roles.BoardAdmin {
		t.Fatalf("expected role to stay ADMIN, got %s", current.Role)
	}
}

func TestLastWorkspaceOwnerIsKept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _, _ := f.module.Store.FindWorkspaceMember(ctx, f.workspace.ID, ownerID)

	err := f.module.Handler.RemoveWorkspaceMember.Execute(ctx, commands.RemoveWorkspaceMemberCommand{
		ActorID:     ownerID,
		WorkspaceID: f.workspace.ID,
		MemberID:    owner.ID,
	})
	if !errors.Is(err, domainerrors.ErrLastWorkspaceOwner) {
		t.Fatalf("expected last owner guard, got %v", err)
	}
}

func TestInvitationLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	handler := f.module.Handler

	invite := commands.CreateInvitationCommand{
		ActorID:     ownerID,
		Scope:       entities.ScopeBoard,
		ContainerID: f.board.ID,
		InviteeID:   guestID,
		Role:        "editor",
	}
	invitation, err := handler.CreateInvitation.Execute(ctx, invite)
	if err != nil {
		t.Fatalf("create invitation: %v", err)
	}
	if invitation.Role != string(roles.BoardEditor) || invitation.Status != entities.InvitationPending {
		t.Fatalf("unexpected invitation: %+v", invitation)
	}

	if _, err := handler.CreateInvitation.Execute(ctx, invite); !errors.Is(err, domainerrors.ErrInvitationPending) {
		t.Fatalf("expected duplicate pending conflict, got %v", err)
	}

	accepted, err := handler.RespondInvitation.Execute(ctx, commands.RespondInvitationCommand{
		ActorID:      guestID,
		InvitationID: invitation.ID,
		Accept:       true,
	})
	if err != nil {
		t.Fatalf("accept invitation: %v", err)
	}
	if accepted.Status != entities.InvitationAccepted {
		t.Fatalf("expected ACCEPTED, got %s", accepted.Status)
	}

	role, err := handler.LookupBoardRole.Execute(ctx, guestID, f.board.ID)
	if err != nil {
		t.Fatalf("lookup role: %v", err)
	}
	if role != roles.BoardEditor {
		t.Fatalf("expected EDITOR, got %s", role)
	}

	_, err = handler.RespondInvitation.Execute(ctx, commands.RespondInvitationCommand{
		ActorID:      guestID,
		InvitationID: invitation.ID,
		Accept:       true,
	})
	if !errors.Is(err, domainerrors.ErrInvitationNotPending) {
		t.Fatalf("expected not pending on second answer, got %v", err)
	}

	if _, err := handler.CreateInvitation.Execute(ctx, invite); !errors.Is(err, domainerrors.ErrAlreadyMember) {
		t.Fatalf("expected already member, got %v", err)
	}
}

func TestExpiredInvitationIsPersistedAsExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	handler := f.module.Handler

	invitation, err := handler.CreateInvitation.Execute(ctx, commands.CreateInvitationCommand{
		ActorID:     adminID,
		Scope:       entities.ScopeWorkspace,
		ContainerID: f.workspace.ID,
		InviteeID:   guestID,
		Role:        "MEMBER",
	})
	if err != nil {
		t.Fatalf("create invitation: %v", err)
	}

	later := invitation.ExpiresAt.Add(time.Minute)
	f.module.Store.SetClock(func() time.Time { return later })

	listed, err := handler.ListInvitations.Execute(ctx, guestID)
	if err != nil {
		t.Fatalf("list invitations: %v", err)
	}
	if len(listed) != 1 || listed[0].Status != entities.InvitationExpired {
		t.Fatalf("expected one invitation reported as EXPIRED, got %+v", listed)
	}

	result, err := handler.RespondInvitation.Execute(ctx, commands.RespondInvitationCommand{
		ActorID:      guestID,
		InvitationID: invitation.ID,
		Accept:       true,
	})
	if !errors.Is(err, domainerrors.ErrInvitationExpired) {
		t.Fatalf("expected expired, got %v", err)
	}
	if !errors.Is(err, faults.ErrExpired) {
		t.Fatalf("expected expired kind, got %v", faults.Kind(err))
	}
	if result.Status != entities.InvitationExpired {
		t.Fatalf("expected EXPIRED result, got %s", result.Status)
	}

	stored, err := f.module.Store.ListInvitationsForInvitee(ctx, guestID, entities.InvitationExpired)
	if err != nil {
		t.Fatalf("list expired: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected expiry to be persisted, got %+v", stored)
	}
	if _, found, _ := f.module.Store.FindWorkspaceMember(ctx, f.workspace.ID, guestID); found {
		t.Fatalf("expired invitation must not grant membership")
	}

	_, err = handler.RespondInvitation.Execute(ctx, commands.RespondInvitationCommand{
		ActorID:      guestID,
		InvitationID: invitation.ID,
		Accept:       true,
	})
	if !errors.Is(err, domainerrors.ErrInvitationNotPending) {
		t.Fatalf("expected not pending after expiry, got %v", err)
	}
}

func TestWorkspaceInvitationCannotGrantOwner(t *testing.T) {
	f := newFixture(t)
	_, err := f.module.Handler.CreateInvitation.Execute(context.Background(), commands.CreateInvitationCommand{
		ActorID:     ownerID,
		Scope:       entities.ScopeWorkspace,
		ContainerID: f.workspace.ID,
		InviteeID:   guestID,
		Role:        "OWNER",
	})
	if !errors.Is(err, domainerrors.ErrInvalidRole) {
		t.Fatalf("expected invalid role, got %v", err)
	}
}

func TestLookupBoardRoleForOutsider(t *testing.T) {
	f := newFixture(t)
	_, err := f.module.Handler.LookupBoardRole.Execute(context.Background(), guestID, f.board.ID)
	if !errors.Is(err, faults.ErrForbidden) {
		t.Fatalf("expected forbidden for outsider, got %v", err)
	}
	_, err = f.module.Handler.LookupBoardRole.Execute(context.Background(), guestID, 999)
	if !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("expected not found for missing board, got %v", err)
	}
}

func TestDeleteWorkspaceCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	err := f.module.Handler.DeleteWorkspace.Execute(ctx, commands.DeleteWorkspaceCommand{
		ActorID:     ownerID,
		WorkspaceID: f.workspace.ID,
	})
	if err != nil {
		t.Fatalf("delete workspace: %v", err)
	}
	if _, err := f.module.Store.GetBoard(ctx, f.board.ID); !errors.Is(err, domainerrors.ErrBoardNotFound) {
		t.Fatalf("expected board to be deleted with workspace, got %v", err)
	}

	var deleted *eventsv1.WorkspaceDeleted
	for _, env := range f.outboxEnvelopes(t) {
		if env.EventType == eventsv1.TypeWorkspaceDeleted {
			event, err := eventsv1.DecodeWorkspaceEvent(env)
			if err != nil {
				t.Fatalf("decode workspace event: %v", err)
			}
			deleted = event.(*eventsv1.WorkspaceDeleted)
		}
	}
	if deleted == nil || len(deleted.BoardIDs) != 1 || deleted.BoardIDs[0] != f.board.ID {
		t.Fatalf("expected WORKSPACE_DELETED listing the board, got %+v", deleted)
	}
}

// replicaHook runs before once, the first time the replica is read.
type replicaHook struct {
	ports.UserReplica
	before func()
}

func (r *replicaHook) GetUsers(ctx context.Context, userIDs []int64) (map[int64]entities.User, error) {
	if r.before != nil {
		before := r.before
		r.before = nil
		before()
	}
	return r.UserReplica.GetUsers(ctx, userIDs)
}

func TestCreateBoardRacingWorkspaceDeleteLeavesNoOrphan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	createBoard := f.module.Handler.CreateBoard
	createBoard.Users = &replicaHook{
		UserReplica: f.module.Store,
		before: func() {
			err := f.module.Handler.DeleteWorkspace.Execute(ctx, commands.DeleteWorkspaceCommand{
				ActorID:     ownerID,
				WorkspaceID: f.workspace.ID,
			})
			if err != nil {
				t.Fatalf("delete workspace: %v", err)
			}
		},
	}

	board, err := createBoard.Execute(ctx, commands.CreateBoardCommand{
		ActorID:     ownerID,
		WorkspaceID: f.workspace.ID,
		Name:        "Late",
	})
	if !errors.Is(err, domainerrors.ErrWorkspaceNotFound) {
		t.Fatalf("expected workspace not found, got board=%+v err=%v", board, err)
	}
	boards, err := f.module.Store.ListBoardsByWorkspace(ctx, f.workspace.ID)
	if err != nil {
		t.Fatalf("list boards: %v", err)
	}
	if len(boards) != 0 {
		t.Fatalf("expected no boards left in deleted workspace, got %+v", boards)
	}
}

func TestCreateBoardRequiresMembershipUnderLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	member, found, err := f.module.Store.FindWorkspaceMember(ctx, f.workspace.ID, viewerID)
	if err != nil || !found {
		t.Fatalf("expected viewer workspace membership, found=%v err=%v", found, err)
	}
	createBoard := f.module.Handler.CreateBoard
	createBoard.Users = &replicaHook{
		UserReplica: f.module.Store,
		before: func() {
			if err := f.module.Store.DeleteWorkspaceMember(ctx, member.ID); err != nil {
				t.Fatalf("remove member: %v", err)
			}
		},
	}

	_, err = createBoard.Execute(ctx, commands.CreateBoardCommand{
		ActorID:     viewerID,
		WorkspaceID: f.workspace.ID,
		Name:        "Side project",
	})
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden after membership was removed, got %v", err)
	}
}
