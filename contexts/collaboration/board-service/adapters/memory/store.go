package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"kanvas/contexts/collaboration/board-service/domain/entities"
	domainerrors "kanvas/contexts/collaboration/board-service/domain/errors"
	"kanvas/contexts/collaboration/board-service/ports"
	"kanvas/contracts/roles"
	"kanvas/internal/shared/outbox"

	"github.com/google/uuid"
)

// Store is an in-memory adapter implementing every board-service port.
// Transactions are serialized and roll back by restoring a snapshot taken
// when the transaction began.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	now  func() time.Time

	state state
}

type state struct {
	nextID           int64
	workspaces       map[int64]entities.Workspace
	workspaceMembers map[int64]entities.WorkspaceMember
	boards           map[int64]entities.Board
	boardMembers     map[int64]entities.BoardMember
	invitations      map[int64]entities.Invitation
	users            map[int64]entities.User
	outbox           outbox.MemoryLog
}

func (s state) clone() state {
	return state{
		nextID:           s.nextID,
		workspaces:       maps.Clone(s.workspaces),
		workspaceMembers: maps.Clone(s.workspaceMembers),
		boards:           maps.Clone(s.boards),
		boardMembers:     maps.Clone(s.boardMembers),
		invitations:      maps.Clone(s.invitations),
		users:            maps.Clone(s.users),
		outbox:           s.outbox.Clone(),
	}
}

func NewStore() *Store {
	return &Store{
		now: time.Now,
		state: state{
			workspaces:       make(map[int64]entities.Workspace),
			workspaceMembers: make(map[int64]entities.WorkspaceMember),
			boards:           make(map[int64]entities.Board),
			boardMembers:     make(map[int64]entities.BoardMember),
			invitations:      make(map[int64]entities.Invitation),
			users:            make(map[int64]entities.User),
		},
	}
}

// SetClock overrides the store clock; tests use it to move past expiries.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now().UTC()
}

func (s *Store) NewID(context.Context) (string, error) {
	return uuid.NewString(), nil
}

type txKey struct{}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.state = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) id() int64 {
	s.state.nextID++
	return s.state.nextID
}

func (s *Store) GetWorkspace(_ context.Context, workspaceID int64) (entities.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	workspace, ok := s.state.workspaces[workspaceID]
	if !ok {
		return entities.Workspace{}, domainerrors.ErrWorkspaceNotFound
	}
	return workspace, nil
}

func (s *Store) LockWorkspace(ctx context.Context, workspaceID int64) (entities.Workspace, error) {
	return s.GetWorkspace(ctx, workspaceID)
}

func (s *Store) GetBoard(_ context.Context, boardID int64) (entities.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	board, ok := s.state.boards[boardID]
	if !ok {
		return entities.Board{}, domainerrors.ErrBoardNotFound
	}
	return board, nil
}

func (s *Store) LockBoard(ctx context.Context, boardID int64) (entities.Board, error) {
	return s.GetBoard(ctx, boardID)
}

func (s *Store) GetBoards(_ context.Context, boardIDs []int64) ([]entities.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Board, 0, len(boardIDs))
	for _, id := range boardIDs {
		if board, ok := s.state.boards[id]; ok {
			items = append(items, board)
		}
	}
	sortBoards(items)
	return items, nil
}

func (s *Store) FindBoardMember(_ context.Context, boardID int64, userID int64) (entities.BoardMember, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, member := range s.state.boardMembers {
		if member.BoardID == boardID && member.UserID == userID {
			return member, true, nil
		}
	}
	return entities.BoardMember{}, false, nil
}

func (s *Store) GetBoardMember(_ context.Context, memberID int64) (entities.BoardMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	member, ok := s.state.boardMembers[memberID]
	if !ok {
		return entities.BoardMember{}, domainerrors.ErrMemberNotFound
	}
	return member, nil
}

func (s *Store) FindWorkspaceMember(_ context.Context, workspaceID int64, userID int64) (entities.WorkspaceMember, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, member := range s.state.workspaceMembers {
		if member.WorkspaceID == workspaceID && member.UserID == userID {
			return member, true, nil
		}
	}
	return entities.WorkspaceMember{}, false, nil
}

func (s *Store) GetWorkspaceMember(_ context.Context, memberID int64) (entities.WorkspaceMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	member, ok := s.state.workspaceMembers[memberID]
	if !ok {
		return entities.WorkspaceMember{}, domainerrors.ErrMemberNotFound
	}
	return member, nil
}

func (s *Store) CreateWorkspace(_ context.Context, workspace entities.Workspace) (entities.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	workspace.ID = s.id()
	s.state.workspaces[workspace.ID] = workspace
	return workspace, nil
}

func (s *Store) UpdateWorkspace(_ context.Context, workspace entities.Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.workspaces[workspace.ID]; !ok {
		return domainerrors.ErrWorkspaceNotFound
	}
	s.state.workspaces[workspace.ID] = workspace
	return nil
}

func (s *Store) DeleteWorkspace(_ context.Context, workspaceID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.workspaces[workspaceID]; !ok {
		return domainerrors.ErrWorkspaceNotFound
	}
	for id, board := range s.state.boards {
		if board.WorkspaceID == workspaceID {
			s.deleteBoardLocked(id)
		}
	}
	for id, member := range s.state.workspaceMembers {
		if member.WorkspaceID == workspaceID {
			delete(s.state.workspaceMembers, id)
		}
	}
	s.deleteInvitationsLocked(entities.ScopeWorkspace, workspaceID)
	delete(s.state.workspaces, workspaceID)
	return nil
}

func (s *Store) ListWorkspacesForUser(_ context.Context, userID int64) ([]entities.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Workspace, 0)
	for _, member := range s.state.workspaceMembers {
		if member.UserID != userID {
			continue
		}
		if workspace, ok := s.state.workspaces[member.WorkspaceID]; ok {
			items = append(items, workspace)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *Store) AddWorkspaceMember(_ context.Context, member entities.WorkspaceMember) (entities.WorkspaceMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.state.workspaceMembers {
		if existing.WorkspaceID == member.WorkspaceID && existing.UserID == member.UserID {
			return entities.WorkspaceMember{}, domainerrors.ErrAlreadyMember
		}
	}
	member.ID = s.id()
	s.state.workspaceMembers[member.ID] = member
	return member, nil
}

func (s *Store) ListWorkspaceMembers(_ context.Context, workspaceID int64) ([]entities.WorkspaceMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.WorkspaceMember, 0)
	for _, member := range s.state.workspaceMembers {
		if member.WorkspaceID == workspaceID {
			items = append(items, member)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *Store) ListWorkspaceMembershipsForUser(_ context.Context, userID int64) ([]entities.WorkspaceMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.WorkspaceMember, 0)
	for _, member := range s.state.workspaceMembers {
		if member.UserID == userID {
			items = append(items, member)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *Store) UpdateWorkspaceMemberRole(_ context.Context, memberID int64, role roles.WorkspaceRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	member, ok := s.state.workspaceMembers[memberID]
	if !ok {
		return domainerrors.ErrMemberNotFound
	}
	member.Role = role
	s.state.workspaceMembers[memberID] = member
	return nil
}

func (s *Store) DeleteWorkspaceMember(_ context.Context, memberID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.workspaceMembers[memberID]; !ok {
		return domainerrors.ErrMemberNotFound
	}
	delete(s.state.workspaceMembers, memberID)
	return nil
}

func (s *Store) CountWorkspaceMembersWithRole(_ context.Context, workspaceID int64, role roles.WorkspaceRole) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, member := range s.state.workspaceMembers {
		if member.WorkspaceID == workspaceID && member.Role == role {
			count++
		}
	}
	return count, nil
}

func (s *Store) CreateBoard(_ context.Context, board entities.Board) (entities.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.boardNameTakenLocked(board) {
		return entities.Board{}, domainerrors.ErrBoardNameTaken
	}
	board.ID = s.id()
	s.state.boards[board.ID] = board
	return board, nil
}

func (s *Store) UpdateBoard(_ context.Context, board entities.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.boards[board.ID]; !ok {
		return domainerrors.ErrBoardNotFound
	}
	if s.boardNameTakenLocked(board) {
		return domainerrors.ErrBoardNameTaken
	}
	s.state.boards[board.ID] = board
	return nil
}

func (s *Store) boardNameTakenLocked(board entities.Board) bool {
	for _, existing := range s.state.boards {
		if existing.ID != board.ID &&
			existing.WorkspaceID == board.WorkspaceID &&
			existing.Name == board.Name {
			return true
		}
	}
	return false
}

func (s *Store) DeleteBoard(_ context.Context, boardID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.boards[boardID]; !ok {
		return domainerrors.ErrBoardNotFound
	}
	s.deleteBoardLocked(boardID)
	return nil
}

func (s *Store) deleteBoardLocked(boardID int64) {
	for id, member := range s.state.boardMembers {
		if member.BoardID == boardID {
			delete(s.state.boardMembers, id)
		}
	}
	s.deleteInvitationsLocked(entities.ScopeBoard, boardID)
	delete(s.state.boards, boardID)
}

func (s *Store) deleteInvitationsLocked(scope entities.InvitationScope, containerID int64) {
	for id, invitation := range s.state.invitations {
		if invitation.Scope == scope && invitation.ContainerID == containerID {
			delete(s.state.invitations, id)
		}
	}
}

func (s *Store) ListBoardsByWorkspace(_ context.Context, workspaceID int64) ([]entities.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Board, 0)
	for _, board := range s.state.boards {
		if board.WorkspaceID == workspaceID {
			items = append(items, board)
		}
	}
	sortBoards(items)
	return items, nil
}

func (s *Store) AddBoardMember(_ context.Context, member entities.BoardMember) (entities.BoardMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.state.boardMembers {
		if existing.BoardID == member.BoardID && existing.UserID == member.UserID {
			return entities.BoardMember{}, domainerrors.ErrAlreadyMember
		}
	}
	member.ID = s.id()
	s.state.boardMembers[member.ID] = member
	return member, nil
}

func (s *Store) ListBoardMembers(_ context.Context, boardID int64) ([]entities.BoardMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.BoardMember, 0)
	for _, member := range s.state.boardMembers {
		if member.BoardID == boardID {
			items = append(items, member)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *Store) ListBoardMembershipsForUser(_ context.Context, userID int64) ([]entities.BoardMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.BoardMember, 0)
	for _, member := range s.state.boardMembers {
		if member.UserID == userID {
			items = append(items, member)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *Store) UpdateBoardMemberRole(_ context.Context, memberID int64, role roles.BoardRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	member, ok := s.state.boardMembers[memberID]
	if !ok {
		return domainerrors.ErrMemberNotFound
	}
	member.Role = role
	s.state.boardMembers[memberID] = member
	return nil
}

func (s *Store) DeleteBoardMember(_ context.Context, memberID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.boardMembers[memberID]; !ok {
		return domainerrors.ErrMemberNotFound
	}
	delete(s.state.boardMembers, memberID)
	return nil
}

func (s *Store) CountBoardMembersWithRole(_ context.Context, boardID int64, role roles.BoardRole) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, member := range s.state.boardMembers {
		if member.BoardID == boardID && member.Role == role {
			count++
		}
	}
	return count, nil
}

func (s *Store) CreateInvitation(_ context.Context, invitation entities.Invitation) (entities.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.state.invitations {
		if existing.Status == entities.InvitationPending &&
			existing.Scope == invitation.Scope &&
			existing.ContainerID == invitation.ContainerID &&
			existing.InviteeID == invitation.InviteeID {
			return entities.Invitation{}, domainerrors.ErrInvitationPending
		}
	}
	invitation.ID = s.id()
	s.state.invitations[invitation.ID] = invitation
	return invitation, nil
}

func (s *Store) LockInvitation(_ context.Context, invitationID int64) (entities.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	invitation, ok := s.state.invitations[invitationID]
	if !ok {
		return entities.Invitation{}, domainerrors.ErrInvitationNotFound
	}
	return invitation, nil
}

func (s *Store) FindPendingInvitation(
	_ context.Context,
	scope entities.InvitationScope,
	containerID int64,
	inviteeID int64,
) (entities.Invitation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, invitation := range s.state.invitations {
		if invitation.Status == entities.InvitationPending &&
			invitation.Scope == scope &&
			invitation.ContainerID == containerID &&
			invitation.InviteeID == inviteeID {
			return invitation, true, nil
		}
	}
	return entities.Invitation{}, false, nil
}

func (s *Store) UpdateInvitationStatus(
	_ context.Context,
	invitationID int64,
	status entities.InvitationStatus,
	updatedAt time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	invitation, ok := s.state.invitations[invitationID]
	if !ok {
		return domainerrors.ErrInvitationNotFound
	}
	invitation.Status = status
	invitation.UpdatedAt = updatedAt
	s.state.invitations[invitationID] = invitation
	return nil
}

func (s *Store) ListInvitationsForInvitee(
	_ context.Context,
	inviteeID int64,
	status entities.InvitationStatus,
) ([]entities.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Invitation, 0)
	for _, invitation := range s.state.invitations {
		if invitation.InviteeID == inviteeID && (status == "" || invitation.Status == status) {
			items = append(items, invitation)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *Store) UpsertUser(_ context.Context, user entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.users[user.ID] = user
	return nil
}

func (s *Store) GetUsers(_ context.Context, userIDs []int64) (map[int64]entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make(map[int64]entities.User, len(userIDs))
	for _, id := range userIDs {
		if user, ok := s.state.users[id]; ok {
			items[id] = user
		}
	}
	return items, nil
}

func (s *Store) AppendOutbox(_ context.Context, topic string, event ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	message, err := outbox.NewMessage(event.EventID, topic, event, s.now())
	if err != nil {
		return err
	}
	s.state.outbox.Append(message)
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]outbox.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.outbox.Pending(limit), nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.outbox.MarkSent(outboxID, sentAt)
	return nil
}

// OutboxEvents returns every envelope appended so far, for assertions.
func (s *Store) OutboxEvents() []outbox.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.outbox.All()
}

func sortBoards(items []entities.Board) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}
