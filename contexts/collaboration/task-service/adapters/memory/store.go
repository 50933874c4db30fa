package memory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"kanvas/contexts/collaboration/task-service/domain/entities"
	domainerrors "kanvas/contexts/collaboration/task-service/domain/errors"
	"kanvas/contexts/collaboration/task-service/ports"
	"kanvas/internal/shared/outbox"

	"github.com/google/uuid"
)

// Store is the in-memory task-service adapter. Transactions run one at a
// time and roll back to the snapshot taken at their start.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	now  func() time.Time

	state state
}

type state struct {
	nextID    int64
	columns   map[int64]entities.Column
	tasks     map[int64]entities.Task
	assignees map[int64]entities.Assignee
	users     map[int64]entities.User
	outbox    outbox.MemoryLog
}

func (s state) clone() state {
	return state{
		nextID:    s.nextID,
		columns:   maps.Clone(s.columns),
		tasks:     maps.Clone(s.tasks),
		assignees: maps.Clone(s.assignees),
		users:     maps.Clone(s.users),
		outbox:    s.outbox.Clone(),
	}
}

func NewStore() *Store {
	return &Store{
		now: time.Now,
		state: state{
			columns:   make(map[int64]entities.Column),
			tasks:     make(map[int64]entities.Task),
			assignees: make(map[int64]entities.Assignee),
			users:     make(map[int64]entities.User),
		},
	}
}

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

func (s *Store) CreateColumn(_ context.Context, column entities.Column) (entities.Column, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	column.ID = s.id()
	s.state.columns[column.ID] = column
	return column, nil
}

func (s *Store) GetColumn(_ context.Context, columnID int64) (entities.Column, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	column, ok := s.state.columns[columnID]
	if !ok {
		return entities.Column{}, domainerrors.ErrColumnNotFound
	}
	return column, nil
}

func (s *Store) LockColumn(ctx context.Context, columnID int64) (entities.Column, error) {
	return s.GetColumn(ctx, columnID)
}

// LockColumnScope is a no-op: RunInTx already serializes every transaction.
func (s *Store) LockColumnScope(context.Context, int64) error {
	return nil
}

func (s *Store) LockBoardColumns(ctx context.Context, boardID int64) ([]entities.Column, error) {
	return s.ListBoardColumns(ctx, boardID)
}

func (s *Store) ListBoardColumns(_ context.Context, boardID int64) ([]entities.Column, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Column, 0)
	for _, column := range s.state.columns {
		if column.BoardID == boardID {
			items = append(items, column)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].OrderIndex == items[j].OrderIndex {
			return items[i].ID < items[j].ID
		}
		return items[i].OrderIndex < items[j].OrderIndex
	})
	return items, nil
}

func (s *Store) MaxColumnOrder(_ context.Context, boardID int64) (*float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var max *float64
	for _, column := range s.state.columns {
		if column.BoardID != boardID {
			continue
		}
		if max == nil || column.OrderIndex > *max {
			value := column.OrderIndex
			max = &value
		}
	}
	return max, nil
}

func (s *Store) RenameColumn(_ context.Context, columnID int64, name string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	column, ok := s.state.columns[columnID]
	if !ok {
		return domainerrors.ErrColumnNotFound
	}
	column.Name = name
	column.UpdatedAt = updatedAt
	s.state.columns[columnID] = column
	return nil
}

func (s *Store) UpdateColumnOrder(_ context.Context, columnID int64, orderIndex float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	column, ok := s.state.columns[columnID]
	if !ok {
		return domainerrors.ErrColumnNotFound
	}
	column.OrderIndex = orderIndex
	s.state.columns[columnID] = column
	return nil
}

func (s *Store) DeleteColumn(_ context.Context, columnID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.columns[columnID]; !ok {
		return domainerrors.ErrColumnNotFound
	}
	for id, task := range s.state.tasks {
		if task.ColumnID == columnID {
			s.deleteTaskLocked(id)
		}
	}
	delete(s.state.columns, columnID)
	return nil
}

func (s *Store) CreateTask(_ context.Context, task entities.Task) (entities.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.columns[task.ColumnID]; !ok {
		return entities.Task{}, domainerrors.ErrColumnNotFound
	}
	task.ID = s.id()
	s.state.tasks[task.ID] = task
	return task, nil
}

func (s *Store) GetTask(_ context.Context, taskID int64) (entities.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.state.tasks[taskID]
	if !ok {
		return entities.Task{}, domainerrors.ErrTaskNotFound
	}
	return task, nil
}

func (s *Store) LockTask(ctx context.Context, taskID int64) (entities.Task, error) {
	return s.GetTask(ctx, taskID)
}

func (s *Store) LockColumnTasks(_ context.Context, columnID int64) ([]entities.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Task, 0)
	for _, task := range s.state.tasks {
		if task.ColumnID == columnID {
			items = append(items, task)
		}
	}
	sortTasks(items)
	return items, nil
}

func (s *Store) ListBoardTasks(_ context.Context, boardID int64) ([]entities.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Task, 0)
	for _, task := range s.state.tasks {
		if task.BoardID == boardID {
			items = append(items, task)
		}
	}
	sortTasks(items)
	return items, nil
}

func (s *Store) MaxTaskOrder(_ context.Context, columnID int64) (*float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var max *float64
	for _, task := range s.state.tasks {
		if task.ColumnID != columnID {
			continue
		}
		if max == nil || task.OrderIndex > *max {
			value := task.OrderIndex
			max = &value
		}
	}
	return max, nil
}

func (s *Store) UpdateTask(_ context.Context, task entities.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.state.tasks[task.ID]
	if !ok {
		return domainerrors.ErrTaskNotFound
	}
	task.ColumnID = current.ColumnID
	task.OrderIndex = current.OrderIndex
	s.state.tasks[task.ID] = task
	return nil
}

func (s *Store) MoveTask(_ context.Context, taskID int64, columnID int64, orderIndex float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.state.tasks[taskID]
	if !ok {
		return domainerrors.ErrTaskNotFound
	}
	task.ColumnID = columnID
	task.OrderIndex = orderIndex
	s.state.tasks[taskID] = task
	return nil
}

func (s *Store) DeleteTask(_ context.Context, taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.tasks[taskID]; !ok {
		return domainerrors.ErrTaskNotFound
	}
	s.deleteTaskLocked(taskID)
	return nil
}

func (s *Store) deleteTaskLocked(taskID int64) int {
	removed := 1
	for id, assignee := range s.state.assignees {
		if assignee.TaskID == taskID {
			delete(s.state.assignees, id)
			removed++
		}
	}
	delete(s.state.tasks, taskID)
	return removed
}

func (s *Store) AddAssignee(_ context.Context, assignee entities.Assignee) (entities.Assignee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.state.assignees {
		if existing.TaskID == assignee.TaskID && existing.BoardMemberID == assignee.BoardMemberID {
			return entities.Assignee{}, domainerrors.ErrAlreadyAssigned
		}
	}
	assignee.ID = s.id()
	s.state.assignees[assignee.ID] = assignee
	return assignee, nil
}

func (s *Store) FindAssignee(_ context.Context, taskID int64, boardMemberID int64) (entities.Assignee, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, assignee := range s.state.assignees {
		if assignee.TaskID == taskID && assignee.BoardMemberID == boardMemberID {
			return assignee, true, nil
		}
	}
	return entities.Assignee{}, false, nil
}

func (s *Store) DeleteAssignee(_ context.Context, assigneeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.assignees[assigneeID]; !ok {
		return domainerrors.ErrAssigneeNotFound
	}
	delete(s.state.assignees, assigneeID)
	return nil
}

func (s *Store) ListAssignees(_ context.Context, taskIDs []int64) ([]entities.Assignee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Assignee, 0)
	for _, assignee := range s.state.assignees {
		if slices.Contains(taskIDs, assignee.TaskID) {
			items = append(items, assignee)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *Store) DeleteBoardContent(_ context.Context, boardIDs []int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, task := range s.state.tasks {
		if slices.Contains(boardIDs, task.BoardID) {
			removed += s.deleteTaskLocked(id)
		}
	}
	for id, column := range s.state.columns {
		if slices.Contains(boardIDs, column.BoardID) {
			delete(s.state.columns, id)
			removed++
		}
	}
	return removed, nil
}

func (s *Store) DeleteMemberAssignments(_ context.Context, boardID int64, boardMemberID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, assignee := range s.state.assignees {
		if assignee.BoardID == boardID && assignee.BoardMemberID == boardMemberID {
			delete(s.state.assignees, id)
			removed++
		}
	}
	return removed, nil
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

func (s *Store) OutboxEvents() []outbox.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.outbox.All()
}

func sortTasks(items []entities.Task) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].ColumnID != items[j].ColumnID {
			return items[i].ColumnID < items[j].ColumnID
		}
		if items[i].OrderIndex == items[j].OrderIndex {
			return items[i].ID < items[j].ID
		}
		return items[i].OrderIndex < items[j].OrderIndex
	})
}
