package taskservice

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"slices"
	"sync"
	"testing"
	"time"

	"kanvas/contexts/collaboration/task-service/application"
	"kanvas/contexts/collaboration/task-service/application/commands"
	"kanvas/contexts/collaboration/task-service/domain/entities"
	domainerrors "kanvas/contexts/collaboration/task-service/domain/errors"
	"kanvas/contexts/collaboration/task-service/ports"
	httptransport "kanvas/contexts/collaboration/task-service/transport/http"
	eventsv1 "kanvas/contracts/events/v1"
	"kanvas/contracts/faults"
)

const boardID int64 = 7

var (
	editor = application.Actor{UserID: 1, BoardID: boardID, Role: "EDITOR"}
	viewer = application.Actor{UserID: 2, BoardID: boardID, Role: "VIEWER"}
)

type fixture struct {
	module Module
	todo   entities.Column
	done   entities.Column
	tasks  []entities.Task
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	module := NewInMemoryModule(nil, nil)
	base := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	module.Store.SetClock(func() time.Time { return base })

	todo, err := module.Handler.CreateColumn.Execute(ctx, commands.CreateColumnCommand{Actor: editor, Name: "Todo"})
	if err != nil {
		t.Fatalf("create column: %v", err)
	}
	done, err := module.Handler.CreateColumn.Execute(ctx, commands.CreateColumnCommand{Actor: editor, Name: "Done"})
	if err != nil {
		t.Fatalf("create column: %v", err)
	}
	if todo.OrderIndex != 1024 || done.OrderIndex != 2048 {
		t.Fatalf("unexpected column indexes %v and %v", todo.OrderIndex, done.OrderIndex)
	}

	var tasks []entities.Task
	for _, title := range []string{"first", "second", "third"} {
		task, err := module.Handler.CreateTask.Execute(ctx, commands.CreateTaskCommand{
			Actor:    editor,
			ColumnID: todo.ID,
			Title:    title,
		})
		if err != nil {
			t.Fatalf("create task %q: %v", title, err)
		}
		tasks = append(tasks, task)
	}
	return fixture{module: module, todo: todo, done: done, tasks: tasks}
}

func (f fixture) envelopes(t *testing.T) []eventsv1.Envelope {
	t.Helper()
	var items []eventsv1.Envelope
	for _, message := range f.module.Store.OutboxEvents() {
		var env eventsv1.Envelope
		if err := json.Unmarshal(message.Payload, &env); err != nil {
			t.Fatalf("decode outbox payload: %v", err)
		}
		items = append(items, env)
	}
	return items
}

func int64Ptr(v int64) *int64 { return &v }

func TestMoveTaskBetweenNeighbors(t *testing.T) {
	f := newFixture(t)
	moved, err := f.module.Handler.MoveTask.Execute(context.Background(), commands.MoveTaskCommand{
		Actor:          editor,
		TaskID:         f.tasks[2].ID,
		TargetColumnID: f.todo.ID,
		PrecedingID:    int64Ptr(f.tasks[0].ID),
		FollowingID:    int64Ptr(f.tasks[1].ID),
	})
	if err != nil {
		t.Fatalf("move task: %v", err)
	}
	if moved.OrderIndex != 1536 {
		t.Fatalf("expected midpoint 1536, got %v", moved.OrderIndex)
	}

	items := f.envelopes(t)
	last := items[len(items)-1]
	if last.EventType != eventsv1.TypeTaskMoved {
		t.Fatalf("expected %s last, got %s", eventsv1.TypeTaskMoved, last.EventType)
	}
	if last.Key != "7" {
		t.Fatalf("expected board partition key, got %q", last.Key)
	}
	for _, env := range items {
		if env.EventType == eventsv1.TypePositionsRebalanced {
			t.Fatalf("did not expect a rebalance")
		}
	}
}

func TestMoveTaskRebalancesExhaustedGap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := f.module.Store
	if err := store.MoveTask(ctx, f.tasks[0].ID, f.todo.ID, 1); err != nil {
		t.Fatalf("seed index: %v", err)
	}
	if err := store.MoveTask(ctx, f.tasks[1].ID, f.todo.ID, math.Nextafter(1, 2)); err != nil {
		t.Fatalf("seed index: %v", err)
	}

	moved, err := f.module.Handler.MoveTask.Execute(ctx, commands.MoveTaskCommand{
		Actor:          editor,
		TaskID:         f.tasks[2].ID,
		TargetColumnID: f.todo.ID,
		PrecedingID:    int64Ptr(f.tasks[0].ID),
		FollowingID:    int64Ptr(f.tasks[1].ID),
	})
	if err != nil {
		t.Fatalf("move task: %v", err)
	}
	if moved.OrderIndex != 1536 {
		t.Fatalf("expected 1536 after renumbering, got %v", moved.OrderIndex)
	}

	view, err := f.module.Handler.ListBoard.Execute(ctx, editor)
	if err != nil {
		t.Fatalf("list board: %v", err)
	}
	got := view[0].Tasks
	want := []int64{f.tasks[0].ID, f.tasks[2].ID, f.tasks[1].ID}
	for i, id := range want {
		if got[i].Task.ID != id {
			t.Fatalf("position %d: expected task %d, got %d", i, id, got[i].Task.ID)
		}
	}

	var rebalance *eventsv1.PositionsRebalanced
	for _, env := range f.envelopes(t) {
		if env.EventType != eventsv1.TypePositionsRebalanced {
			continue
		}
		event, err := eventsv1.DecodeTaskEvent(env)
		if err != nil {
			t.Fatalf("decode rebalance: %v", err)
		}
		rebalance = event.(*eventsv1.PositionsRebalanced)
	}
	if rebalance == nil {
		t.Fatalf("expected %s in the outbox", eventsv1.TypePositionsRebalanced)
	}
	if rebalance.Scope != "TASKS" || rebalance.ColumnID != f.todo.ID || len(rebalance.Positions) != 3 {
		t.Fatalf("unexpected rebalance payload: %+v", rebalance)
	}
}

func TestMoveTaskAcrossColumnsAppends(t *testing.T) {
	f := newFixture(t)
	moved, err := f.module.Handler.MoveTask.Execute(context.Background(), commands.MoveTaskCommand{
		Actor:          editor,
		TaskID:         f.tasks[0].ID,
		TargetColumnID: f.done.ID,
	})
	if err != nil {
		t.Fatalf("move task: %v", err)
	}
	if moved.ColumnID != f.done.ID || moved.OrderIndex != 1024 {
		t.Fatalf("unexpected placement: column %d index %v", moved.ColumnID, moved.OrderIndex)
	}

	items := f.envelopes(t)
	event, err := eventsv1.DecodeTaskEvent(items[len(items)-1])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	taskMoved, ok := event.(*eventsv1.TaskMoved)
	if !ok {
		t.Fatalf("expected *TaskMoved, got %T", event)
	}
	if taskMoved.FromColumnID != f.todo.ID || taskMoved.ToColumnID != f.done.ID {
		t.Fatalf("unexpected columns: %+v", taskMoved)
	}
}

func TestMoveTaskRejectsNeighborFromOtherColumn(t *testing.T) {
	f := newFixture(t)
	_, err := f.module.Handler.MoveTask.Execute(context.Background(), commands.MoveTaskCommand{
		Actor:          editor,
		TaskID:         f.tasks[0].ID,
		TargetColumnID: f.done.ID,
		PrecedingID:    int64Ptr(f.tasks[1].ID),
	})
	if !errors.Is(err, domainerrors.ErrNeighborOutOfScope) {
		t.Fatalf("expected ErrNeighborOutOfScope, got %v", err)
	}
	task, err := f.module.Store.GetTask(context.Background(), f.tasks[0].ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task.ColumnID != f.todo.ID {
		t.Fatalf("task should not have moved")
	}
}

func TestTaskOfAnotherBoardIsNotFound(t *testing.T) {
	f := newFixture(t)
	outsider := application.Actor{UserID: 1, BoardID: boardID + 1, Role: "ADMIN"}
	_, err := f.module.Handler.GetTask.Execute(context.Background(), outsider, f.tasks[0].ID)
	if !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	err = f.module.Handler.DeleteTask.Execute(context.Background(), commands.DeleteTaskCommand{
		Actor:  outsider,
		TaskID: f.tasks[0].ID,
	})
	if !errors.Is(err, domainerrors.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestViewerCannotWrite(t *testing.T) {
	f := newFixture(t)
	_, err := f.module.Handler.CreateTask.Execute(context.Background(), commands.CreateTaskCommand{
		Actor:    viewer,
		ColumnID: f.todo.ID,
		Title:    "nope",
	})
	if !errors.Is(err, faults.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.module.Handler.ListBoard.Execute(context.Background(), viewer); err != nil {
		t.Fatalf("viewer should read the board: %v", err)
	}

	anonymous := application.Actor{BoardID: boardID, Role: "ADMIN"}
	if _, err := f.module.Handler.ListBoard.Execute(context.Background(), anonymous); !errors.Is(err, faults.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestUpdateTaskReportsExpiry(t *testing.T) {
	f := newFixture(t)
	deadline := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	response, err := f.module.Handler.UpdateTaskHandler(context.Background(), editor, f.tasks[0].ID, httptransport.UpdateTaskRequest{
		Deadline: &deadline,
		Priority: stringPtr("HIGH"),
	})
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if !response.Expired || response.Priority != "HIGH" {
		t.Fatalf("unexpected response: %+v", response)
	}

	_, err = f.module.Handler.UpdateTaskHandler(context.Background(), editor, f.tasks[0].ID, httptransport.UpdateTaskRequest{
		Priority: stringPtr("URGENT"),
	})
	if !errors.Is(err, faults.ErrInvalid) {
		t.Fatalf("expected invalid, got %v", err)
	}
}

func stringPtr(v string) *string { return &v }

func TestDuplicateAssignmentConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cmd := commands.AssignmentCommand{Actor: editor, TaskID: f.tasks[0].ID, BoardMemberID: 11, UserID: 5}
	if _, err := f.module.Handler.AssignTask.Execute(ctx, cmd); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := f.module.Handler.AssignTask.Execute(ctx, cmd); !errors.Is(err, faults.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := f.module.Handler.UnassignTask.Execute(ctx, cmd); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if err := f.module.Handler.UnassignTask.Execute(ctx, cmd); !errors.Is(err, domainerrors.ErrAssigneeNotFound) {
		t.Fatalf("expected ErrAssigneeNotFound, got %v", err)
	}
}

func TestCascadeConsumerIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.module.Handler.AssignTask.Execute(ctx, commands.AssignmentCommand{
		Actor: editor, TaskID: f.tasks[1].ID, BoardMemberID: 11, UserID: 5,
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	removed, err := eventsv1.Wrap(eventsv1.BoardMemberRemoved{
		BoardMembership: eventsv1.BoardMembership{BoardID: boardID, MemberID: 11, UserID: 5},
	})
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := f.module.Consumer.HandleBoardEvent(ctx, removed); err != nil {
			t.Fatalf("handle member removed (%d): %v", i, err)
		}
	}
	view, err := f.module.Handler.GetTask.Execute(ctx, editor, f.tasks[1].ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if len(view.Assignees) != 0 {
		t.Fatalf("expected assignments removed, got %d", len(view.Assignees))
	}

	deleted, err := eventsv1.Wrap(eventsv1.WorkspaceDeleted{WorkspaceID: 3, BoardIDs: []int64{boardID}})
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := f.module.Consumer.HandleWorkspaceEvent(ctx, deleted); err != nil {
			t.Fatalf("handle workspace deleted (%d): %v", i, err)
		}
	}
	columns, err := f.module.Handler.ListBoard.Execute(ctx, editor)
	if err != nil {
		t.Fatalf("list board: %v", err)
	}
	if len(columns) != 0 {
		t.Fatalf("expected empty board, got %d columns", len(columns))
	}

	unknown := eventsv1.Envelope{EventType: "BOARD_ARCHIVED", Payload: json.RawMessage(`{}`)}
	if err := f.module.Consumer.HandleBoardEvent(ctx, unknown); err != nil {
		t.Fatalf("unknown event types should be skipped: %v", err)
	}
	malformed := eventsv1.Envelope{EventType: eventsv1.TypeBoardDeleted, Payload: json.RawMessage(`{}`)}
	if err := f.module.Consumer.HandleBoardEvent(ctx, malformed); !errors.Is(err, eventsv1.ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

// columnCalls records the column repository calls a use case makes.
type columnCalls struct {
	ports.ColumnRepository
	calls []string
	locks []int64
}

func (c *columnCalls) LockColumnScope(ctx context.Context, boardID int64) error {
	c.calls = append(c.calls, "scope")
	return c.ColumnRepository.LockColumnScope(ctx, boardID)
}

func (c *columnCalls) MaxColumnOrder(ctx context.Context, boardID int64) (*float64, error) {
	c.calls = append(c.calls, "max")
	return c.ColumnRepository.MaxColumnOrder(ctx, boardID)
}

func (c *columnCalls) LockColumn(ctx context.Context, columnID int64) (entities.Column, error) {
	c.calls = append(c.calls, "row")
	c.locks = append(c.locks, columnID)
	return c.ColumnRepository.LockColumn(ctx, columnID)
}

func TestColumnOrderingTakesBoardScopeLockFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	create := f.module.Handler.CreateColumn
	recorder := &columnCalls{ColumnRepository: create.Columns}
	create.Columns = recorder
	_, err := create.Execute(ctx, commands.CreateColumnCommand{Actor: editor, Name: "Backlog"})
	if err != nil {
		t.Fatalf("create column: %v", err)
	}
	if len(recorder.calls) < 2 || recorder.calls[0] != "scope" || recorder.calls[1] != "max" {
		t.Fatalf("expected scope lock before max read, got %v", recorder.calls)
	}

	move := f.module.Handler.MoveColumn
	recorder = &columnCalls{ColumnRepository: move.Columns}
	move.Columns = recorder
	if _, err := move.Execute(ctx, commands.MoveColumnCommand{Actor: editor, ColumnID: f.todo.ID}); err != nil {
		t.Fatalf("move column to end: %v", err)
	}
	if recorder.calls[0] != "scope" || !slices.Contains(recorder.calls, "max") {
		t.Fatalf("expected scope lock then max read on append move, got %v", recorder.calls)
	}
}

func TestMoveColumnLocksRowsInIDOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	move := f.module.Handler.MoveColumn
	recorder := &columnCalls{ColumnRepository: move.Columns}
	move.Columns = recorder
	// Done moves in front of Todo: the moved row has the higher id.
	moved, err := move.Execute(ctx, commands.MoveColumnCommand{
		Actor:       editor,
		ColumnID:    f.done.ID,
		FollowingID: int64Ptr(f.todo.ID),
	})
	if err != nil {
		t.Fatalf("move column: %v", err)
	}
	if moved.OrderIndex >= f.todo.OrderIndex {
		t.Fatalf("expected Done before Todo, got %v vs %v", moved.OrderIndex, f.todo.OrderIndex)
	}
	if recorder.calls[0] != "scope" {
		t.Fatalf("expected scope lock first, got %v", recorder.calls)
	}
	if !slices.IsSorted(recorder.locks) || len(recorder.locks) != 2 {
		t.Fatalf("expected ascending row locks, got %v", recorder.locks)
	}
}

func TestConcurrentColumnCreatesGetDistinctIndexes(t *testing.T) {
	module := NewInMemoryModule(nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan entities.Column, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			column, err := module.Handler.CreateColumn.Execute(ctx, commands.CreateColumnCommand{Actor: editor, Name: "Lane"})
			if err != nil {
				t.Errorf("create column: %v", err)
				return
			}
			results <- column
		}()
	}
	wg.Wait()
	close(results)

	seen := map[float64]bool{}
	for column := range results {
		if seen[column.OrderIndex] {
			t.Fatalf("duplicate order index %v", column.OrderIndex)
		}
		seen[column.OrderIndex] = true
	}
	if len(seen) != 8 {
		t.Fatalf("expected 8 distinct indexes, got %d", len(seen))
	}
}

func TestBoardDeletedAppliedTwiceLeavesEmptyBoard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	deleted, err := eventsv1.Wrap(eventsv1.BoardDeleted{BoardID: boardID})
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := f.module.Consumer.HandleBoardEvent(ctx, deleted); err != nil {
			t.Fatalf("handle board deleted (%d): %v", i, err)
		}
	}
	columns, err := f.module.Handler.ListBoard.Execute(ctx, editor)
	if err != nil {
		t.Fatalf("list board: %v", err)
	}
	if len(columns) != 0 {
		t.Fatalf("expected empty board, got %d columns", len(columns))
	}
	if _, err := f.module.Store.GetTask(ctx, f.tasks[0].ID); !errors.Is(err, domainerrors.ErrTaskNotFound) {
		t.Fatalf("expected tasks removed, got %v", err)
	}
}

func TestCascadeEventsInAnyOrder(t *testing.T) {
	membership := eventsv1.BoardMembership{BoardID: boardID, MemberID: 11, UserID: 5}
	removed, err := eventsv1.Wrap(eventsv1.BoardMemberRemoved{BoardMembership: membership})
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	left, err := eventsv1.Wrap(eventsv1.BoardMemberLeft{BoardMembership: membership})
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	deleted, err := eventsv1.Wrap(eventsv1.BoardDeleted{BoardID: boardID})
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}

	orders := map[string][]eventsv1.Envelope{
		"delete first":     {deleted, removed, left},
		"delete last":      {removed, left, deleted},
		"duplicated mixed": {removed, deleted, removed, deleted, left},
	}
	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			if _, err := f.module.Handler.AssignTask.Execute(ctx, commands.AssignmentCommand{
				Actor: editor, TaskID: f.tasks[0].ID, BoardMemberID: 11, UserID: 5,
			}); err != nil {
				t.Fatalf("assign: %v", err)
			}
			for i, env := range order {
				if err := f.module.Consumer.HandleBoardEvent(ctx, env); err != nil {
					t.Fatalf("handle %s at %d: %v", env.EventType, i, err)
				}
			}
			columns, err := f.module.Handler.ListBoard.Execute(ctx, editor)
			if err != nil {
				t.Fatalf("list board: %v", err)
			}
			if len(columns) != 0 {
				t.Fatalf("expected empty board, got %d columns", len(columns))
			}
		})
	}
}
