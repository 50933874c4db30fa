package ports

import (
	"context"
	"time"

	"kanvas/contexts/collaboration/task-service/domain/entities"
	eventsv1 "kanvas/contracts/events/v1"
)

// ColumnRepository persists the columns of a board. Lock methods take row
// locks in the transaction carried by ctx.
type ColumnRepository interface {
	CreateColumn(ctx context.Context, column entities.Column) (entities.Column, error)
	GetColumn(ctx context.Context, columnID int64) (entities.Column, error)
	LockColumn(ctx context.Context, columnID int64) (entities.Column, error)
	// LockColumnScope serializes column ordering on the board until the
	// transaction ends. Callers take it before reading MaxColumnOrder or
	// locking column rows.
	LockColumnScope(ctx context.Context, boardID int64) error
	// LockBoardColumns locks and returns every column of the board in order.
	LockBoardColumns(ctx context.Context, boardID int64) ([]entities.Column, error)
	ListBoardColumns(ctx context.Context, boardID int64) ([]entities.Column, error)
	MaxColumnOrder(ctx context.Context, boardID int64) (*float64, error)
	RenameColumn(ctx context.Context, columnID int64, name string, updatedAt time.Time) error
	UpdateColumnOrder(ctx context.Context, columnID int64, orderIndex float64) error
	// DeleteColumn removes the column with its tasks and their assignees.
	DeleteColumn(ctx context.Context, columnID int64) error
}

type TaskRepository interface {
	CreateTask(ctx context.Context, task entities.Task) (entities.Task, error)
	GetTask(ctx context.Context, taskID int64) (entities.Task, error)
	LockTask(ctx context.Context, taskID int64) (entities.Task, error)
	// LockColumnTasks locks and returns every task of the column in order.
	LockColumnTasks(ctx context.Context, columnID int64) ([]entities.Task, error)
	ListBoardTasks(ctx context.Context, boardID int64) ([]entities.Task, error)
	MaxTaskOrder(ctx context.Context, columnID int64) (*float64, error)
	UpdateTask(ctx context.Context, task entities.Task) error
	// MoveTask sets the column and order index of the task in one write.
	MoveTask(ctx context.Context, taskID int64, columnID int64, orderIndex float64) error
	DeleteTask(ctx context.Context, taskID int64) error
}

type AssigneeRepository interface {
	// AddAssignee fails with ErrAlreadyAssigned for a duplicate (task, member).
	AddAssignee(ctx context.Context, assignee entities.Assignee) (entities.Assignee, error)
	FindAssignee(ctx context.Context, taskID int64, boardMemberID int64) (entities.Assignee, bool, error)
	DeleteAssignee(ctx context.Context, assigneeID int64) error
	ListAssignees(ctx context.Context, taskIDs []int64) ([]entities.Assignee, error)
}

// BoardContentCleaner applies the cascades other services trigger.
type BoardContentCleaner interface {
	// DeleteBoardContent removes columns, tasks and assignees of the boards.
	// Boards with no content are skipped.
	DeleteBoardContent(ctx context.Context, boardIDs []int64) (int, error)
	DeleteMemberAssignments(ctx context.Context, boardID int64, boardMemberID int64) (int, error)
}

type UserReplica interface {
	UpsertUser(ctx context.Context, user entities.User) error
	GetUsers(ctx context.Context, userIDs []int64) (map[int64]entities.User, error)
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = eventsv1.Envelope

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
