package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"kanvas/contexts/collaboration/task-service/application"
	"kanvas/contexts/collaboration/task-service/domain/entities"
	domainerrors "kanvas/contexts/collaboration/task-service/domain/errors"
	"kanvas/contexts/collaboration/task-service/domain/services"
	"kanvas/contexts/collaboration/task-service/ports"
	eventsv1 "kanvas/contracts/events/v1"
	"kanvas/contracts/roles"
)

type CreateTaskCommand struct {
	Actor    application.Actor
	ColumnID int64
	Title    string
}

type CreateTaskUseCase struct {
	Columns   ports.ColumnRepository
	Tasks     ports.TaskRepository
	Tx        ports.TxRunner
	Emitter   application.Emitter
	Allocator services.Allocator
	Clock     ports.Clock
	Logger    *slog.Logger
}

// Execute appends an ACTIVE task to the end of the column.
func (u CreateTaskUseCase) Execute(ctx context.Context, cmd CreateTaskCommand) (entities.Task, error) {
	logger := application.ResolveLogger(u.Logger)
	if err := cmd.Actor.Require(roles.BoardEditor); err != nil {
		return entities.Task{}, err
	}
	now := currentTime(u.Clock)
	task := entities.Task{
		BoardID:   cmd.Actor.BoardID,
		ColumnID:  cmd.ColumnID,
		Title:     strings.TrimSpace(cmd.Title),
		Status:    entities.StatusActive,
		CreatedBy: cmd.Actor.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !task.Validate() {
		return entities.Task{}, domainerrors.ErrInvalidRequest
	}

	err := u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := lockBoardColumn(ctx, u.Columns, task.BoardID, task.ColumnID); err != nil {
			return err
		}
		max, err := u.Tasks.MaxTaskOrder(ctx, task.ColumnID)
		if err != nil {
			return err
		}
		index, positions, err := appendAfter(ctx, u.Allocator, max, renumberTasks(u.Tasks, u.Allocator, task.ColumnID))
		if err != nil {
			return err
		}
		if len(positions) > 0 {
			if err := u.Emitter.Emit(ctx, rebalanced(task.BoardID, task.ColumnID, scopeTasks, positions)); err != nil {
				return err
			}
		}
		task.OrderIndex = index
		created, err := u.Tasks.CreateTask(ctx, task)
		if err != nil {
			return err
		}
		task = created
		return u.Emitter.Emit(ctx, eventsv1.TaskCreated{
			BoardID:    created.BoardID,
			ColumnID:   created.ColumnID,
			TaskID:     created.ID,
			Title:      created.Title,
			OrderIndex: created.OrderIndex,
			CreatedBy:  created.CreatedBy,
		})
	})
	if err != nil {
		logger.Warn("create task failed",
			"event", "task_create_failed",
			"module", moduleName,
			"layer", "application",
			"board_id", cmd.Actor.BoardID,
			"column_id", cmd.ColumnID,
			"error", err.Error(),
		)
		return entities.Task{}, err
	}

	logger.Info("task created",
		"event", "task_created",
		"module", moduleName,
		"layer", "application",
		"board_id", task.BoardID,
		"task_id", task.ID,
	)
	return task, nil
}

// UpdateTaskCommand carries a partial update; nil fields are left alone.
type UpdateTaskCommand struct {
	Actor       application.Actor
	TaskID      int64
	Title       *string
	Description *string
	Deadline    *time.Time
	Priority    *string
	Status      *string
}

type UpdateTaskUseCase struct {
	Tasks   ports.TaskRepository
	Tx      ports.TxRunner
	Emitter application.Emitter
	Clock   ports.Clock
	Logger  *slog.Logger
}

func (u UpdateTaskUseCase) Execute(ctx context.Context, cmd UpdateTaskCommand) (entities.Task, error) {
	if err := cmd.Actor.Require(roles.BoardEditor); err != nil {
		return entities.Task{}, err
	}
	now := currentTime(u.Clock)

	var task entities.Task
	err := u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		locked, err := lockBoardTask(ctx, u.Tasks, cmd.Actor.BoardID, cmd.TaskID)
		if err != nil {
			return err
		}
		if err := mergeTask(&locked, cmd); err != nil {
			return err
		}
		locked.UpdatedAt = now
		if err := u.Tasks.UpdateTask(ctx, locked); err != nil {
			return err
		}
		task = locked
		return u.Emitter.Emit(ctx, eventsv1.TaskUpdated{
			BoardID:     locked.BoardID,
			ColumnID:    locked.ColumnID,
			TaskID:      locked.ID,
			Title:       locked.Title,
			Description: locked.Description,
			Deadline:    locked.Deadline,
			Priority:    string(locked.Priority),
			Status:      string(locked.Status),
			Expired:     locked.Expired(now),
		})
	})
	if err != nil {
		application.ResolveLogger(u.Logger).Warn("update task failed",
			"event", "task_update_failed",
			"module", moduleName,
			"layer", "application",
			"task_id", cmd.TaskID,
			"error", err.Error(),
		)
		return entities.Task{}, err
	}
	return task, nil
}

func mergeTask(task *entities.Task, cmd UpdateTaskCommand) error {
	if cmd.Title != nil {
		title := strings.TrimSpace(*cmd.Title)
		if title == "" || len(title) > 200 {
			return domainerrors.ErrInvalidRequest
		}
		task.Title = title
	}
	if cmd.Description != nil {
		task.Description = strings.TrimSpace(*cmd.Description)
	}
	if cmd.Deadline != nil {
		deadline := cmd.Deadline.UTC()
		task.Deadline = &deadline
	}
	if cmd.Priority != nil {
		priority, ok := entities.ParsePriority(*cmd.Priority)
		if !ok {
			return domainerrors.ErrInvalidRequest
		}
		task.Priority = priority
	}
	if cmd.Status != nil {
		status, ok := entities.ParseStatus(*cmd.Status)
		if !ok {
			return domainerrors.ErrInvalidRequest
		}
		task.Status = status
	}
	return nil
}

type MoveTaskCommand struct {
	Actor          application.Actor
	TaskID         int64
	TargetColumnID int64
	PrecedingID    *int64
	FollowingID    *int64
}

type MoveTaskUseCase struct {
	Columns   ports.ColumnRepository
	Tasks     ports.TaskRepository
	Tx        ports.TxRunner
	Emitter   application.Emitter
	Allocator services.Allocator
	Logger    *slog.Logger
}

// Execute moves a task within its column or into another column of the same
// board. Neighbors must already sit in the target column; with no neighbors
// the task goes to the end of it.
func (u MoveTaskUseCase) Execute(ctx context.Context, cmd MoveTaskCommand) (entities.Task, error) {
	logger := application.ResolveLogger(u.Logger)
	if err := cmd.Actor.Require(roles.BoardEditor); err != nil {
		return entities.Task{}, err
	}
	if sameID(cmd.PrecedingID, cmd.TaskID) || sameID(cmd.FollowingID, cmd.TaskID) {
		return entities.Task{}, domainerrors.ErrNeighborOutOfScope
	}

	boardID := cmd.Actor.BoardID
	var (
		task       entities.Task
		fromColumn int64
		positions  []entities.Position
	)
	renumber := renumberTasks(u.Tasks, u.Allocator, cmd.TargetColumnID)
	err := u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := lockBoardColumn(ctx, u.Columns, boardID, cmd.TargetColumnID); err != nil {
			return err
		}
		locked, err := lockBoardTask(ctx, u.Tasks, boardID, cmd.TaskID)
		if err != nil {
			return err
		}
		fromColumn = locked.ColumnID

		preceding, err := u.taskNeighbor(ctx, cmd.TargetColumnID, cmd.PrecedingID)
		if err != nil {
			return err
		}
		following, err := u.taskNeighbor(ctx, cmd.TargetColumnID, cmd.FollowingID)
		if err != nil {
			return err
		}

		var index float64
		if preceding == nil && following == nil {
			max, err := u.Tasks.MaxTaskOrder(ctx, cmd.TargetColumnID)
			if err != nil {
				return err
			}
			index, positions, err = appendAfter(ctx, u.Allocator, max, renumber)
			if err != nil {
				return err
			}
		} else {
			index, positions, err = placeBetween(ctx, u.Allocator, preceding, following, renumber)
			if err != nil {
				return err
			}
		}
		if len(positions) > 0 {
			event := rebalanced(boardID, cmd.TargetColumnID, scopeTasks, positions)
			if err := u.Emitter.Emit(ctx, event); err != nil {
				return err
			}
		}
		if err := u.Tasks.MoveTask(ctx, locked.ID, cmd.TargetColumnID, index); err != nil {
			return err
		}
		locked.ColumnID = cmd.TargetColumnID
		locked.OrderIndex = index
		task = locked
		return u.Emitter.Emit(ctx, eventsv1.TaskMoved{
			BoardID:      boardID,
			TaskID:       locked.ID,
			FromColumnID: fromColumn,
			ToColumnID:   cmd.TargetColumnID,
			OrderIndex:   index,
		})
	})
	if err != nil {
		logger.Warn("move task failed",
			"event", "task_move_failed",
			"module", moduleName,
			"layer", "application",
			"board_id", boardID,
			"task_id", cmd.TaskID,
			"target_column_id", cmd.TargetColumnID,
			"error", err.Error(),
		)
		return entities.Task{}, err
	}

	logger.Info("task moved",
		"event", "task_moved",
		"module", moduleName,
		"layer", "application",
		"board_id", boardID,
		"task_id", task.ID,
		"from_column_id", fromColumn,
		"to_column_id", task.ColumnID,
		"rebalanced", len(positions) > 0,
	)
	return task, nil
}

func (u MoveTaskUseCase) taskNeighbor(ctx context.Context, columnID int64, taskID *int64) (*neighbor, error) {
	if taskID == nil {
		return nil, nil
	}
	task, err := u.Tasks.LockTask(ctx, *taskID)
	if err != nil {
		return nil, err
	}
	if task.ColumnID != columnID {
		return nil, domainerrors.ErrNeighborOutOfScope
	}
	return &neighbor{ID: task.ID, OrderIndex: task.OrderIndex}, nil
}

type DeleteTaskCommand struct {
	Actor  application.Actor
	TaskID int64
}

type DeleteTaskUseCase struct {
	Tasks   ports.TaskRepository
	Tx      ports.TxRunner
	Emitter application.Emitter
	Logger  *slog.Logger
}

// Execute deletes the task with its assignees.
func (u DeleteTaskUseCase) Execute(ctx context.Context, cmd DeleteTaskCommand) error {
	if err := cmd.Actor.Require(roles.BoardEditor); err != nil {
		return err
	}
	err := u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		task, err := lockBoardTask(ctx, u.Tasks, cmd.Actor.BoardID, cmd.TaskID)
		if err != nil {
			return err
		}
		if err := u.Tasks.DeleteTask(ctx, task.ID); err != nil {
			return err
		}
		return u.Emitter.Emit(ctx, eventsv1.TaskDeleted{BoardID: task.BoardID, ColumnID: task.ColumnID, TaskID: task.ID})
	})
	if err != nil {
		application.ResolveLogger(u.Logger).Warn("delete task failed",
			"event", "task_delete_failed",
			"module", moduleName,
			"layer", "application",
			"task_id", cmd.TaskID,
			"error", err.Error(),
		)
	}
	return err
}

func lockBoardTask(ctx context.Context, tasks ports.TaskRepository, boardID int64, taskID int64) (entities.Task, error) {
	task, err := tasks.LockTask(ctx, taskID)
	if err != nil {
		return entities.Task{}, err
	}
	if task.BoardID != boardID {
		return entities.Task{}, domainerrors.ErrTaskNotFound
	}
	return task, nil
}
