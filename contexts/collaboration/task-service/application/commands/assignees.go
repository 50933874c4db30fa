package commands

import (
	"context"
	"log/slog"

	"kanvas/contexts/collaboration/task-service/application"
	"kanvas/contexts/collaboration/task-service/domain/entities"
	domainerrors "kanvas/contexts/collaboration/task-service/domain/errors"
	"kanvas/contexts/collaboration/task-service/ports"
	eventsv1 "kanvas/contracts/events/v1"
	"kanvas/contracts/roles"
)

type AssignmentCommand struct {
	Actor         application.Actor
	TaskID        int64
	BoardMemberID int64
	UserID        int64
}

func (c AssignmentCommand) valid() bool {
	return c.TaskID > 0 && c.BoardMemberID > 0 && c.UserID > 0
}

type AssignTaskUseCase struct {
	Tasks     ports.TaskRepository
	Assignees ports.AssigneeRepository
	Tx        ports.TxRunner
	Emitter   application.Emitter
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (u AssignTaskUseCase) Execute(ctx context.Context, cmd AssignmentCommand) (entities.Assignee, error) {
	logger := application.ResolveLogger(u.Logger)
	if err := cmd.Actor.Require(roles.BoardEditor); err != nil {
		return entities.Assignee{}, err
	}
	if !cmd.valid() {
		return entities.Assignee{}, domainerrors.ErrInvalidRequest
	}

	var assignee entities.Assignee
	err := u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		task, err := lockBoardTask(ctx, u.Tasks, cmd.Actor.BoardID, cmd.TaskID)
		if err != nil {
			return err
		}
		created, err := u.Assignees.AddAssignee(ctx, entities.Assignee{
			TaskID:        task.ID,
			BoardID:       task.BoardID,
			BoardMemberID: cmd.BoardMemberID,
			UserID:        cmd.UserID,
			AssignedBy:    cmd.Actor.UserID,
			AssignedAt:    currentTime(u.Clock),
		})
		if err != nil {
			return err
		}
		assignee = created
		return u.Emitter.Emit(ctx, eventsv1.TaskAssigned{TaskAssignment: assignment(task, created, cmd.Actor.UserID)})
	})
	if err != nil {
		logger.Warn("assign task failed",
			"event", "task_assign_failed",
			"module", moduleName,
			"layer", "application",
			"task_id", cmd.TaskID,
			"board_member_id", cmd.BoardMemberID,
			"error", err.Error(),
		)
		return entities.Assignee{}, err
	}

	logger.Info("task assigned",
		"event", "task_assigned",
		"module", moduleName,
		"layer", "application",
		"task_id", cmd.TaskID,
		"user_id", cmd.UserID,
	)
	return assignee, nil
}

type UnassignTaskUseCase struct {
	Tasks     ports.TaskRepository
	Assignees ports.AssigneeRepository
	Tx        ports.TxRunner
	Emitter   application.Emitter
	Logger    *slog.Logger
}

func (u UnassignTaskUseCase) Execute(ctx context.Context, cmd AssignmentCommand) error {
	if err := cmd.Actor.Require(roles.BoardEditor); err != nil {
		return err
	}
	if cmd.TaskID <= 0 || cmd.BoardMemberID <= 0 {
		return domainerrors.ErrInvalidRequest
	}
	err := u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		task, err := lockBoardTask(ctx, u.Tasks, cmd.Actor.BoardID, cmd.TaskID)
		if err != nil {
			return err
		}
		existing, found, err := u.Assignees.FindAssignee(ctx, task.ID, cmd.BoardMemberID)
		if err != nil {
			return err
		}
		if !found {
			return domainerrors.ErrAssigneeNotFound
		}
		if err := u.Assignees.DeleteAssignee(ctx, existing.ID); err != nil {
			return err
		}
		return u.Emitter.Emit(ctx, eventsv1.TaskUnassigned{TaskAssignment: assignment(task, existing, cmd.Actor.UserID)})
	})
	if err != nil {
		application.ResolveLogger(u.Logger).Warn("unassign task failed",
			"event", "task_unassign_failed",
			"module", moduleName,
			"layer", "application",
			"task_id", cmd.TaskID,
			"board_member_id", cmd.BoardMemberID,
			"error", err.Error(),
		)
	}
	return err
}

func assignment(task entities.Task, assignee entities.Assignee, actorID int64) eventsv1.TaskAssignment {
	return eventsv1.TaskAssignment{
		BoardID:       task.BoardID,
		TaskID:        task.ID,
		BoardMemberID: assignee.BoardMemberID,
		UserID:        assignee.UserID,
		ActorID:       actorID,
		TaskTitle:     task.Title,
	}
}
