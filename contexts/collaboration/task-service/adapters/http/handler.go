package httpadapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kanvas/contexts/collaboration/task-service/application"
	"kanvas/contexts/collaboration/task-service/application/commands"
	"kanvas/contexts/collaboration/task-service/application/queries"
	domainerrors "kanvas/contexts/collaboration/task-service/domain/errors"
	httptransport "kanvas/contexts/collaboration/task-service/transport/http"

	"github.com/go-playground/validator/v10"
)

// Handler maps HTTP DTOs to application commands/queries. The actor is
// built by the transport from the gateway headers.
type Handler struct {
	CreateColumn commands.CreateColumnUseCase
	RenameColumn commands.RenameColumnUseCase
	MoveColumn   commands.MoveColumnUseCase
	DeleteColumn commands.DeleteColumnUseCase
	CreateTask   commands.CreateTaskUseCase
	UpdateTask   commands.UpdateTaskUseCase
	MoveTask     commands.MoveTaskUseCase
	DeleteTask   commands.DeleteTaskUseCase
	AssignTask   commands.AssignTaskUseCase
	UnassignTask commands.UnassignTaskUseCase

	ListBoard queries.ListBoardUseCase
	GetTask   queries.GetTaskUseCase

	Validate *validator.Validate
	Clock    func() time.Time
	Logger   *slog.Logger
}

func (h Handler) validate(request any) error {
	if h.Validate == nil {
		return nil
	}
	if err := h.Validate.Struct(request); err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrInvalidRequest, err)
	}
	return nil
}

func (h Handler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

func (h Handler) ListBoardHandler(ctx context.Context, actor application.Actor) (httptransport.BoardColumnsResponse, error) {
	columns, err := h.ListBoard.Execute(ctx, actor)
	if err != nil {
		return httptransport.BoardColumnsResponse{}, err
	}
	response := httptransport.BoardColumnsResponse{
		BoardID: actor.BoardID,
		Columns: make([]httptransport.ColumnResponse, 0, len(columns)),
	}
	for _, view := range columns {
		column := toColumnResponse(view.Column)
		column.Tasks = make([]httptransport.TaskResponse, 0, len(view.Tasks))
		for _, task := range view.Tasks {
			column.Tasks = append(column.Tasks, toTaskView(task))
		}
		response.Columns = append(response.Columns, column)
	}
	return response, nil
}

func (h Handler) CreateColumnHandler(
	ctx context.Context,
	actor application.Actor,
	request httptransport.CreateColumnRequest,
) (httptransport.ColumnResponse, error) {
	if err := h.validate(request); err != nil {
		return httptransport.ColumnResponse{}, err
	}
	column, err := h.CreateColumn.Execute(ctx, commands.CreateColumnCommand{Actor: actor, Name: request.Name})
	if err != nil {
		return httptransport.ColumnResponse{}, err
	}
	return toColumnResponse(column), nil
}

func (h Handler) RenameColumnHandler(
	ctx context.Context,
	actor application.Actor,
	columnID int64,
	request httptransport.RenameColumnRequest,
) (httptransport.ColumnResponse, error) {
	if err := h.validate(request); err != nil {
		return httptransport.ColumnResponse{}, err
	}
	column, err := h.RenameColumn.Execute(ctx, commands.RenameColumnCommand{
		Actor:    actor,
		ColumnID: columnID,
		Name:     request.Name,
	})
	if err != nil {
		return httptransport.ColumnResponse{}, err
	}
	return toColumnResponse(column), nil
}

func (h Handler) MoveColumnHandler(
	ctx context.Context,
	actor application.Actor,
	columnID int64,
	request httptransport.MoveRequest,
) (httptransport.ColumnResponse, error) {
	if err := h.validate(request); err != nil {
		return httptransport.ColumnResponse{}, err
	}
	column, err := h.MoveColumn.Execute(ctx, commands.MoveColumnCommand{
		Actor:       actor,
		ColumnID:    columnID,
		PrecedingID: request.PrecedingID,
		FollowingID: request.FollowingID,
	})
	if err != nil {
		return httptransport.ColumnResponse{}, err
	}
	return toColumnResponse(column), nil
}

func (h Handler) DeleteColumnHandler(ctx context.Context, actor application.Actor, columnID int64) error {
	return h.DeleteColumn.Execute(ctx, commands.DeleteColumnCommand{Actor: actor, ColumnID: columnID})
}

func (h Handler) CreateTaskHandler(
	ctx context.Context,
	actor application.Actor,
	request httptransport.CreateTaskRequest,
) (httptransport.TaskResponse, error) {
	if err := h.validate(request); err != nil {
		return httptransport.TaskResponse{}, err
	}
	task, err := h.CreateTask.Execute(ctx, commands.CreateTaskCommand{
		Actor:    actor,
		ColumnID: request.ColumnID,
		Title:    request.Title,
	})
	if err != nil {
		return httptransport.TaskResponse{}, err
	}
	return toTaskResponse(task, task.Expired(h.now())), nil
}

func (h Handler) GetTaskHandler(ctx context.Context, actor application.Actor, taskID int64) (httptransport.TaskResponse, error) {
	view, err := h.GetTask.Execute(ctx, actor, taskID)
	if err != nil {
		return httptransport.TaskResponse{}, err
	}
	return toTaskView(view), nil
}

func (h Handler) UpdateTaskHandler(
	ctx context.Context,
	actor application.Actor,
	taskID int64,
	request httptransport.UpdateTaskRequest,
) (httptransport.TaskResponse, error) {
	if err := h.validate(request); err != nil {
		return httptransport.TaskResponse{}, err
	}
	task, err := h.UpdateTask.Execute(ctx, commands.UpdateTaskCommand{
		Actor:       actor,
		TaskID:      taskID,
		Title:       request.Title,
		Description: request.Description,
		Deadline:    request.Deadline,
		Priority:    request.Priority,
		Status:      request.Status,
	})
	if err != nil {
		return httptransport.TaskResponse{}, err
	}
	return toTaskResponse(task, task.Expired(h.now())), nil
}

func (h Handler) MoveTaskHandler(
	ctx context.Context,
	actor application.Actor,
	taskID int64,
	request httptransport.MoveTaskRequest,
) (httptransport.TaskResponse, error) {
	if err := h.validate(request); err != nil {
		return httptransport.TaskResponse{}, err
	}
	task, err := h.MoveTask.Execute(ctx, commands.MoveTaskCommand{
		Actor:          actor,
		TaskID:         taskID,
		TargetColumnID: request.ColumnID,
		PrecedingID:    request.PrecedingID,
		FollowingID:    request.FollowingID,
	})
	if err != nil {
		return httptransport.TaskResponse{}, err
	}
	return toTaskResponse(task, task.Expired(h.now())), nil
}

func (h Handler) DeleteTaskHandler(ctx context.Context, actor application.Actor, taskID int64) error {
	if err := h.DeleteTask.Execute(ctx, commands.DeleteTaskCommand{Actor: actor, TaskID: taskID}); err != nil {
		return err
	}
	application.ResolveLogger(h.Logger).Info("task deleted",
		"event", "task_deleted",
		"module", "collaboration/task-service",
		"layer", "transport",
		"board_id", actor.BoardID,
		"task_id", taskID,
		"actor_id", actor.UserID,
	)
	return nil
}

func (h Handler) AssignTaskHandler(
	ctx context.Context,
	actor application.Actor,
	taskID int64,
	request httptransport.AssignRequest,
) (httptransport.AssigneeResponse, error) {
	if err := h.validate(request); err != nil {
		return httptransport.AssigneeResponse{}, err
	}
	assignee, err := h.AssignTask.Execute(ctx, commands.AssignmentCommand{
		Actor:         actor,
		TaskID:        taskID,
		BoardMemberID: request.BoardMemberID,
		UserID:        request.UserID,
	})
	if err != nil {
		return httptransport.AssigneeResponse{}, err
	}
	return httptransport.AssigneeResponse{
		ID:            assignee.ID,
		BoardMemberID: assignee.BoardMemberID,
		UserID:        assignee.UserID,
		AssignedAt:    assignee.AssignedAt,
	}, nil
}

func (h Handler) UnassignTaskHandler(
	ctx context.Context,
	actor application.Actor,
	taskID int64,
	request httptransport.AssignRequest,
) error {
	if err := h.validate(request); err != nil {
		return err
	}
	return h.UnassignTask.Execute(ctx, commands.AssignmentCommand{
		Actor:         actor,
		TaskID:        taskID,
		BoardMemberID: request.BoardMemberID,
		UserID:        request.UserID,
	})
}
