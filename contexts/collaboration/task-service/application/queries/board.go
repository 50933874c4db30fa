package queries

import (
	"context"
	"sort"
	"time"

	"kanvas/contexts/collaboration/task-service/application"
	"kanvas/contexts/collaboration/task-service/domain/entities"
	domainerrors "kanvas/contexts/collaboration/task-service/domain/errors"
	"kanvas/contexts/collaboration/task-service/ports"
	"kanvas/contracts/roles"

	"golang.org/x/sync/errgroup"
)

type AssigneeView struct {
	Assignee entities.Assignee
	User     entities.User
}

type TaskView struct {
	Task      entities.Task
	Expired   bool
	Assignees []AssigneeView
}

type ColumnView struct {
	Column entities.Column
	Tasks  []TaskView
}

// ListBoardUseCase returns the board's columns in order, each with its tasks
// in order and their assignees.
type ListBoardUseCase struct {
	Columns   ports.ColumnRepository
	Tasks     ports.TaskRepository
	Assignees ports.AssigneeRepository
	Users     ports.UserReplica
	Clock     ports.Clock
}

func (u ListBoardUseCase) Execute(ctx context.Context, actor application.Actor) ([]ColumnView, error) {
	if err := actor.Require(roles.BoardViewer); err != nil {
		return nil, err
	}

	var (
		columns []entities.Column
		tasks   []entities.Task
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		columns, err = u.Columns.ListBoardColumns(groupCtx, actor.BoardID)
		return err
	})
	group.Go(func() error {
		var err error
		tasks, err = u.Tasks.ListBoardTasks(groupCtx, actor.BoardID)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	views, err := taskViews(ctx, u.Assignees, u.Users, tasks, now(u.Clock))
	if err != nil {
		return nil, err
	}
	byColumn := make(map[int64][]TaskView, len(columns))
	for _, view := range views {
		byColumn[view.Task.ColumnID] = append(byColumn[view.Task.ColumnID], view)
	}

	sort.SliceStable(columns, func(i, j int) bool { return columns[i].OrderIndex < columns[j].OrderIndex })
	result := make([]ColumnView, 0, len(columns))
	for _, column := range columns {
		columnTasks := byColumn[column.ID]
		sort.SliceStable(columnTasks, func(i, j int) bool {
			return columnTasks[i].Task.OrderIndex < columnTasks[j].Task.OrderIndex
		})
		if columnTasks == nil {
			columnTasks = []TaskView{}
		}
		result = append(result, ColumnView{Column: column, Tasks: columnTasks})
	}
	return result, nil
}

type GetTaskUseCase struct {
	Tasks     ports.TaskRepository
	Assignees ports.AssigneeRepository
	Users     ports.UserReplica
	Clock     ports.Clock
}

func (u GetTaskUseCase) Execute(ctx context.Context, actor application.Actor, taskID int64) (TaskView, error) {
	if err := actor.Require(roles.BoardViewer); err != nil {
		return TaskView{}, err
	}
	task, err := u.Tasks.GetTask(ctx, taskID)
	if err != nil {
		return TaskView{}, err
	}
	if task.BoardID != actor.BoardID {
		return TaskView{}, domainerrors.ErrTaskNotFound
	}
	views, err := taskViews(ctx, u.Assignees, u.Users, []entities.Task{task}, now(u.Clock))
	if err != nil {
		return TaskView{}, err
	}
	return views[0], nil
}

func taskViews(
	ctx context.Context,
	assignees ports.AssigneeRepository,
	users ports.UserReplica,
	tasks []entities.Task,
	at time.Time,
) ([]TaskView, error) {
	if len(tasks) == 0 {
		return nil, nil
	}
	taskIDs := make([]int64, 0, len(tasks))
	for _, task := range tasks {
		taskIDs = append(taskIDs, task.ID)
	}
	links, err := assignees.ListAssignees(ctx, taskIDs)
	if err != nil {
		return nil, err
	}
	userIDs := make([]int64, 0, len(links))
	for _, link := range links {
		userIDs = append(userIDs, link.UserID)
	}
	profiles := map[int64]entities.User{}
	if len(userIDs) > 0 && users != nil {
		profiles, err = users.GetUsers(ctx, userIDs)
		if err != nil {
			return nil, err
		}
	}

	byTask := make(map[int64][]AssigneeView, len(tasks))
	for _, link := range links {
		user, ok := profiles[link.UserID]
		if !ok {
			user = entities.User{ID: link.UserID}
		}
		byTask[link.TaskID] = append(byTask[link.TaskID], AssigneeView{Assignee: link, User: user})
	}

	views := make([]TaskView, 0, len(tasks))
	for _, task := range tasks {
		views = append(views, TaskView{
			Task:      task,
			Expired:   task.Expired(at),
			Assignees: byTask[task.ID],
		})
	}
	return views, nil
}

func now(clock ports.Clock) time.Time {
	if clock != nil {
		return clock.Now().UTC()
	}
	return time.Now().UTC()
}
