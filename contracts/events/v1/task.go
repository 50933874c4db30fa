package v1

import "time"

// TaskEvent is the union of payloads carried on task.events. Column events
// share the topic so that per-board ordering holds across both.
type TaskEvent interface {
	Event
	isTaskEvent()
	// Board returns the board whose live view the event changes.
	Board() int64
}

var taskEvents = map[string]func() TaskEvent{
	TypeColumnCreated:       func() TaskEvent { return &ColumnCreated{} },
	TypeColumnUpdated:       func() TaskEvent { return &ColumnUpdated{} },
	TypeColumnMoved:         func() TaskEvent { return &ColumnMoved{} },
	TypeColumnDeleted:       func() TaskEvent { return &ColumnDeleted{} },
	TypeTaskCreated:         func() TaskEvent { return &TaskCreated{} },
	TypeTaskUpdated:         func() TaskEvent { return &TaskUpdated{} },
	TypeTaskMoved:           func() TaskEvent { return &TaskMoved{} },
	TypeTaskDeleted:         func() TaskEvent { return &TaskDeleted{} },
	TypeTaskAssigned:        func() TaskEvent { return &TaskAssigned{} },
	TypeTaskUnassigned:      func() TaskEvent { return &TaskUnassigned{} },
	TypePositionsRebalanced: func() TaskEvent { return &PositionsRebalanced{} },
}

func DecodeTaskEvent(env Envelope) (TaskEvent, error) {
	return decode(taskEvents, env)
}

type ColumnCreated struct {
	BoardID    int64   `json:"boardId"`
	ColumnID   int64   `json:"columnId"`
	Name       string  `json:"name"`
	OrderIndex float64 `json:"orderIndex"`
}

func (ColumnCreated) EventType() string { return TypeColumnCreated }
func (ColumnCreated) Topic() string     { return TopicTask }
func (ColumnCreated) isTaskEvent()      {}
func (e ColumnCreated) Board() int64    { return e.BoardID }

func (e ColumnCreated) Validate() error {
	return requireIDs(map[string]int64{"boardId": e.BoardID, "columnId": e.ColumnID})
}

type ColumnUpdated struct {
	BoardID  int64  `json:"boardId"`
	ColumnID int64  `json:"columnId"`
	Name     string `json:"name"`
}

func (ColumnUpdated) EventType() string { return TypeColumnUpdated }
func (ColumnUpdated) Topic() string     { return TopicTask }
func (ColumnUpdated) isTaskEvent()      {}
func (e ColumnUpdated) Board() int64    { return e.BoardID }

func (e ColumnUpdated) Validate() error {
	return requireIDs(map[string]int64{"boardId": e.BoardID, "columnId": e.ColumnID})
}

type ColumnMoved struct {
	BoardID    int64   `json:"boardId"`
	ColumnID   int64   `json:"columnId"`
	OrderIndex float64 `json:"orderIndex"`
}

func (ColumnMoved) EventType() string { return TypeColumnMoved }
func (ColumnMoved) Topic() string     { return TopicTask }
func (ColumnMoved) isTaskEvent()      {}
func (e ColumnMoved) Board() int64    { return e.BoardID }

func (e ColumnMoved) Validate() error {
	return requireIDs(map[string]int64{"boardId": e.BoardID, "columnId": e.ColumnID})
}

type ColumnDeleted struct {
	BoardID  int64 `json:"boardId"`
	ColumnID int64 `json:"columnId"`
}

func (ColumnDeleted) EventType() string { return TypeColumnDeleted }
func (ColumnDeleted) Topic() string     { return TopicTask }
func (ColumnDeleted) isTaskEvent()      {}
func (e ColumnDeleted) Board() int64    { return e.BoardID }

func (e ColumnDeleted) Validate() error {
	return requireIDs(map[string]int64{"boardId": e.BoardID, "columnId": e.ColumnID})
}

type TaskCreated struct {
	BoardID    int64   `json:"boardId"`
	ColumnID   int64   `json:"columnId"`
	TaskID     int64   `json:"taskId"`
	Title      string  `json:"title"`
	OrderIndex float64 `json:"orderIndex"`
	CreatedBy  int64   `json:"createdBy,omitempty"`
}

func (TaskCreated) EventType() string { return TypeTaskCreated }
func (TaskCreated) Topic() string     { return TopicTask }
func (TaskCreated) isTaskEvent()      {}
func (e TaskCreated) Board() int64    { return e.BoardID }

func (e TaskCreated) Validate() error {
	return requireIDs(map[string]int64{"boardId": e.BoardID, "columnId": e.ColumnID, "taskId": e.TaskID})
}

type TaskUpdated struct {
	BoardID     int64      `json:"boardId"`
	ColumnID    int64      `json:"columnId"`
	TaskID      int64      `json:"taskId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	Status      string     `json:"status,omitempty"`
	Expired     bool       `json:"expired"`
}

func (TaskUpdated) EventType() string { return TypeTaskUpdated }
func (TaskUpdated) Topic() string     { return TopicTask }
func (TaskUpdated) isTaskEvent()      {}
func (e TaskUpdated) Board() int64    { return e.BoardID }

func (e TaskUpdated) Validate() error {
	return requireIDs(map[string]int64{"boardId": e.BoardID, "taskId": e.TaskID})
}

type TaskMoved struct {
	BoardID      int64   `json:"boardId"`
	TaskID       int64   `json:"taskId"`
	FromColumnID int64   `json:"fromColumnId"`
	ToColumnID   int64   `json:"toColumnId"`
	OrderIndex   float64 `json:"orderIndex"`
}

func (TaskMoved) EventType() string { return TypeTaskMoved }
func (TaskMoved) Topic() string     { return TopicTask }
func (TaskMoved) isTaskEvent()      {}
func (e TaskMoved) Board() int64    { return e.BoardID }

func (e TaskMoved) Validate() error {
	return requireIDs(map[string]int64{"boardId": e.BoardID, "taskId": e.TaskID, "toColumnId": e.ToColumnID})
}

type TaskDeleted struct {
	BoardID  int64 `json:"boardId"`
	ColumnID int64 `json:"columnId"`
	TaskID   int64 `json:"taskId"`
}

func (TaskDeleted) EventType() string { return TypeTaskDeleted }
func (TaskDeleted) Topic() string     { return TopicTask }
func (TaskDeleted) isTaskEvent()      {}
func (e TaskDeleted) Board() int64    { return e.BoardID }

func (e TaskDeleted) Validate() error {
	return requireIDs(map[string]int64{"boardId": e.BoardID, "taskId": e.TaskID})
}

// TaskAssignment identifies one assignee on one task.
type TaskAssignment struct {
	BoardID       int64  `json:"boardId"`
	TaskID        int64  `json:"taskId"`
	BoardMemberID int64  `json:"boardMemberId"`
	UserID        int64  `json:"userId"`
	ActorID       int64  `json:"actorId,omitempty"`
	TaskTitle     string `json:"taskTitle,omitempty"`
}

func (a TaskAssignment) Board() int64 { return a.BoardID }

func (a TaskAssignment) Validate() error {
	return requireIDs(map[string]int64{"boardId": a.BoardID, "taskId": a.TaskID, "userId": a.UserID})
}

type TaskAssigned struct {
	TaskAssignment
}

func (TaskAssigned) EventType() string { return TypeTaskAssigned }
func (TaskAssigned) Topic() string     { return TopicTask }
func (TaskAssigned) isTaskEvent()      {}

type TaskUnassigned struct {
	TaskAssignment
}

func (TaskUnassigned) EventType() string { return TypeTaskUnassigned }
func (TaskUnassigned) Topic() string     { return TopicTask }
func (TaskUnassigned) isTaskEvent()      {}

type Position struct {
	ID         int64   `json:"id"`
	OrderIndex float64 `json:"orderIndex"`
}

// PositionsRebalanced carries the full renumbering of one ordering scope.
type PositionsRebalanced struct {
	BoardID   int64      `json:"boardId"`
	ColumnID  int64      `json:"columnId,omitempty"`
	Scope     string     `json:"scope"`
	Positions []Position `json:"positions"`
}

func (PositionsRebalanced) EventType() string { return TypePositionsRebalanced }
func (PositionsRebalanced) Topic() string     { return TopicTask }
func (PositionsRebalanced) isTaskEvent()      {}
func (e PositionsRebalanced) Board() int64    { return e.BoardID }

func (e PositionsRebalanced) Validate() error {
	return requireIDs(map[string]int64{"boardId": e.BoardID})
}
