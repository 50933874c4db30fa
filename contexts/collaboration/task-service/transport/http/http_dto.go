package httptransport

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateColumnRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type RenameColumnRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// MoveRequest names the rows the item is dropped between. Both may be
// omitted to move the item to the end.
type MoveRequest struct {
	PrecedingID *int64 `json:"precedingId,omitempty" validate:"omitempty,gt=0"`
	FollowingID *int64 `json:"followingId,omitempty" validate:"omitempty,gt=0"`
}

type MoveTaskRequest struct {
	MoveRequest
	ColumnID int64 `json:"columnId" validate:"required,gt=0"`
}

type CreateTaskRequest struct {
	ColumnID int64  `json:"columnId" validate:"required,gt=0"`
	Title    string `json:"title" validate:"required,max=200"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Priority    *string    `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE DONE"`
}

type AssignRequest struct {
	BoardMemberID int64 `json:"boardMemberId" validate:"required,gt=0"`
	UserID        int64 `json:"userId" validate:"required,gt=0"`
}

type ColumnResponse struct {
	ID         int64          `json:"id"`
	BoardID    int64          `json:"boardId"`
	Name       string         `json:"name"`
	OrderIndex float64        `json:"orderIndex"`
	Tasks      []TaskResponse `json:"tasks,omitempty"`
}

type AssigneeResponse struct {
	ID            int64     `json:"id"`
	BoardMemberID int64     `json:"boardMemberId"`
	UserID        int64     `json:"userId"`
	Username      string    `json:"username,omitempty"`
	Firstname     string    `json:"firstname,omitempty"`
	Lastname      string    `json:"lastname,omitempty"`
	AvatarColor   string    `json:"avatarColor,omitempty"`
	AssignedAt    time.Time `json:"assignedAt"`
}

type TaskResponse struct {
	ID          int64              `json:"id"`
	BoardID     int64              `json:"boardId"`
	ColumnID    int64              `json:"columnId"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Deadline    *time.Time         `json:"deadline,omitempty"`
	Priority    string             `json:"priority,omitempty"`
	Status      string             `json:"status"`
	Expired     bool               `json:"expired"`
	OrderIndex  float64            `json:"orderIndex"`
	CreatedBy   int64              `json:"createdBy"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
	Assignees   []AssigneeResponse `json:"assignees"`
}

type BoardColumnsResponse struct {
	BoardID int64            `json:"boardId"`
	Columns []ColumnResponse `json:"columns"`
}
