package entities

import (
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

func ParsePriority(raw string) (Priority, bool) {
	p := Priority(strings.ToUpper(strings.TrimSpace(raw)))
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, true
	default:
		return "", false
	}
}

type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusDone   Status = "DONE"
)

func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if s == StatusActive || s == StatusDone {
		return s, true
	}
	return "", false
}

type Task struct {
	ID          int64
	BoardID     int64
	ColumnID    int64
	Title       string
	Description string
	Deadline    *time.Time
	Priority    Priority
	Status      Status
	OrderIndex  float64
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t Task) Validate() bool {
	title := strings.TrimSpace(t.Title)
	return t.BoardID > 0 && t.ColumnID > 0 && title != "" && len(title) <= 200
}

// Expired reports whether an unfinished task is past its deadline.
func (t Task) Expired(now time.Time) bool {
	return t.Status != StatusDone && t.Deadline != nil && t.Deadline.Before(now)
}

// Assignee links a board member to a task.
type Assignee struct {
	ID            int64
	TaskID        int64
	BoardID       int64
	BoardMemberID int64
	UserID        int64
	AssignedBy    int64
	AssignedAt    time.Time
}
