package entities

import (
	"encoding/json"
	"time"
)

// Client-facing bodies of board channel messages.

type BoardUpdatedFrame struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Visibility  string `json:"visibility"`
}

type BoardDeletedFrame struct {
	BoardID int64 `json:"boardId"`
}

type MemberJoinedFrame struct {
	MemberID    int64     `json:"memberId"`
	UserID      int64     `json:"userId"`
	Firstname   string    `json:"firstname,omitempty"`
	Lastname    string    `json:"lastname,omitempty"`
	Username    string    `json:"username,omitempty"`
	AvatarColor string    `json:"avatarColor,omitempty"`
	BoardRole   string    `json:"boardRole"`
	JoinedAt    time.Time `json:"joinedAt"`
}

type MemberRemovedFrame struct {
	MemberID int64 `json:"memberId"`
	UserID   int64 `json:"userId"`
}

type RoleChangedFrame struct {
	MemberID int64  `json:"memberId"`
	Role     string `json:"role"`
}

type ColumnFrame struct {
	ColumnID   int64    `json:"columnId"`
	Name       string   `json:"name,omitempty"`
	OrderIndex *float64 `json:"orderIndex,omitempty"`
}

type TaskCreatedFrame struct {
	ColumnID   int64   `json:"columnId"`
	TaskID     int64   `json:"taskId"`
	Title      string  `json:"title"`
	OrderIndex float64 `json:"orderIndex"`
}

type TaskUpdatedFrame struct {
	TaskID      int64      `json:"taskId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	Status      string     `json:"taskStatus,omitempty"`
	Expired     bool       `json:"isExpired"`
}

type TaskMovedFrame struct {
	BeforeColumnID int64   `json:"beforeColumnId"`
	TargetColumnID int64   `json:"targetColumnId"`
	TaskID         int64   `json:"taskId"`
	NewOrderIndex  float64 `json:"newOrderIndex"`
}

type TaskDeletedFrame struct {
	TaskID   int64 `json:"taskId"`
	ColumnID int64 `json:"columnId,omitempty"`
}

type TaskAssignmentFrame struct {
	TaskID        int64 `json:"taskId"`
	BoardMemberID int64 `json:"boardMemberId"`
	UserID        int64 `json:"userId"`
}

type PositionFrame struct {
	ID         int64   `json:"id"`
	OrderIndex float64 `json:"orderIndex"`
}

type PositionsRebalancedFrame struct {
	Scope     string          `json:"scope"`
	ColumnID  int64           `json:"columnId,omitempty"`
	Positions []PositionFrame `json:"positions"`
}

// NotificationFrame is pushed on the recipient's user channel.
type NotificationFrame struct {
	NotificationID int64           `json:"notificationId"`
	UserID         int64           `json:"userId"`
	Type           string          `json:"type,omitempty"`
	Status         string          `json:"status"`
	SentAt         *time.Time      `json:"sentAt,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}
