package entities

import (
	"encoding/json"
	"strings"
	"time"
)

type NotificationType string

const (
	TypeInvitation       NotificationType = "INVITATION"
	TypeAssignment       NotificationType = "ASSIGNMENT"
	TypeRemovedFromBoard NotificationType = "REMOVED_FROM_BOARD"
)

type NotificationStatus string

const (
	StatusUnread    NotificationStatus = "UNREAD"
	StatusRead      NotificationStatus = "READ"
	StatusDismissed NotificationStatus = "DISMISSED"
)

func ParseStatus(raw string) (NotificationStatus, bool) {
	status := NotificationStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case StatusUnread, StatusRead, StatusDismissed:
		return status, true
	default:
		return "", false
	}
}

// Notification is addressed to one user. Payload is the client-facing JSON
// object; invitation notifications also record the invitation they refer
// to so a later status change can find them.
type Notification struct {
	ID              int64
	UserID          int64
	Type            NotificationType
	Status          NotificationStatus
	Payload         json.RawMessage
	InvitationID    int64
	InvitationScope string
	SentAt          time.Time
}

type InvitationPayload struct {
	InvitationID    int64  `json:"invitationId"`
	InviterUsername string `json:"inviterUsername,omitempty"`
	TargetName      string `json:"targetName,omitempty"`
	Scope           string `json:"scope"`
	Role            string `json:"role,omitempty"`
}

type AssignmentPayload struct {
	BoardID       int64  `json:"boardId"`
	TaskID        int64  `json:"taskId"`
	TaskTitle     string `json:"taskTitle,omitempty"`
	ActorUsername string `json:"actorUsername,omitempty"`
	Assigned      bool   `json:"assigned"`
}

type RemovedFromBoardPayload struct {
	BoardID   int64  `json:"boardId"`
	BoardName string `json:"boardName,omitempty"`
}

// User is the local replica of a user-service identity.
type User struct {
	ID          int64
	Firstname   string
	Lastname    string
	Email       string
	Username    string
	AvatarColor string
}
