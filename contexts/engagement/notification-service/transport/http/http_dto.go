package httptransport

import (
	"encoding/json"
	"time"
)

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=UNREAD READ DISMISSED"`
}

type NotificationResponse struct {
	ID      int64           `json:"id"`
	UserID  int64           `json:"userId"`
	Type    string          `json:"type"`
	Status  string          `json:"status"`
	Payload json.RawMessage `json:"payload,omitempty"`
	SentAt  time.Time       `json:"sentAt"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int                    `json:"unreadCount"`
}

type UnreadCountResponse struct {
	UnreadCount int `json:"unreadCount"`
}

type MarkAllReadResponse struct {
	Marked int `json:"marked"`
}
