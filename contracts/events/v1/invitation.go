package v1

import (
	"encoding/json"
	"time"
)

type InvitationEvent interface {
	Event
	isInvitationEvent()
}

var invitationEvents = map[string]func() InvitationEvent{
	TypeInvitationCreated: func() InvitationEvent { return &InvitationCreated{} },
	TypeInvitationUpdated: func() InvitationEvent { return &InvitationUpdated{} },
}

func DecodeInvitationEvent(env Envelope) (InvitationEvent, error) {
	return decode(invitationEvents, env)
}

type InvitationCreated struct {
	InvitationID    int64     `json:"invitationId"`
	Scope           string    `json:"scope"`
	ContainerID     int64     `json:"containerId"`
	ContainerName   string    `json:"containerName,omitempty"`
	InviterID       int64     `json:"inviterId"`
	InviterUsername string    `json:"inviterUsername,omitempty"`
	InviteeID       int64     `json:"inviteeId"`
	Role            string    `json:"role"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

func (InvitationCreated) EventType() string  { return TypeInvitationCreated }
func (InvitationCreated) Topic() string      { return TopicInvitation }
func (InvitationCreated) isInvitationEvent() {}

func (e InvitationCreated) Validate() error {
	return requireIDs(map[string]int64{"invitationId": e.InvitationID, "inviteeId": e.InviteeID})
}

type InvitationUpdated struct {
	InvitationID int64  `json:"invitationId"`
	Scope        string `json:"scope"`
	ContainerID  int64  `json:"containerId"`
	InviteeID    int64  `json:"inviteeId"`
	Status       string `json:"status"`
}

func (InvitationUpdated) EventType() string  { return TypeInvitationUpdated }
func (InvitationUpdated) Topic() string      { return TopicInvitation }
func (InvitationUpdated) isInvitationEvent() {}

func (e InvitationUpdated) Validate() error {
	return requireIDs(map[string]int64{"invitationId": e.InvitationID, "inviteeId": e.InviteeID})
}

type NotificationEvent interface {
	Event
	isNotificationEvent()
	Recipient() int64
}

var notificationEvents = map[string]func() NotificationEvent{
	TypeNotificationCreated: func() NotificationEvent { return &NotificationCreated{} },
	TypeNotificationUpdated: func() NotificationEvent { return &NotificationUpdated{} },
}

func DecodeNotificationEvent(env Envelope) (NotificationEvent, error) {
	return decode(notificationEvents, env)
}

type NotificationCreated struct {
	NotificationID int64           `json:"notificationId"`
	UserID         int64           `json:"userId"`
	Type           string          `json:"type"`
	Status         string          `json:"status"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	SentAt         time.Time       `json:"sentAt"`
}

func (NotificationCreated) EventType() string    { return TypeNotificationCreated }
func (NotificationCreated) Topic() string        { return TopicNotification }
func (NotificationCreated) isNotificationEvent() {}
func (e NotificationCreated) Recipient() int64   { return e.UserID }

func (e NotificationCreated) Validate() error {
	return requireIDs(map[string]int64{"notificationId": e.NotificationID, "userId": e.UserID})
}

type NotificationUpdated struct {
	NotificationID int64  `json:"notificationId"`
	UserID         int64  `json:"userId"`
	Status         string `json:"status"`
}

func (NotificationUpdated) EventType() string    { return TypeNotificationUpdated }
func (NotificationUpdated) Topic() string        { return TopicNotification }
func (NotificationUpdated) isNotificationEvent() {}
func (e NotificationUpdated) Recipient() int64   { return e.UserID }

func (e NotificationUpdated) Validate() error {
	return requireIDs(map[string]int64{"notificationId": e.NotificationID, "userId": e.UserID})
}
