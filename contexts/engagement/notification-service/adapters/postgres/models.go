package postgresadapter

import (
	"time"

	"kanvas/contexts/engagement/notification-service/domain/entities"
	"kanvas/internal/shared/outbox"

	"gorm.io/gorm"
)

type notificationModel struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID          int64     `gorm:"column:user_id;not null;index:ix_notifications_user_status"`
	Type            string    `gorm:"column:type;not null"`
	Status          string    `gorm:"column:status;not null;index:ix_notifications_user_status"`
	Payload         []byte    `gorm:"column:payload;type:jsonb"`
	InvitationID    *int64    `gorm:"column:invitation_id;index:ix_notifications_invitation"`
	InvitationScope string    `gorm:"column:invitation_scope;index:ix_notifications_invitation"`
	SentAt          time.Time `gorm:"column:sent_at;not null"`
}

func (notificationModel) TableName() string {
	return "notifications"
}

func fromNotification(n entities.Notification) notificationModel {
	row := notificationModel{
		ID:              n.ID,
		UserID:          n.UserID,
		Type:            string(n.Type),
		Status:          string(n.Status),
		Payload:         n.Payload,
		InvitationScope: n.InvitationScope,
		SentAt:          n.SentAt.UTC(),
	}
	if n.InvitationID > 0 {
		id := n.InvitationID
		row.InvitationID = &id
	}
	return row
}

func (m notificationModel) toEntity() entities.Notification {
	n := entities.Notification{
		ID:              m.ID,
		UserID:          m.UserID,
		Type:            entities.NotificationType(m.Type),
		Status:          entities.NotificationStatus(m.Status),
		Payload:         append([]byte(nil), m.Payload...),
		InvitationScope: m.InvitationScope,
		SentAt:          m.SentAt.UTC(),
	}
	if m.InvitationID != nil {
		n.InvitationID = *m.InvitationID
	}
	return n
}

type processedEventModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash;not null"`
	ExpiresAt   time.Time `gorm:"column:expires_at;not null;index"`
}

func (processedEventModel) TableName() string {
	return "notification_processed_events"
}

type userModel struct {
	ID          int64  `gorm:"column:id;primaryKey"`
	Firstname   string `gorm:"column:firstname"`
	Lastname    string `gorm:"column:lastname"`
	Email       string `gorm:"column:email"`
	Username    string `gorm:"column:username"`
	AvatarColor string `gorm:"column:avatar_color"`
}

func (userModel) TableName() string {
	return "user_replicas"
}

func Migrate(db *gorm.DB) error {
	if err := outboxTable(db).Migrate(); err != nil {
		return err
	}
	return db.AutoMigrate(&notificationModel{}, &processedEventModel{}, &userModel{})
}

func outboxTable(db *gorm.DB) outbox.GormTable {
	return outbox.GormTable{DB: db, Table: "notification_outbox"}
}
