package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	platformdb "kanvas/internal/platform/db"
	"kanvas/internal/shared/events"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is the row shape of every service outbox table.
type Record struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	Topic        string     `gorm:"column:topic;not null"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at;index"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

// GormTable stores outbox rows in one named table. Writes join the
// transaction carried by ctx, so an envelope commits with the state change
// that produced it.
type GormTable struct {
	DB    *gorm.DB
	Table string
}

func (t GormTable) Migrate() error {
	return t.DB.Table(t.Table).AutoMigrate(&Record{})
}

func (t GormTable) conn(ctx context.Context) *gorm.DB {
	return platformdb.Conn(ctx, t.DB).Table(t.Table)
}

func (t GormTable) Append(ctx context.Context, topic string, env events.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode outbox envelope: %w", err)
	}
	row := Record{
		OutboxID:     env.EventID,
		Topic:        topic,
		EventType:    env.EventType,
		PartitionKey: env.Key,
		Payload:      payload,
		Status:       StatusPending,
		CreatedAt:    env.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	err = t.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("insert %s row %s: %w", t.Table, row.OutboxID, err)
	}
	return nil
}

func (t GormTable) ListPendingOutbox(ctx context.Context, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []Record
	if err := t.conn(ctx).
		Where("status = ?", StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list pending %s: %w", t.Table, err)
	}
	items := make([]Message, 0, len(rows))
	for _, row := range rows {
		items = append(items, Message{
			ID:        row.OutboxID,
			Topic:     row.Topic,
			EventType: row.EventType,
			Key:       row.PartitionKey,
			Payload:   append([]byte(nil), row.Payload...),
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (t GormTable) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	sentAt = sentAt.UTC()
	err := t.conn(ctx).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":       StatusSent,
			"published_at": &sentAt,
		}).Error
	if err != nil {
		return fmt.Errorf("mark %s row %s sent: %w", t.Table, outboxID, err)
	}
	return nil
}
