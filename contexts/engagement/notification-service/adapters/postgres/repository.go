package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"kanvas/contexts/engagement/notification-service/domain/entities"
	domainerrors "kanvas/contexts/engagement/notification-service/domain/errors"
	"kanvas/contexts/engagement/notification-service/ports"
	platformdb "kanvas/internal/platform/db"
	"kanvas/internal/shared/outbox"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) conn(ctx context.Context) *gorm.DB {
	return platformdb.Conn(ctx, r.db)
}

func (r *Repository) CreateNotification(ctx context.Context, notification entities.Notification) (entities.Notification, error) {
	row := fromNotification(notification)
	row.ID = 0
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		return entities.Notification{}, r.logError("notification_repo_create_failed", err, "user_id", notification.UserID)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetNotification(ctx context.Context, notificationID int64) (entities.Notification, error) {
	var row notificationModel
	err := r.conn(ctx).Where("id = ?", notificationID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.Notification{}, domainerrors.ErrNotificationNotFound
	}
	if err != nil {
		return entities.Notification{}, r.logError("notification_repo_get_failed", err, "notification_id", notificationID)
	}
	return row.toEntity(), nil
}

func (r *Repository) FindInvitationNotification(ctx context.Context, userID int64, invitationID int64, scope string) (entities.Notification, bool, error) {
	var rows []notificationModel
	err := r.conn(ctx).
		Where("user_id = ? AND type = ? AND invitation_id = ? AND invitation_scope = ?",
			userID, string(entities.TypeInvitation), invitationID, scope).
		Order("id DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return entities.Notification{}, false, r.logError("notification_repo_find_invitation_failed", err, "invitation_id", invitationID)
	}
	if len(rows) == 0 {
		return entities.Notification{}, false, nil
	}
	return rows[0].toEntity(), true, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, notificationID int64, status entities.NotificationStatus) error {
	result := r.conn(ctx).Model(&notificationModel{}).
		Where("id = ?", notificationID).
		Update("status", string(status))
	if result.Error != nil {
		return r.logError("notification_repo_update_status_failed", result.Error, "notification_id", notificationID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotificationNotFound
	}
	return nil
}

func (r *Repository) ListVisible(ctx context.Context, userID int64) ([]entities.Notification, error) {
	var rows []notificationModel
	err := r.conn(ctx).
		Where("user_id = ? AND status <> ?", userID, string(entities.StatusDismissed)).
		Order("sent_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("notification_repo_list_failed", err, "user_id", userID)
	}
	items := make([]entities.Notification, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CountUnread(ctx context.Context, userID int64) (int, error) {
	var count int64
	err := r.conn(ctx).Model(&notificationModel{}).
		Where("user_id = ? AND status = ?", userID, string(entities.StatusUnread)).
		Count(&count).Error
	if err != nil {
		return 0, r.logError("notification_repo_count_failed", err, "user_id", userID)
	}
	return int(count), nil
}

func (r *Repository) ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error) {
	row := processedEventModel{EventID: eventID, PayloadHash: payloadHash, ExpiresAt: expiresAt.UTC()}
	result := r.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return false, r.logError("notification_repo_reserve_failed", result.Error, "event_id", eventID)
	}
	if result.RowsAffected == 1 {
		return false, nil
	}

	var existing processedEventModel
	if err := r.conn(ctx).Where("event_id = ?", eventID).First(&existing).Error; err != nil {
		return false, r.logError("notification_repo_reserve_lookup_failed", err, "event_id", eventID)
	}
	if existing.PayloadHash != payloadHash {
		return false, domainerrors.ErrDedupConflict
	}
	return true, nil
}

func (r *Repository) PruneEvents(ctx context.Context, before time.Time) (int, error) {
	result := r.conn(ctx).Where("expires_at < ?", before.UTC()).Delete(&processedEventModel{})
	if result.Error != nil {
		return 0, r.logError("notification_repo_prune_failed", result.Error)
	}
	return int(result.RowsAffected), nil
}

func (r *Repository) UpsertUser(ctx context.Context, user entities.User) error {
	row := userModel{
		ID:          user.ID,
		Firstname:   user.Firstname,
		Lastname:    user.Lastname,
		Email:       user.Email,
		Username:    user.Username,
		AvatarColor: user.AvatarColor,
	}
	err := r.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"firstname", "lastname", "email", "username", "avatar_color"}),
	}).Create(&row).Error
	if err != nil {
		return r.logError("notification_repo_upsert_user_failed", err, "user_id", user.ID)
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, userID int64) (entities.User, bool, error) {
	var rows []userModel
	if err := r.conn(ctx).Where("id = ?", userID).Limit(1).Find(&rows).Error; err != nil {
		return entities.User{}, false, r.logError("notification_repo_get_user_failed", err, "user_id", userID)
	}
	if len(rows) == 0 {
		return entities.User{}, false, nil
	}
	row := rows[0]
	return entities.User{
		ID:          row.ID,
		Firstname:   row.Firstname,
		Lastname:    row.Lastname,
		Email:       row.Email,
		Username:    row.Username,
		AvatarColor: row.AvatarColor,
	}, true, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, topic string, event ports.EventEnvelope) error {
	return outboxTable(r.db).Append(ctx, topic, event)
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error) {
	return outboxTable(r.db).ListPendingOutbox(ctx, limit)
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	return outboxTable(r.db).MarkOutboxSent(ctx, outboxID, sentAt)
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	args := append([]any{
		"event", event,
		"module", "engagement/notification-service",
		"layer", "adapter",
		"error", err.Error(),
	}, attrs...)
	r.logger.Error("notification repository failure", args...)
	return err
}
