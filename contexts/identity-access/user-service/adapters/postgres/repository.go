package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"kanvas/contexts/identity-access/user-service/domain/entities"
	domainerrors "kanvas/contexts/identity-access/user-service/domain/errors"
	"kanvas/contexts/identity-access/user-service/ports"
	platformdb "kanvas/internal/platform/db"
	"kanvas/internal/shared/outbox"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
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

func (r *Repository) CreateUser(ctx context.Context, user entities.User) (entities.User, error) {
	row := userModel{
		Firstname:    user.Firstname,
		Lastname:     user.Lastname,
		Email:        user.Email,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		AvatarColor:  user.AvatarColor,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "username") {
				return entities.User{}, domainerrors.ErrUsernameTaken
			}
			return entities.User{}, domainerrors.ErrEmailTaken
		}
		return entities.User{}, r.logError("user_repo_create_failed", err, "username", user.Username)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetUser(ctx context.Context, userID int64) (entities.User, error) {
	return r.first(ctx, "user_repo_get_failed", "id = ?", userID)
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (entities.User, error) {
	return r.first(ctx, "user_repo_find_by_email_failed", "email = ?", email)
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (entities.User, bool, error) {
	user, err := r.first(ctx, "user_repo_find_by_username_failed", "username = ?", username)
	if errors.Is(err, domainerrors.ErrUserNotFound) {
		return entities.User{}, false, nil
	}
	if err != nil {
		return entities.User{}, false, err
	}
	return user, true, nil
}

func (r *Repository) first(ctx context.Context, event string, query string, arg any) (entities.User, error) {
	var row userModel
	if err := r.conn(ctx).Where(query, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, r.logError(event, err)
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateUser(ctx context.Context, user entities.User) error {
	result := r.conn(ctx).Model(&userModel{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"firstname":  user.Firstname,
			"lastname":   user.Lastname,
			"updated_at": user.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("user_repo_update_failed", result.Error, "user_id", user.ID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrUserNotFound
	}
	return nil
}

func (r *Repository) SearchUsers(ctx context.Context, query string, limit int) ([]entities.User, error) {
	pattern := "%" + strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(strings.ToLower(query)) + "%"
	var rows []userModel
	err := r.conn(ctx).
		Where("LOWER(email) LIKE ? OR LOWER(username) LIKE ?", pattern, pattern).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("user_repo_search_failed", err)
	}
	items := make([]entities.User, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, topic string, event ports.EventEnvelope) error {
	if err := outboxTable(r.db).Append(ctx, topic, event); err != nil {
		return r.logError("user_repo_append_outbox_failed", err, "event_type", event.EventType)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error) {
	items, err := outboxTable(r.db).ListPendingOutbox(ctx, limit)
	if err != nil {
		return nil, r.logError("user_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	return items, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	if err := outboxTable(r.db).MarkOutboxSent(ctx, outboxID, sentAt); err != nil {
		return r.logError("user_repo_mark_outbox_sent_failed", err, "outbox_id", outboxID)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := append([]any{
		"event", event,
		"module", "identity-access/user-service",
		"layer", "adapter",
		"error", err.Error(),
	}, attrs...)
	r.logger.Error("user repository operation failed", fields...)
	return err
}
