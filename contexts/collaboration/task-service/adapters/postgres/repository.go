package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"kanvas/contexts/collaboration/task-service/domain/entities"
	domainerrors "kanvas/contexts/collaboration/task-service/domain/errors"
	"kanvas/contexts/collaboration/task-service/ports"
	platformdb "kanvas/internal/platform/db"
	"kanvas/internal/shared/outbox"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository implements the task-service ports on Postgres. Lock methods
// issue SELECT ... FOR UPDATE inside the transaction carried by ctx.
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

func (r *Repository) forUpdate(ctx context.Context) *gorm.DB {
	return r.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *Repository) CreateColumn(ctx context.Context, column entities.Column) (entities.Column, error) {
	row := columnModel{
		BoardID:    column.BoardID,
		Name:       column.Name,
		OrderIndex: column.OrderIndex,
		CreatedAt:  column.CreatedAt,
		UpdatedAt:  column.UpdatedAt,
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		return entities.Column{}, r.logError("task_repo_create_column_failed", err, "board_id", column.BoardID)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetColumn(ctx context.Context, columnID int64) (entities.Column, error) {
	return r.loadColumn(r.conn(ctx), columnID)
}

func (r *Repository) LockColumn(ctx context.Context, columnID int64) (entities.Column, error) {
	return r.loadColumn(r.forUpdate(ctx), columnID)
}

// columnScopeLockKey namespaces the advisory lock key from other users of
// pg_advisory_xact_lock.
const columnScopeLockKey = "kanvas.task.column_scope"

func (r *Repository) LockColumnScope(ctx context.Context, boardID int64) error {
	err := r.conn(ctx).Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, ?))", columnScopeLockKey, boardID).Error
	if err != nil {
		return r.logError("task_repo_lock_column_scope_failed", err, "board_id", boardID)
	}
	return nil
}

func (r *Repository) loadColumn(tx *gorm.DB, columnID int64) (entities.Column, error) {
	var row columnModel
	if err := tx.Where("id = ?", columnID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Column{}, domainerrors.ErrColumnNotFound
		}
		return entities.Column{}, r.logError("task_repo_get_column_failed", err, "column_id", columnID)
	}
	return row.toEntity(), nil
}

func (r *Repository) LockBoardColumns(ctx context.Context, boardID int64) ([]entities.Column, error) {
	return r.listColumns(r.forUpdate(ctx), boardID)
}

func (r *Repository) ListBoardColumns(ctx context.Context, boardID int64) ([]entities.Column, error) {
	return r.listColumns(r.conn(ctx), boardID)
}

func (r *Repository) listColumns(tx *gorm.DB, boardID int64) ([]entities.Column, error) {
	var rows []columnModel
	if err := tx.Where("board_id = ?", boardID).Order("order_index ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("task_repo_list_columns_failed", err, "board_id", boardID)
	}
	items := make([]entities.Column, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) MaxColumnOrder(ctx context.Context, boardID int64) (*float64, error) {
	var max *float64
	err := r.conn(ctx).Model(&columnModel{}).
		Where("board_id = ?", boardID).
		Select("MAX(order_index)").
		Scan(&max).Error
	if err != nil {
		return nil, r.logError("task_repo_max_column_order_failed", err, "board_id", boardID)
	}
	return max, nil
}

func (r *Repository) RenameColumn(ctx context.Context, columnID int64, name string, updatedAt time.Time) error {
	result := r.conn(ctx).Model(&columnModel{}).
		Where("id = ?", columnID).
		Updates(map[string]any{"name": name, "updated_at": updatedAt.UTC()})
	if result.Error != nil {
		return r.logError("task_repo_rename_column_failed", result.Error, "column_id", columnID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrColumnNotFound
	}
	return nil
}

func (r *Repository) UpdateColumnOrder(ctx context.Context, columnID int64, orderIndex float64) error {
	result := r.conn(ctx).Model(&columnModel{}).Where("id = ?", columnID).Update("order_index", orderIndex)
	if result.Error != nil {
		return r.logError("task_repo_update_column_order_failed", result.Error, "column_id", columnID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrColumnNotFound
	}
	return nil
}

func (r *Repository) DeleteColumn(ctx context.Context, columnID int64) error {
	tx := r.conn(ctx)
	taskIDs := tx.Model(&taskModel{}).Select("id").Where("column_id = ?", columnID)
	if err := tx.Where("task_id IN (?)", taskIDs).Delete(&assigneeModel{}).Error; err != nil {
		return r.logError("task_repo_delete_column_assignees_failed", err, "column_id", columnID)
	}
	if err := tx.Where("column_id = ?", columnID).Delete(&taskModel{}).Error; err != nil {
		return r.logError("task_repo_delete_column_tasks_failed", err, "column_id", columnID)
	}
	result := tx.Where("id = ?", columnID).Delete(&columnModel{})
	if result.Error != nil {
		return r.logError("task_repo_delete_column_failed", result.Error, "column_id", columnID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrColumnNotFound
	}
	return nil
}

func (r *Repository) CreateTask(ctx context.Context, task entities.Task) (entities.Task, error) {
	row := fromTask(task)
	row.ID = 0
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		return entities.Task{}, r.logError("task_repo_create_task_failed", err, "column_id", task.ColumnID)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetTask(ctx context.Context, taskID int64) (entities.Task, error) {
	return r.loadTask(r.conn(ctx), taskID)
}

func (r *Repository) LockTask(ctx context.Context, taskID int64) (entities.Task, error) {
	return r.loadTask(r.forUpdate(ctx), taskID)
}

func (r *Repository) loadTask(tx *gorm.DB, taskID int64) (entities.Task, error) {
	var row taskModel
	if err := tx.Where("id = ?", taskID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Task{}, domainerrors.ErrTaskNotFound
		}
		return entities.Task{}, r.logError("task_repo_get_task_failed", err, "task_id", taskID)
	}
	return row.toEntity(), nil
}

func (r *Repository) LockColumnTasks(ctx context.Context, columnID int64) ([]entities.Task, error) {
	var rows []taskModel
	err := r.forUpdate(ctx).Where("column_id = ?", columnID).Order("order_index ASC, id ASC").Find(&rows).Error
	if err != nil {
		return nil, r.logError("task_repo_lock_column_tasks_failed", err, "column_id", columnID)
	}
	return toTasks(rows), nil
}

func (r *Repository) ListBoardTasks(ctx context.Context, boardID int64) ([]entities.Task, error) {
	var rows []taskModel
	err := r.conn(ctx).Where("board_id = ?", boardID).Order("column_id ASC, order_index ASC, id ASC").Find(&rows).Error
	if err != nil {
		return nil, r.logError("task_repo_list_board_tasks_failed", err, "board_id", boardID)
	}
	return toTasks(rows), nil
}

func (r *Repository) MaxTaskOrder(ctx context.Context, columnID int64) (*float64, error) {
	var max *float64
	err := r.conn(ctx).Model(&taskModel{}).
		Where("column_id = ?", columnID).
		Select("MAX(order_index)").
		Scan(&max).Error
	if err != nil {
		return nil, r.logError("task_repo_max_task_order_failed", err, "column_id", columnID)
	}
	return max, nil
}

func (r *Repository) UpdateTask(ctx context.Context, task entities.Task) error {
	result := r.conn(ctx).Model(&taskModel{}).
		Where("id = ?", task.ID).
		Updates(map[string]any{
			"title":       task.Title,
			"description": task.Description,
			"deadline":    task.Deadline,
			"priority":    string(task.Priority),
			"status":      string(task.Status),
			"updated_at":  task.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("task_repo_update_task_failed", result.Error, "task_id", task.ID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrTaskNotFound
	}
	return nil
}

func (r *Repository) MoveTask(ctx context.Context, taskID int64, columnID int64, orderIndex float64) error {
	result := r.conn(ctx).Model(&taskModel{}).
		Where("id = ?", taskID).
		Updates(map[string]any{"column_id": columnID, "order_index": orderIndex})
	if result.Error != nil {
		return r.logError("task_repo_move_task_failed", result.Error, "task_id", taskID, "column_id", columnID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrTaskNotFound
	}
	return nil
}

func (r *Repository) DeleteTask(ctx context.Context, taskID int64) error {
	tx := r.conn(ctx)
	if err := tx.Where("task_id = ?", taskID).Delete(&assigneeModel{}).Error; err != nil {
		return r.logError("task_repo_delete_task_assignees_failed", err, "task_id", taskID)
	}
	result := tx.Where("id = ?", taskID).Delete(&taskModel{})
	if result.Error != nil {
		return r.logError("task_repo_delete_task_failed", result.Error, "task_id", taskID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrTaskNotFound
	}
	return nil
}

func (r *Repository) AddAssignee(ctx context.Context, assignee entities.Assignee) (entities.Assignee, error) {
	row := assigneeModel{
		TaskID:        assignee.TaskID,
		BoardMemberID: assignee.BoardMemberID,
		BoardID:       assignee.BoardID,
		UserID:        assignee.UserID,
		AssignedBy:    assignee.AssignedBy,
		AssignedAt:    assignee.AssignedAt,
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return entities.Assignee{}, domainerrors.ErrAlreadyAssigned
		}
		return entities.Assignee{}, r.logError("task_repo_add_assignee_failed", err,
			"task_id", assignee.TaskID,
			"board_member_id", assignee.BoardMemberID,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) FindAssignee(ctx context.Context, taskID int64, boardMemberID int64) (entities.Assignee, bool, error) {
	var row assigneeModel
	err := r.conn(ctx).Where("task_id = ? AND board_member_id = ?", taskID, boardMemberID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Assignee{}, false, nil
		}
		return entities.Assignee{}, false, r.logError("task_repo_find_assignee_failed", err, "task_id", taskID)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) DeleteAssignee(ctx context.Context, assigneeID int64) error {
	result := r.conn(ctx).Where("id = ?", assigneeID).Delete(&assigneeModel{})
	if result.Error != nil {
		return r.logError("task_repo_delete_assignee_failed", result.Error, "assignee_id", assigneeID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAssigneeNotFound
	}
	return nil
}

func (r *Repository) ListAssignees(ctx context.Context, taskIDs []int64) ([]entities.Assignee, error) {
	if len(taskIDs) == 0 {
		return []entities.Assignee{}, nil
	}
	var rows []assigneeModel
	if err := r.conn(ctx).Where("task_id IN ?", taskIDs).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("task_repo_list_assignees_failed", err, "task_count", len(taskIDs))
	}
	items := make([]entities.Assignee, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) DeleteBoardContent(ctx context.Context, boardIDs []int64) (int, error) {
	if len(boardIDs) == 0 {
		return 0, nil
	}
	tx := r.conn(ctx)
	removed := 0
	for _, model := range []any{&assigneeModel{}, &taskModel{}, &columnModel{}} {
		result := tx.Where("board_id IN ?", boardIDs).Delete(model)
		if result.Error != nil {
			return removed, r.logError("task_repo_delete_board_content_failed", result.Error, "board_ids", boardIDs)
		}
		removed += int(result.RowsAffected)
	}
	return removed, nil
}

func (r *Repository) DeleteMemberAssignments(ctx context.Context, boardID int64, boardMemberID int64) (int, error) {
	result := r.conn(ctx).
		Where("board_id = ? AND board_member_id = ?", boardID, boardMemberID).
		Delete(&assigneeModel{})
	if result.Error != nil {
		return 0, r.logError("task_repo_delete_member_assignments_failed", result.Error,
			"board_id", boardID,
			"board_member_id", boardMemberID,
		)
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
		return r.logError("task_repo_upsert_user_failed", err, "user_id", user.ID)
	}
	return nil
}

func (r *Repository) GetUsers(ctx context.Context, userIDs []int64) (map[int64]entities.User, error) {
	items := make(map[int64]entities.User, len(userIDs))
	if len(userIDs) == 0 {
		return items, nil
	}
	var rows []userModel
	if err := r.conn(ctx).Where("id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, r.logError("task_repo_get_users_failed", err, "user_count", len(userIDs))
	}
	for _, row := range rows {
		items[row.ID] = entities.User{
			ID:          row.ID,
			Firstname:   row.Firstname,
			Lastname:    row.Lastname,
			Email:       row.Email,
			Username:    row.Username,
			AvatarColor: row.AvatarColor,
		}
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, topic string, event ports.EventEnvelope) error {
	if err := outboxTable(r.db).Append(ctx, topic, event); err != nil {
		return r.logError("task_repo_append_outbox_failed", err, "event_type", event.EventType)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error) {
	items, err := outboxTable(r.db).ListPendingOutbox(ctx, limit)
	if err != nil {
		return nil, r.logError("task_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	return items, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	if err := outboxTable(r.db).MarkOutboxSent(ctx, outboxID, sentAt); err != nil {
		return r.logError("task_repo_mark_outbox_sent_failed", err, "outbox_id", outboxID)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "collaboration/task-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("task repository operation failed", fields...)
	return err
}

func toTasks(rows []taskModel) []entities.Task {
	items := make([]entities.Task, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
