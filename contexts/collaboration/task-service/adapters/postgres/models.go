package postgresadapter

import (
	"time"

	"kanvas/contexts/collaboration/task-service/domain/entities"
	"kanvas/internal/shared/outbox"

	"gorm.io/gorm"
)

type columnModel struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	BoardID    int64     `gorm:"column:board_id;index"`
	Name       string    `gorm:"column:name;not null"`
	OrderIndex float64   `gorm:"column:order_index;not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (columnModel) TableName() string {
	return "board_columns"
}

func (m columnModel) toEntity() entities.Column {
	return entities.Column{
		ID:         m.ID,
		BoardID:    m.BoardID,
		Name:       m.Name,
		OrderIndex: m.OrderIndex,
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}

type taskModel struct {
	ID          int64      `gorm:"column:id;primaryKey;autoIncrement"`
	BoardID     int64      `gorm:"column:board_id;index"`
	ColumnID    int64      `gorm:"column:column_id;index"`
	Title       string     `gorm:"column:title;not null"`
	Description string     `gorm:"column:description;type:text"`
	Deadline    *time.Time `gorm:"column:deadline"`
	Priority    string     `gorm:"column:priority"`
	Status      string     `gorm:"column:status;not null"`
	OrderIndex  float64    `gorm:"column:order_index;not null"`
	CreatedBy   int64      `gorm:"column:created_by"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (taskModel) TableName() string {
	return "tasks"
}

func (m taskModel) toEntity() entities.Task {
	task := entities.Task{
		ID:          m.ID,
		BoardID:     m.BoardID,
		ColumnID:    m.ColumnID,
		Title:       m.Title,
		Description: m.Description,
		Priority:    entities.Priority(m.Priority),
		Status:      entities.Status(m.Status),
		OrderIndex:  m.OrderIndex,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
	if m.Deadline != nil {
		deadline := m.Deadline.UTC()
		task.Deadline = &deadline
	}
	return task
}

func fromTask(task entities.Task) taskModel {
	return taskModel{
		ID:          task.ID,
		BoardID:     task.BoardID,
		ColumnID:    task.ColumnID,
		Title:       task.Title,
		Description: task.Description,
		Deadline:    task.Deadline,
		Priority:    string(task.Priority),
		Status:      string(task.Status),
		OrderIndex:  task.OrderIndex,
		CreatedBy:   task.CreatedBy,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

type assigneeModel struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	TaskID        int64     `gorm:"column:task_id;uniqueIndex:ux_task_assignees_member"`
	BoardMemberID int64     `gorm:"column:board_member_id;uniqueIndex:ux_task_assignees_member"`
	BoardID       int64     `gorm:"column:board_id;index"`
	UserID        int64     `gorm:"column:user_id"`
	AssignedBy    int64     `gorm:"column:assigned_by"`
	AssignedAt    time.Time `gorm:"column:assigned_at"`
}

func (assigneeModel) TableName() string {
	return "task_assignees"
}

func (m assigneeModel) toEntity() entities.Assignee {
	return entities.Assignee{
		ID:            m.ID,
		TaskID:        m.TaskID,
		BoardID:       m.BoardID,
		BoardMemberID: m.BoardMemberID,
		UserID:        m.UserID,
		AssignedBy:    m.AssignedBy,
		AssignedAt:    m.AssignedAt.UTC(),
	}
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
	return db.AutoMigrate(&columnModel{}, &taskModel{}, &assigneeModel{}, &userModel{})
}

func outboxTable(db *gorm.DB) outbox.GormTable {
	return outbox.GormTable{DB: db, Table: "task_outbox"}
}
