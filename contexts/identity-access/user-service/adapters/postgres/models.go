package postgresadapter

import (
	"time"

	"kanvas/contexts/identity-access/user-service/domain/entities"
	"kanvas/internal/shared/outbox"

	"gorm.io/gorm"
)

type userModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Firstname    string    `gorm:"column:firstname;not null"`
	Lastname     string    `gorm:"column:lastname;not null"`
	Email        string    `gorm:"column:email;not null;uniqueIndex:ux_users_email"`
	Username     string    `gorm:"column:username;not null;uniqueIndex:ux_users_username"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	AvatarColor  string    `gorm:"column:avatar_color"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string {
	return "users"
}

func (m userModel) toEntity() entities.User {
	return entities.User{
		ID:           m.ID,
		Firstname:    m.Firstname,
		Lastname:     m.Lastname,
		Email:        m.Email,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		AvatarColor:  m.AvatarColor,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

func Migrate(db *gorm.DB) error {
	if err := outboxTable(db).Migrate(); err != nil {
		return err
	}
	return db.AutoMigrate(&userModel{})
}

func outboxTable(db *gorm.DB) outbox.GormTable {
	return outbox.GormTable{DB: db, Table: "user_outbox"}
}
