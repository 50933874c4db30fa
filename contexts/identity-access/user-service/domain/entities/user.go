package entities

import (
	"net/mail"
	"strings"
	"time"
)

const MinPasswordLength = 8

type User struct {
	ID           int64
	Firstname    string
	Lastname     string
	Email        string
	Username     string
	PasswordHash string
	AvatarColor  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail lowercases and trims an address; lookups and the unique
// constraint both use the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidEmail(email string) bool {
	address, err := mail.ParseAddress(email)
	return err == nil && address.Address == email
}

func (u User) Validate() bool {
	return strings.TrimSpace(u.Firstname) != "" &&
		strings.TrimSpace(u.Lastname) != "" &&
		strings.TrimSpace(u.Username) != "" &&
		ValidEmail(u.Email)
}
