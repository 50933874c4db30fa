package entities

import (
	"strings"
	"time"

	"kanvas/contracts/roles"
)

type Visibility string

const (
	VisibilityPrivate         Visibility = "PRIVATE"
	VisibilityWorkspacePublic Visibility = "WORKSPACE_PUBLIC"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPrivate || v == VisibilityWorkspacePublic
}

func ParseVisibility(raw string) (Visibility, bool) {
	if strings.TrimSpace(raw) == "" {
		return VisibilityPrivate, true
	}
	v := Visibility(strings.ToUpper(strings.TrimSpace(raw)))
	return v, v.Valid()
}

type Board struct {
	ID          int64
	WorkspaceID int64
	Name        string
	Description string
	Visibility  Visibility
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (b Board) Validate() bool {
	name := strings.TrimSpace(b.Name)
	return b.WorkspaceID > 0 && name != "" && len(name) <= 100 && b.Visibility.Valid()
}

type BoardMember struct {
	ID       int64
	BoardID  int64
	UserID   int64
	Role     roles.BoardRole
	JoinedAt time.Time
}
