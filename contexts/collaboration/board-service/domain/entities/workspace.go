package entities

import (
	"strings"
	"time"

	"kanvas/contracts/roles"
)

type Workspace struct {
	ID          int64
	Name        string
	Description string
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (w Workspace) Validate() bool {
	name := strings.TrimSpace(w.Name)
	return name != "" && len(name) <= 100
}

type WorkspaceMember struct {
	ID          int64
	WorkspaceID int64
	UserID      int64
	Role        roles.WorkspaceRole
	JoinedAt    time.Time
}
