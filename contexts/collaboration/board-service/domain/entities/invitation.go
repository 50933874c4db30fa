package entities

import (
	"time"

	"kanvas/contracts/roles"
)

type InvitationScope string

const (
	ScopeWorkspace InvitationScope = "WORKSPACE"
	ScopeBoard     InvitationScope = "BOARD"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationDeclined InvitationStatus = "DECLINED"
	InvitationExpired  InvitationStatus = "EXPIRED"
)

// Invitation offers InviteeID a role in one workspace or board. Role holds a
// roles.WorkspaceRole or roles.BoardRole value depending on Scope.
type Invitation struct {
	ID          int64
	Scope       InvitationScope
	ContainerID int64
	InviterID   int64
	InviteeID   int64
	Role        string
	Status      InvitationStatus
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ExpiredAt reports whether a pending invitation has passed its expiry.
func (i Invitation) ExpiredAt(now time.Time) bool {
	return i.Status == InvitationPending && !now.Before(i.ExpiresAt)
}

func (i Invitation) ValidRole() bool {
	switch i.Scope {
	case ScopeWorkspace:
		role := roles.WorkspaceRole(i.Role)
		return role.Valid() && role != roles.WorkspaceOwner
	case ScopeBoard:
		return roles.BoardRole(i.Role).Valid()
	default:
		return false
	}
}
