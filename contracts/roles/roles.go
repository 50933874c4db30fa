// Package roles holds the ranked role enums shared by every Kanvas service.
//
// Ranks are explicit integers; an unknown or empty role ranks 0 and never
// satisfies a requirement.
package roles

import "strings"

type WorkspaceRole string

const (
	WorkspaceOwner  WorkspaceRole = "OWNER"
	WorkspaceAdmin  WorkspaceRole = "ADMIN"
	WorkspaceMember WorkspaceRole = "MEMBER"
)

func (r WorkspaceRole) Rank() int {
	switch r {
	case WorkspaceOwner:
		return 3
	case WorkspaceAdmin:
		return 2
	case WorkspaceMember:
		return 1
	default:
		return 0
	}
}

func (r WorkspaceRole) Valid() bool {
	return r.Rank() > 0
}

func (r WorkspaceRole) AtLeast(required WorkspaceRole) bool {
	return Sufficient(r, required)
}

type BoardRole string

const (
	BoardAdmin  BoardRole = "ADMIN"
	BoardEditor BoardRole = "EDITOR"
	BoardViewer BoardRole = "VIEWER"
)

func (r BoardRole) Rank() int {
	switch r {
	case BoardAdmin:
		return 3
	case BoardEditor:
		return 2
	case BoardViewer:
		return 1
	default:
		return 0
	}
}

func (r BoardRole) Valid() bool {
	return r.Rank() > 0
}

func (r BoardRole) AtLeast(required BoardRole) bool {
	return Sufficient(r, required)
}

// Ranked is satisfied by both role enums.
type Ranked interface {
	Rank() int
}

// Sufficient reports whether held meets or exceeds required.
func Sufficient[R Ranked](held R, required R) bool {
	return held.Rank() > 0 && required.Rank() > 0 && held.Rank() >= required.Rank()
}

// Outranks reports whether actor is strictly above target.
func Outranks[R Ranked](actor R, target R) bool {
	return actor.Rank() > 0 && actor.Rank() > target.Rank()
}

func ParseWorkspaceRole(raw string) (WorkspaceRole, bool) {
	role := WorkspaceRole(strings.ToUpper(strings.TrimSpace(raw)))
	return role, role.Valid()
}

func ParseBoardRole(raw string) (BoardRole, bool) {
	role := BoardRole(strings.ToUpper(strings.TrimSpace(raw)))
	return role, role.Valid()
}
