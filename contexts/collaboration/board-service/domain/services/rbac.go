package services

import (
	"kanvas/contexts/collaboration/board-service/domain/entities"
	"kanvas/contracts/roles"
)

// BoardAccess is one principal's resolved standing on one board. Empty roles
// mean no membership.
type BoardAccess struct {
	Principal     int64
	Board         entities.Board
	BoardRole     roles.BoardRole
	WorkspaceRole roles.WorkspaceRole
}

func HasBoardRole(a BoardAccess, required roles.BoardRole) bool {
	return a.BoardRole.AtLeast(required)
}

// CanViewBoard admits board members and, on WORKSPACE_PUBLIC boards, any
// member of the parent workspace.
func CanViewBoard(a BoardAccess) bool {
	if HasBoardRole(a, roles.BoardViewer) {
		return true
	}
	return a.Board.Visibility == entities.VisibilityWorkspacePublic && a.WorkspaceRole.Valid()
}

// EffectiveBoardRole is the role the edge injects for a principal: the
// membership role, or VIEWER through workspace visibility.
func EffectiveBoardRole(a BoardAccess) (roles.BoardRole, bool) {
	if a.BoardRole.Valid() {
		return a.BoardRole, true
	}
	if CanViewBoard(a) {
		return roles.BoardViewer, true
	}
	return "", false
}

// CanModerateBoard decides whether the principal may change or remove
// target. Workspace OWNER and ADMIN moderate every member of the workspace's
// boards without holding a board role; otherwise the principal must be a
// board ADMIN and the target strictly lower. The principal must belong to
// the parent workspace either way.
func CanModerateBoard(a BoardAccess, target entities.BoardMember) bool {
	if target.BoardID != a.Board.ID || !target.Role.Valid() || !a.WorkspaceRole.Valid() {
		return false
	}
	if a.WorkspaceRole.AtLeast(roles.WorkspaceAdmin) {
		return true
	}
	return a.BoardRole == roles.BoardAdmin && roles.Outranks(a.BoardRole, target.Role)
}

func CanDeleteBoard(a BoardAccess) bool {
	return HasBoardRole(a, roles.BoardAdmin) || a.WorkspaceRole.AtLeast(roles.WorkspaceAdmin)
}

type WorkspaceAccess struct {
	Principal   int64
	WorkspaceID int64
	Role        roles.WorkspaceRole
}

func HasWorkspaceRole(a WorkspaceAccess, required roles.WorkspaceRole) bool {
	return a.Role.AtLeast(required)
}

// CanModerateWorkspace lets an OWNER moderate anyone and an ADMIN moderate
// strictly lower members.
func CanModerateWorkspace(a WorkspaceAccess, target entities.WorkspaceMember) bool {
	if target.WorkspaceID != a.WorkspaceID || !target.Role.Valid() || !a.Role.Valid() {
		return false
	}
	if a.Role == roles.WorkspaceOwner {
		return true
	}
	return a.Role.AtLeast(roles.WorkspaceAdmin) && roles.Outranks(a.Role, target.Role)
}

func CanDeleteWorkspace(a WorkspaceAccess) bool {
	return a.Role == roles.WorkspaceOwner
}

// RetainsBoardAdmin reports whether moving target to newRole keeps an admin
// on the board. An empty newRole means removal.
func RetainsBoardAdmin(target entities.BoardMember, newRole roles.BoardRole, adminCount int) bool {
	if target.Role != roles.BoardAdmin || newRole == roles.BoardAdmin {
		return true
	}
	return adminCount > 1
}

// RetainsWorkspaceOwner is RetainsBoardAdmin for workspace owners.
func RetainsWorkspaceOwner(target entities.WorkspaceMember, newRole roles.WorkspaceRole, ownerCount int) bool {
	if target.Role != roles.WorkspaceOwner || newRole == roles.WorkspaceOwner {
		return true
	}
	return ownerCount > 1
}
