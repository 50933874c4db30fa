package v1

const (
	TopicBoard        = "board.events"
	TopicTask         = "task.events"
	TopicInvitation   = "invitation.events"
	TopicNotification = "notification.events"
	TopicWorkspace    = "workspace.events"
	TopicUser         = "user.events"
)

const (
	TypeBoardDeleted       = "BOARD_DELETED"
	TypeBoardUpdated       = "BOARD_UPDATED"
	TypeBoardMemberJoined  = "MEMBER_JOINED"
	TypeBoardMemberLeft    = "MEMBER_LEFT"
	TypeBoardMemberRemoved = "MEMBER_REMOVED"
	TypeBoardRoleChanged   = "ROLE_CHANGED"

	TypeWorkspaceDeleted = "WORKSPACE_DELETED"

	TypeColumnCreated       = "COLUMN_CREATED"
	TypeColumnUpdated       = "COLUMN_UPDATED"
	TypeColumnMoved         = "COLUMN_MOVED"
	TypeColumnDeleted       = "COLUMN_DELETED"
	TypeTaskCreated         = "TASK_CREATED"
	TypeTaskUpdated         = "TASK_UPDATED"
	TypeTaskMoved           = "TASK_MOVED"
	TypeTaskDeleted         = "TASK_DELETED"
	TypeTaskAssigned        = "TASK_ASSIGNED"
	TypeTaskUnassigned      = "TASK_UNASSIGNED"
	TypePositionsRebalanced = "POSITIONS_REBALANCED"

	TypeInvitationCreated = "INVITATION_CREATED"
	TypeInvitationUpdated = "INVITATION_UPDATED"

	TypeNotificationCreated = "NOTIFICATION_CREATED"
	TypeNotificationUpdated = "NOTIFICATION_UPDATED"

	TypeUserCreated = "USER_CREATED"
	TypeUserUpdated = "USER_UPDATED"
)

// Invitation scopes as carried in invitation payloads.
const (
	ScopeWorkspace = "WORKSPACE"
	ScopeBoard     = "BOARD"
)

// Rebalance scopes.
const (
	RebalanceColumns = "COLUMNS"
	RebalanceTasks   = "TASKS"
)
