package postgresadapter

import (
	"time"

	"kanvas/contexts/collaboration/board-service/domain/entities"
	"kanvas/contracts/roles"

	"kanvas/internal/shared/outbox"

	"gorm.io/gorm"
)

type workspaceModel struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	CreatedBy   int64     `gorm:"column:created_by"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (workspaceModel) TableName() string {
	return "workspaces"
}

func (m workspaceModel) toEntity() entities.Workspace {
	return entities.Workspace{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type workspaceMemberModel struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	WorkspaceID int64     `gorm:"column:workspace_id;uniqueIndex:ux_workspace_members_user"`
	UserID      int64     `gorm:"column:user_id;uniqueIndex:ux_workspace_members_user;index"`
	Role        string    `gorm:"column:role;not null"`
	JoinedAt    time.Time `gorm:"column:joined_at"`
}

func (workspaceMemberModel) TableName() string {
	return "workspace_members"
}

func (m workspaceMemberModel) toEntity() entities.WorkspaceMember {
	return entities.WorkspaceMember{
		ID:          m.ID,
		WorkspaceID: m.WorkspaceID,
		UserID:      m.UserID,
		Role:        roles.WorkspaceRole(m.Role),
		JoinedAt:    m.JoinedAt.UTC(),
	}
}

type boardModel struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	WorkspaceID int64     `gorm:"column:workspace_id;uniqueIndex:ux_boards_workspace_name"`
	Name        string    `gorm:"column:name;uniqueIndex:ux_boards_workspace_name;not null"`
	Description string    `gorm:"column:description"`
	Visibility  string    `gorm:"column:visibility;not null;default:PRIVATE"`
	CreatedBy   int64     `gorm:"column:created_by"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (boardModel) TableName() string {
	return "boards"
}

func boardModelFromEntity(board entities.Board) boardModel {
	return boardModel{
		ID:          board.ID,
		WorkspaceID: board.WorkspaceID,
		Name:        board.Name,
		Description: board.Description,
		Visibility:  string(board.Visibility),
		CreatedBy:   board.CreatedBy,
		CreatedAt:   board.CreatedAt.UTC(),
		UpdatedAt:   board.UpdatedAt.UTC(),
	}
}

func (m boardModel) toEntity() entities.Board {
	return entities.Board{
		ID:          m.ID,
		WorkspaceID: m.WorkspaceID,
		Name:        m.Name,
		Description: m.Description,
		Visibility:  entities.Visibility(m.Visibility),
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type boardMemberModel struct {
	ID       int64     `gorm:"column:id;primaryKey;autoIncrement"`
	BoardID  int64     `gorm:"column:board_id;uniqueIndex:ux_board_members_user"`
	UserID   int64     `gorm:"column:user_id;uniqueIndex:ux_board_members_user;index"`
	Role     string    `gorm:"column:role;not null"`
	JoinedAt time.Time `gorm:"column:joined_at"`
}

func (boardMemberModel) TableName() string {
	return "board_members"
}

func (m boardMemberModel) toEntity() entities.BoardMember {
	return entities.BoardMember{
		ID:       m.ID,
		BoardID:  m.BoardID,
		UserID:   m.UserID,
		Role:     roles.BoardRole(m.Role),
		JoinedAt: m.JoinedAt.UTC(),
	}
}

// invitationModel allows one PENDING row per invitee and container through a
// partial unique index.
type invitationModel struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Scope       string    `gorm:"column:scope;not null;uniqueIndex:ux_invitations_pending,where:status = 'PENDING'"`
	ContainerID int64     `gorm:"column:container_id;uniqueIndex:ux_invitations_pending,where:status = 'PENDING'"`
	InviterID   int64     `gorm:"column:inviter_id"`
	InviteeID   int64     `gorm:"column:invitee_id;index;uniqueIndex:ux_invitations_pending,where:status = 'PENDING'"`
	Role        string    `gorm:"column:role;not null"`
	Status      string    `gorm:"column:status;not null"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (invitationModel) TableName() string {
	return "invitations"
}

func invitationModelFromEntity(invitation entities.Invitation) invitationModel {
	return invitationModel{
		ID:          invitation.ID,
		Scope:       string(invitation.Scope),
		ContainerID: invitation.ContainerID,
		InviterID:   invitation.InviterID,
		InviteeID:   invitation.InviteeID,
		Role:        invitation.Role,
		Status:      string(invitation.Status),
		ExpiresAt:   invitation.ExpiresAt.UTC(),
		CreatedAt:   invitation.CreatedAt.UTC(),
		UpdatedAt:   invitation.UpdatedAt.UTC(),
	}
}

func (m invitationModel) toEntity() entities.Invitation {
	return entities.Invitation{
		ID:          m.ID,
		Scope:       entities.InvitationScope(m.Scope),
		ContainerID: m.ContainerID,
		InviterID:   m.InviterID,
		InviteeID:   m.InviteeID,
		Role:        m.Role,
		Status:      entities.InvitationStatus(m.Status),
		ExpiresAt:   m.ExpiresAt.UTC(),
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type userModel struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	Firstname   string `gorm:"column:firstname"`
	Lastname    string `gorm:"column:lastname"`
	Email       string `gorm:"column:email"`
	Username    string `gorm:"column:username"`
	AvatarColor string `gorm:"column:avatar_color"`
}

func (userModel) TableName() string {
	return "user_replicas"
}

func (m userModel) toEntity() entities.User {
	return entities.User{
		ID:          m.ID,
		Firstname:   m.Firstname,
		Lastname:    m.Lastname,
		Email:       m.Email,
		Username:    m.Username,
		AvatarColor: m.AvatarColor,
	}
}

// Migrate creates or updates the board-service schema.
func Migrate(db *gorm.DB) error {
	if err := outboxTable(db).Migrate(); err != nil {
		return err
	}
	return db.AutoMigrate(
		&workspaceModel{},
		&workspaceMemberModel{},
		&boardModel{},
		&boardMemberModel{},
		&invitationModel{},
		&userModel{},
	)
}

func outboxTable(db *gorm.DB) outbox.GormTable {
	return outbox.GormTable{DB: db, Table: "board_outbox"}
}
