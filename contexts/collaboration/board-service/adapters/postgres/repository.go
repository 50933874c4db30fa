package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"kanvas/contexts/collaboration/board-service/domain/entities"
	domainerrors "kanvas/contexts/collaboration/board-service/domain/errors"
	"kanvas/contexts/collaboration/board-service/ports"
	"kanvas/contracts/roles"
	platformdb "kanvas/internal/platform/db"
	"kanvas/internal/shared/outbox"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository implements the board-service persistence ports on Postgres.
// Every method joins the transaction carried by ctx when there is one.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) conn(ctx context.Context) *gorm.DB {
	return platformdb.Conn(ctx, r.db)
}

func (r *Repository) forUpdate(ctx context.Context) *gorm.DB {
	return r.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *Repository) GetWorkspace(ctx context.Context, workspaceID int64) (entities.Workspace, error) {
	return r.loadWorkspace(r.conn(ctx), workspaceID)
}

func (r *Repository) LockWorkspace(ctx context.Context, workspaceID int64) (entities.Workspace, error) {
	return r.loadWorkspace(r.forUpdate(ctx), workspaceID)
}

func (r *Repository) loadWorkspace(tx *gorm.DB, workspaceID int64) (entities.Workspace, error) {
	var row workspaceModel
	if err := tx.Where("id = ?", workspaceID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Workspace{}, domainerrors.ErrWorkspaceNotFound
		}
		return entities.Workspace{}, r.logError("board_repo_get_workspace_failed", err, "workspace_id", workspaceID)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetBoard(ctx context.Context, boardID int64) (entities.Board, error) {
	return r.loadBoard(r.conn(ctx), boardID)
}

func (r *Repository) LockBoard(ctx context.Context, boardID int64) (entities.Board, error) {
	return r.loadBoard(r.forUpdate(ctx), boardID)
}

func (r *Repository) loadBoard(tx *gorm.DB, boardID int64) (entities.Board, error) {
	var row boardModel
	if err := tx.Where("id = ?", boardID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Board{}, domainerrors.ErrBoardNotFound
		}
		return entities.Board{}, r.logError("board_repo_get_board_failed", err, "board_id", boardID)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetBoards(ctx context.Context, boardIDs []int64) ([]entities.Board, error) {
	if len(boardIDs) == 0 {
		return []entities.Board{}, nil
	}
	var rows []boardModel
	if err := r.conn(ctx).Where("id IN ?", boardIDs).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("board_repo_get_boards_failed", err, "board_count", len(boardIDs))
	}
	return toBoards(rows), nil
}

func (r *Repository) FindBoardMember(ctx context.Context, boardID int64, userID int64) (entities.BoardMember, bool, error) {
	var row boardMemberModel
	err := r.conn(ctx).Where("board_id = ? AND user_id = ?", boardID, userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.BoardMember{}, false, nil
		}
		return entities.BoardMember{}, false, r.logError("board_repo_find_board_member_failed", err,
			"board_id", boardID,
			"user_id", userID,
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) GetBoardMember(ctx context.Context, memberID int64) (entities.BoardMember, error) {
	var row boardMemberModel
	if err := r.conn(ctx).Where("id = ?", memberID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.BoardMember{}, domainerrors.ErrMemberNotFound
		}
		return entities.BoardMember{}, r.logError("board_repo_get_board_member_failed", err, "member_id", memberID)
	}
	return row.toEntity(), nil
}

func (r *Repository) FindWorkspaceMember(ctx context.Context, workspaceID int64, userID int64) (entities.WorkspaceMember, bool, error) {
	var row workspaceMemberModel
	err := r.conn(ctx).Where("workspace_id = ? AND user_id = ?", workspaceID, userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.WorkspaceMember{}, false, nil
		}
		return entities.WorkspaceMember{}, false, r.logError("board_repo_find_workspace_member_failed", err,
			"workspace_id", workspaceID,
			"user_id", userID,
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) GetWorkspaceMember(ctx context.Context, memberID int64) (entities.WorkspaceMember, error) {
	var row workspaceMemberModel
	if err := r.conn(ctx).Where("id = ?", memberID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.WorkspaceMember{}, domainerrors.ErrMemberNotFound
		}
		return entities.WorkspaceMember{}, r.logError("board_repo_get_workspace_member_failed", err, "member_id", memberID)
	}
	return row.toEntity(), nil
}

func (r *Repository) CreateWorkspace(ctx context.Context, workspace entities.Workspace) (entities.Workspace, error) {
	row := workspaceModel{
		Name:        workspace.Name,
		Description: workspace.Description,
		CreatedBy:   workspace.CreatedBy,
		CreatedAt:   workspace.CreatedAt.UTC(),
		UpdatedAt:   workspace.UpdatedAt.UTC(),
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		return entities.Workspace{}, r.logError("board_repo_create_workspace_failed", err)
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateWorkspace(ctx context.Context, workspace entities.Workspace) error {
	result := r.conn(ctx).Model(&workspaceModel{}).
		Where("id = ?", workspace.ID).
		Updates(map[string]any{
			"name":        workspace.Name,
			"description": workspace.Description,
			"updated_at":  workspace.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("board_repo_update_workspace_failed", result.Error, "workspace_id", workspace.ID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrWorkspaceNotFound
	}
	return nil
}

func (r *Repository) DeleteWorkspace(ctx context.Context, workspaceID int64) error {
	tx := r.conn(ctx)
	boardIDs := tx.Model(&boardModel{}).Select("id").Where("workspace_id = ?", workspaceID)
	steps := []struct {
		name  string
		query *gorm.DB
		model any
	}{
		{"board_members", tx.Where("board_id IN (?)", boardIDs), &boardMemberModel{}},
		{"board_invitations", tx.Where("scope = ? AND container_id IN (?)", entities.ScopeBoard, boardIDs), &invitationModel{}},
		{"workspace_invitations", tx.Where("scope = ? AND container_id = ?", entities.ScopeWorkspace, workspaceID), &invitationModel{}},
		{"boards", tx.Where("workspace_id = ?", workspaceID), &boardModel{}},
		{"workspace_members", tx.Where("workspace_id = ?", workspaceID), &workspaceMemberModel{}},
	}
	for _, step := range steps {
		if err := step.query.Delete(step.model).Error; err != nil {
			return r.logError("board_repo_delete_workspace_failed", err,
				"workspace_id", workspaceID,
				"step", step.name,
			)
		}
	}
	result := tx.Where("id = ?", workspaceID).Delete(&workspaceModel{})
	if result.Error != nil {
		return r.logError("board_repo_delete_workspace_failed", result.Error, "workspace_id", workspaceID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrWorkspaceNotFound
	}
	return nil
}

func (r *Repository) ListWorkspacesForUser(ctx context.Context, userID int64) ([]entities.Workspace, error) {
	var rows []workspaceModel
	err := r.conn(ctx).
		Table("workspaces AS w").
		Select("w.*").
		Joins("JOIN workspace_members AS m ON m.workspace_id = w.id").
		Where("m.user_id = ?", userID).
		Order("w.id ASC").
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("board_repo_list_workspaces_failed", err, "user_id", userID)
	}
	items := make([]entities.Workspace, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AddWorkspaceMember(ctx context.Context, member entities.WorkspaceMember) (entities.WorkspaceMember, error) {
	row := workspaceMemberModel{
		WorkspaceID: member.WorkspaceID,
		UserID:      member.UserID,
		Role:        string(member.Role),
		JoinedAt:    member.JoinedAt.UTC(),
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return entities.WorkspaceMember{}, domainerrors.ErrAlreadyMember
		}
		return entities.WorkspaceMember{}, r.logError("board_repo_add_workspace_member_failed", err,
			"workspace_id", member.WorkspaceID,
			"user_id", member.UserID,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListWorkspaceMembers(ctx context.Context, workspaceID int64) ([]entities.WorkspaceMember, error) {
	return r.listWorkspaceMembers(ctx, "workspace_id = ?", workspaceID)
}

func (r *Repository) ListWorkspaceMembershipsForUser(ctx context.Context, userID int64) ([]entities.WorkspaceMember, error) {
	return r.listWorkspaceMembers(ctx, "user_id = ?", userID)
}

func (r *Repository) listWorkspaceMembers(ctx context.Context, where string, id int64) ([]entities.WorkspaceMember, error) {
	var rows []workspaceMemberModel
	if err := r.conn(ctx).Where(where, id).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("board_repo_list_workspace_members_failed", err, "filter", where, "id", id)
	}
	items := make([]entities.WorkspaceMember, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) UpdateWorkspaceMemberRole(ctx context.Context, memberID int64, role roles.WorkspaceRole) error {
	result := r.conn(ctx).Model(&workspaceMemberModel{}).Where("id = ?", memberID).Update("role", string(role))
	if result.Error != nil {
		return r.logError("board_repo_update_workspace_member_failed", result.Error, "member_id", memberID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrMemberNotFound
	}
	return nil
}

func (r *Repository) DeleteWorkspaceMember(ctx context.Context, memberID int64) error {
	result := r.conn(ctx).Where("id = ?", memberID).Delete(&workspaceMemberModel{})
	if result.Error != nil {
		return r.logError("board_repo_delete_workspace_member_failed", result.Error, "member_id", memberID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrMemberNotFound
	}
	return nil
}

func (r *Repository) CountWorkspaceMembersWithRole(ctx context.Context, workspaceID int64, role roles.WorkspaceRole) (int, error) {
	var count int64
	err := r.conn(ctx).Model(&workspaceMemberModel{}).
		Where("workspace_id = ? AND role = ?", workspaceID, string(role)).
		Count(&count).Error
	if err != nil {
		return 0, r.logError("board_repo_count_workspace_members_failed", err, "workspace_id", workspaceID)
	}
	return int(count), nil
}

func (r *Repository) CreateBoard(ctx context.Context, board entities.Board) (entities.Board, error) {
	row := boardModelFromEntity(board)
	row.ID = 0
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return entities.Board{}, domainerrors.ErrBoardNameTaken
		}
		return entities.Board{}, r.logError("board_repo_create_board_failed", err, "workspace_id", board.WorkspaceID)
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateBoard(ctx context.Context, board entities.Board) error {
	result := r.conn(ctx).Model(&boardModel{}).
		Where("id = ?", board.ID).
		Updates(map[string]any{
			"name":        board.Name,
			"description": board.Description,
			"visibility":  string(board.Visibility),
			"updated_at":  board.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainerrors.ErrBoardNameTaken
		}
		return r.logError("board_repo_update_board_failed", result.Error, "board_id", board.ID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrBoardNotFound
	}
	return nil
}

func (r *Repository) DeleteBoard(ctx context.Context, boardID int64) error {
	tx := r.conn(ctx)
	if err := tx.Where("board_id = ?", boardID).Delete(&boardMemberModel{}).Error; err != nil {
		return r.logError("board_repo_delete_board_members_failed", err, "board_id", boardID)
	}
	if err := tx.Where("scope = ? AND container_id = ?", entities.ScopeBoard, boardID).Delete(&invitationModel{}).Error; err != nil {
		return r.logError("board_repo_delete_board_invitations_failed", err, "board_id", boardID)
	}
	result := tx.Where("id = ?", boardID).Delete(&boardModel{})
	if result.Error != nil {
		return r.logError("board_repo_delete_board_failed", result.Error, "board_id", boardID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrBoardNotFound
	}
	return nil
}

func (r *Repository) ListBoardsByWorkspace(ctx context.Context, workspaceID int64) ([]entities.Board, error) {
	var rows []boardModel
	if err := r.conn(ctx).Where("workspace_id = ?", workspaceID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("board_repo_list_boards_failed", err, "workspace_id", workspaceID)
	}
	return toBoards(rows), nil
}

func (r *Repository) AddBoardMember(ctx context.Context, member entities.BoardMember) (entities.BoardMember, error) {
	row := boardMemberModel{
		BoardID:  member.BoardID,
		UserID:   member.UserID,
		Role:     string(member.Role),
		JoinedAt: member.JoinedAt.UTC(),
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return entities.BoardMember{}, domainerrors.ErrAlreadyMember
		}
		return entities.BoardMember{}, r.logError("board_repo_add_board_member_failed", err,
			"board_id", member.BoardID,
			"user_id", member.UserID,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListBoardMembers(ctx context.Context, boardID int64) ([]entities.BoardMember, error) {
	return r.listBoardMembers(ctx, "board_id = ?", boardID)
}

func (r *Repository) ListBoardMembershipsForUser(ctx context.Context, userID int64) ([]entities.BoardMember, error) {
	return r.listBoardMembers(ctx, "user_id = ?", userID)
}

func (r *Repository) listBoardMembers(ctx context.Context, where string, id int64) ([]entities.BoardMember, error) {
	var rows []boardMemberModel
	if err := r.conn(ctx).Where(where, id).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("board_repo_list_board_members_failed", err, "filter", where, "id", id)
	}
	items := make([]entities.BoardMember, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) UpdateBoardMemberRole(ctx context.Context, memberID int64, role roles.BoardRole) error {
	result := r.conn(ctx).Model(&boardMemberModel{}).Where("id = ?", memberID).Update("role", string(role))
	if result.Error != nil {
		return r.logError("board_repo_update_board_member_failed", result.Error, "member_id", memberID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrMemberNotFound
	}
	return nil
}

func (r *Repository) DeleteBoardMember(ctx context.Context, memberID int64) error {
	result := r.conn(ctx).Where("id = ?", memberID).Delete(&boardMemberModel{})
	if result.Error != nil {
		return r.logError("board_repo_delete_board_member_failed", result.Error, "member_id", memberID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrMemberNotFound
	}
	return nil
}

func (r *Repository) CountBoardMembersWithRole(ctx context.Context, boardID int64, role roles.BoardRole) (int, error) {
	var count int64
	err := r.conn(ctx).Model(&boardMemberModel{}).
		Where("board_id = ? AND role = ?", boardID, string(role)).
		Count(&count).Error
	if err != nil {
		return 0, r.logError("board_repo_count_board_members_failed", err, "board_id", boardID)
	}
	return int(count), nil
}

func (r *Repository) CreateInvitation(ctx context.Context, invitation entities.Invitation) (entities.Invitation, error) {
	row := invitationModelFromEntity(invitation)
	row.ID = 0
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return entities.Invitation{}, domainerrors.ErrInvitationPending
		}
		return entities.Invitation{}, r.logError("board_repo_create_invitation_failed", err,
			"scope", string(invitation.Scope),
			"container_id", invitation.ContainerID,
			"invitee_id", invitation.InviteeID,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) LockInvitation(ctx context.Context, invitationID int64) (entities.Invitation, error) {
	var row invitationModel
	if err := r.forUpdate(ctx).Where("id = ?", invitationID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Invitation{}, domainerrors.ErrInvitationNotFound
		}
		return entities.Invitation{}, r.logError("board_repo_lock_invitation_failed", err, "invitation_id", invitationID)
	}
	return row.toEntity(), nil
}

func (r *Repository) FindPendingInvitation(
	ctx context.Context,
	scope entities.InvitationScope,
	containerID int64,
	inviteeID int64,
) (entities.Invitation, bool, error) {
	var row invitationModel
	err := r.forUpdate(ctx).
		Where("scope = ? AND container_id = ? AND invitee_id = ? AND status = ?",
			string(scope), containerID, inviteeID, string(entities.InvitationPending)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Invitation{}, false, nil
		}
		return entities.Invitation{}, false, r.logError("board_repo_find_pending_invitation_failed", err,
			"scope", string(scope),
			"container_id", containerID,
			"invitee_id", inviteeID,
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) UpdateInvitationStatus(
	ctx context.Context,
	invitationID int64,
	status entities.InvitationStatus,
	updatedAt time.Time,
) error {
	result := r.conn(ctx).Model(&invitationModel{}).
		Where("id = ?", invitationID).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": updatedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("board_repo_update_invitation_failed", result.Error, "invitation_id", invitationID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvitationNotFound
	}
	return nil
}

func (r *Repository) ListInvitationsForInvitee(
	ctx context.Context,
	inviteeID int64,
	status entities.InvitationStatus,
) ([]entities.Invitation, error) {
	query := r.conn(ctx).Where("invitee_id = ?", inviteeID)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	var rows []invitationModel
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("board_repo_list_invitations_failed", err, "invitee_id", inviteeID)
	}
	items := make([]entities.Invitation, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) UpsertUser(ctx context.Context, user entities.User) error {
	row := userModel{
		ID:          user.ID,
		Firstname:   user.Firstname,
		Lastname:    user.Lastname,
		Email:       user.Email,
		Username:    user.Username,
		AvatarColor: user.AvatarColor,
	}
	err := r.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"firstname", "lastname", "email", "username", "avatar_color"}),
	}).Create(&row).Error
	if err != nil {
		return r.logError("board_repo_upsert_user_failed", err, "user_id", user.ID)
	}
	return nil
}

func (r *Repository) GetUsers(ctx context.Context, userIDs []int64) (map[int64]entities.User, error) {
	items := make(map[int64]entities.User, len(userIDs))
	if len(userIDs) == 0 {
		return items, nil
	}
	var rows []userModel
	if err := r.conn(ctx).Where("id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, r.logError("board_repo_get_users_failed", err, "user_count", len(userIDs))
	}
	for _, row := range rows {
		items[row.ID] = row.toEntity()
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, topic string, event ports.EventEnvelope) error {
	if err := outboxTable(r.db).Append(ctx, topic, event); err != nil {
		return r.logError("board_repo_append_outbox_failed", err, "event_type", event.EventType)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error) {
	items, err := outboxTable(r.db).ListPendingOutbox(ctx, limit)
	if err != nil {
		return nil, r.logError("board_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	return items, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	if err := outboxTable(r.db).MarkOutboxSent(ctx, outboxID, sentAt); err != nil {
		return r.logError("board_repo_mark_outbox_sent_failed", err, "outbox_id", outboxID)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "collaboration/board-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("board repository operation failed", fields...)
	return err
}

func toBoards(rows []boardModel) []entities.Board {
	items := make([]entities.Board, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
