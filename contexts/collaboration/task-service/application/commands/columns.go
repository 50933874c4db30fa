package commands

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"kanvas/contexts/collaboration/task-service/application"
	"kanvas/contexts/collaboration/task-service/domain/entities"
	domainerrors "kanvas/contexts/collaboration/task-service/domain/errors"
	"kanvas/contexts/collaboration/task-service/domain/services"
	"kanvas/contexts/collaboration/task-service/ports"
	eventsv1 "kanvas/contracts/events/v1"
	"kanvas/contracts/roles"
)

type CreateColumnCommand struct {
	Actor application.Actor
	Name  string
}

type CreateColumnUseCase struct {
	Columns   ports.ColumnRepository
	Tx        ports.TxRunner
	Emitter   application.Emitter
	Allocator services.Allocator
	Clock     ports.Clock
	Logger    *slog.Logger
}

// Execute appends a column at the end of the actor's board.
func (u CreateColumnUseCase) Execute(ctx context.Context, cmd CreateColumnCommand) (entities.Column, error) {
	logger := application.ResolveLogger(u.Logger)
	if err := cmd.Actor.Require(roles.BoardEditor); err != nil {
		return entities.Column{}, err
	}
	now := currentTime(u.Clock)
	column := entities.Column{
		BoardID:   cmd.Actor.BoardID,
		Name:      strings.TrimSpace(cmd.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !column.Validate() {
		return entities.Column{}, domainerrors.ErrInvalidRequest
	}

	err := u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := u.Columns.LockColumnScope(ctx, column.BoardID); err != nil {
			return err
		}
		max, err := u.Columns.MaxColumnOrder(ctx, column.BoardID)
		if err != nil {
			return err
		}
		index, positions, err := appendAfter(ctx, u.Allocator, max, renumberColumns(u.Columns, u.Allocator, column.BoardID))
		if err != nil {
			return err
		}
		if len(positions) > 0 {
			if err := u.Emitter.Emit(ctx, rebalanced(column.BoardID, 0, scopeColumns, positions)); err != nil {
				return err
			}
		}
		column.OrderIndex = index
		created, err := u.Columns.CreateColumn(ctx, column)
		if err != nil {
			return err
		}
		column = created
		return u.Emitter.Emit(ctx, eventsv1.ColumnCreated{
			BoardID:    created.BoardID,
			ColumnID:   created.ID,
			Name:       created.Name,
			OrderIndex: created.OrderIndex,
		})
	})
	if err != nil {
		logger.Error("create column failed",
			"event", "task_column_create_failed",
			"module", moduleName,
			"layer", "application",
			"board_id", cmd.Actor.BoardID,
			"error", err.Error(),
		)
		return entities.Column{}, err
	}

	logger.Info("column created",
		"event", "task_column_created",
		"module", moduleName,
		"layer", "application",
		"board_id", column.BoardID,
		"column_id", column.ID,
	)
	return column, nil
}

type RenameColumnCommand struct {
	Actor    application.Actor
	ColumnID int64
	Name     string
}

type RenameColumnUseCase struct {
	Columns ports.ColumnRepository
	Tx      ports.TxRunner
	Emitter application.Emitter
	Clock   ports.Clock
	Logger  *slog.Logger
}

func (u RenameColumnUseCase) Execute(ctx context.Context, cmd RenameColumnCommand) (entities.Column, error) {
	if err := cmd.Actor.Require(roles.BoardEditor); err != nil {
		return entities.Column{}, err
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" || len(name) > 100 {
		return entities.Column{}, domainerrors.ErrInvalidRequest
	}
	now := currentTime(u.Clock)

	var column entities.Column
	err := u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		locked, err := lockBoardColumn(ctx, u.Columns, cmd.Actor.BoardID, cmd.ColumnID)
		if err != nil {
			return err
		}
		if err := u.Columns.RenameColumn(ctx, locked.ID, name, now); err != nil {
			return err
		}
		locked.Name = name
		locked.UpdatedAt = now
		column = locked
		return u.Emitter.Emit(ctx, eventsv1.ColumnUpdated{BoardID: locked.BoardID, ColumnID: locked.ID, Name: name})
	})
	if err != nil {
		application.ResolveLogger(u.Logger).Warn("rename column failed",
			"event", "task_column_rename_failed",
			"module", moduleName,
			"layer", "application",
			"column_id", cmd.ColumnID,
			"error", err.Error(),
		)
		return entities.Column{}, err
	}
	return column, nil
}

type MoveColumnCommand struct {
	Actor       application.Actor
	ColumnID    int64
	PrecedingID *int64
	FollowingID *int64
}

type MoveColumnUseCase struct {
	Columns   ports.ColumnRepository
	Tx        ports.TxRunner
	Emitter   application.Emitter
	Allocator services.Allocator
	Logger    *slog.Logger
}

// Execute moves a column between two neighbors of the same board. With no
// neighbors the column goes to the end of the board.
func (u MoveColumnUseCase) Execute(ctx context.Context, cmd MoveColumnCommand) (entities.Column, error) {
	logger := application.ResolveLogger(u.Logger)
	if err := cmd.Actor.Require(roles.BoardEditor); err != nil {
		return entities.Column{}, err
	}
	if sameID(cmd.PrecedingID, cmd.ColumnID) || sameID(cmd.FollowingID, cmd.ColumnID) {
		return entities.Column{}, domainerrors.ErrNeighborOutOfScope
	}

	var (
		column    entities.Column
		positions []entities.Position
	)
	boardID := cmd.Actor.BoardID
	renumber := renumberColumns(u.Columns, u.Allocator, boardID)
	err := u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := u.Columns.LockColumnScope(ctx, boardID); err != nil {
			return err
		}
		rows, err := lockColumnsInOrder(ctx, u.Columns, cmd.ColumnID, cmd.PrecedingID, cmd.FollowingID)
		if err != nil {
			return err
		}
		locked := rows[cmd.ColumnID]
		if locked.BoardID != boardID {
			return domainerrors.ErrColumnNotFound
		}
		preceding, err := columnNeighbor(rows, boardID, cmd.PrecedingID)
		if err != nil {
			return err
		}
		following, err := columnNeighbor(rows, boardID, cmd.FollowingID)
		if err != nil {
			return err
		}

		var index float64
		if preceding == nil && following == nil {
			max, err := u.Columns.MaxColumnOrder(ctx, boardID)
			if err != nil {
				return err
			}
			index, positions, err = appendAfter(ctx, u.Allocator, max, renumber)
			if err != nil {
				return err
			}
		} else {
			index, positions, err = placeBetween(ctx, u.Allocator, preceding, following, renumber)
			if err != nil {
				return err
			}
		}
		if len(positions) > 0 {
			if err := u.Emitter.Emit(ctx, rebalanced(boardID, 0, scopeColumns, positions)); err != nil {
				return err
			}
		}
		if err := u.Columns.UpdateColumnOrder(ctx, locked.ID, index); err != nil {
			return err
		}
		locked.OrderIndex = index
		column = locked
		return u.Emitter.Emit(ctx, eventsv1.ColumnMoved{BoardID: boardID, ColumnID: locked.ID, OrderIndex: index})
	})
	if err != nil {
		logger.Warn("move column failed",
			"event", "task_column_move_failed",
			"module", moduleName,
			"layer", "application",
			"board_id", boardID,
			"column_id", cmd.ColumnID,
			"error", err.Error(),
		)
		return entities.Column{}, err
	}

	logger.Info("column moved",
		"event", "task_column_moved",
		"module", moduleName,
		"layer", "application",
		"board_id", boardID,
		"column_id", column.ID,
		"order_index", column.OrderIndex,
		"rebalanced", len(positions) > 0,
	)
	return column, nil
}

// lockColumnsInOrder locks the moved column and its neighbors by ascending
// id, so crossing moves on the same rows cannot deadlock.
func lockColumnsInOrder(ctx context.Context, columns ports.ColumnRepository, columnID int64, others ...*int64) (map[int64]entities.Column, error) {
	ids := []int64{columnID}
	for _, other := range others {
		if other != nil && !slices.Contains(ids, *other) {
			ids = append(ids, *other)
		}
	}
	slices.Sort(ids)
	rows := make(map[int64]entities.Column, len(ids))
	for _, id := range ids {
		column, err := columns.LockColumn(ctx, id)
		if err != nil {
			return nil, err
		}
		rows[id] = column
	}
	return rows, nil
}

func columnNeighbor(rows map[int64]entities.Column, boardID int64, columnID *int64) (*neighbor, error) {
	if columnID == nil {
		return nil, nil
	}
	column := rows[*columnID]
	if column.BoardID != boardID {
		return nil, domainerrors.ErrNeighborOutOfScope
	}
	return &neighbor{ID: column.ID, OrderIndex: column.OrderIndex}, nil
}

type DeleteColumnCommand struct {
	Actor    application.Actor
	ColumnID int64
}

type DeleteColumnUseCase struct {
	Columns ports.ColumnRepository
	Tx      ports.TxRunner
	Emitter application.Emitter
	Logger  *slog.Logger
}

func (u DeleteColumnUseCase) Execute(ctx context.Context, cmd DeleteColumnCommand) error {
	if err := cmd.Actor.Require(roles.BoardEditor); err != nil {
		return err
	}
	err := u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		column, err := lockBoardColumn(ctx, u.Columns, cmd.Actor.BoardID, cmd.ColumnID)
		if err != nil {
			return err
		}
		if err := u.Columns.DeleteColumn(ctx, column.ID); err != nil {
			return err
		}
		return u.Emitter.Emit(ctx, eventsv1.ColumnDeleted{BoardID: column.BoardID, ColumnID: column.ID})
	})
	if err != nil {
		application.ResolveLogger(u.Logger).Warn("delete column failed",
			"event", "task_column_delete_failed",
			"module", moduleName,
			"layer", "application",
			"column_id", cmd.ColumnID,
			"error", err.Error(),
		)
	}
	return err
}

// lockBoardColumn locks the column and hides columns of other boards behind
// ErrColumnNotFound, since the actor's role was resolved for boardID only.
func lockBoardColumn(ctx context.Context, columns ports.ColumnRepository, boardID int64, columnID int64) (entities.Column, error) {
	column, err := columns.LockColumn(ctx, columnID)
	if err != nil {
		return entities.Column{}, err
	}
	if column.BoardID != boardID {
		return entities.Column{}, domainerrors.ErrColumnNotFound
	}
	return column, nil
}

func sameID(candidate *int64, id int64) bool {
	return candidate != nil && *candidate == id
}
