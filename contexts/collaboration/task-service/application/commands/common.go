package commands

import (
	"context"
	"errors"
	"math"
	"time"

	"kanvas/contexts/collaboration/task-service/domain/entities"
	domainerrors "kanvas/contexts/collaboration/task-service/domain/errors"
	"kanvas/contexts/collaboration/task-service/domain/services"
	"kanvas/contexts/collaboration/task-service/ports"
	eventsv1 "kanvas/contracts/events/v1"
)

const moduleName = "collaboration/task-service"

const (
	scopeColumns = "COLUMNS"
	scopeTasks   = "TASKS"
)

func currentTime(clock ports.Clock) time.Time {
	if clock != nil {
		return clock.Now().UTC()
	}
	return time.Now().UTC()
}

// neighbor is a locked row next to the drop position of a move.
type neighbor struct {
	ID         int64
	OrderIndex float64
}

func (n *neighbor) index() *float64 {
	if n == nil {
		return nil
	}
	value := n.OrderIndex
	return &value
}

// renumberFunc locks an ordering scope, spreads it out with
// Allocator.Rebalance and returns the new positions in order.
type renumberFunc func(ctx context.Context) ([]entities.Position, error)

// placeBetween computes the index for a drop between preceding and
// following. When the gap has no representable midpoint the scope is
// renumbered once and the placement retried against the new neighbor
// values.
func placeBetween(
	ctx context.Context,
	alloc services.Allocator,
	preceding *neighbor,
	following *neighbor,
	renumber renumberFunc,
) (float64, []entities.Position, error) {
	index, err := alloc.Place(preceding.index(), following.index())
	if !errors.Is(err, domainerrors.ErrPrecisionExhausted) {
		return index, nil, err
	}

	positions, err := renumber(ctx)
	if err != nil {
		return 0, nil, err
	}
	renumbered := make(map[int64]float64, len(positions))
	for _, position := range positions {
		renumbered[position.ID] = position.OrderIndex
	}
	for _, n := range []*neighbor{preceding, following} {
		if n != nil {
			n.OrderIndex = renumbered[n.ID]
		}
	}
	index, err = alloc.Place(preceding.index(), following.index())
	return index, positions, err
}

// appendAfter returns the index after max, renumbering the scope when max is
// too large to step past.
func appendAfter(
	ctx context.Context,
	alloc services.Allocator,
	max *float64,
	renumber renumberFunc,
) (float64, []entities.Position, error) {
	index := alloc.Append(max)
	if !math.IsInf(index, 0) && (max == nil || index > *max) {
		return index, nil, nil
	}
	positions, err := renumber(ctx)
	if err != nil {
		return 0, nil, err
	}
	if len(positions) == 0 {
		return alloc.Append(nil), positions, nil
	}
	last := positions[len(positions)-1].OrderIndex
	return alloc.Append(&last), positions, nil
}

func renumberColumns(columns ports.ColumnRepository, alloc services.Allocator, boardID int64) renumberFunc {
	return func(ctx context.Context) ([]entities.Position, error) {
		items, err := columns.LockBoardColumns(ctx, boardID)
		if err != nil {
			return nil, err
		}
		values := alloc.Rebalance(len(items))
		positions := make([]entities.Position, 0, len(items))
		for i, item := range items {
			if err := columns.UpdateColumnOrder(ctx, item.ID, values[i]); err != nil {
				return nil, err
			}
			positions = append(positions, entities.Position{ID: item.ID, OrderIndex: values[i]})
		}
		return positions, nil
	}
}

func renumberTasks(tasks ports.TaskRepository, alloc services.Allocator, columnID int64) renumberFunc {
	return func(ctx context.Context) ([]entities.Position, error) {
		items, err := tasks.LockColumnTasks(ctx, columnID)
		if err != nil {
			return nil, err
		}
		values := alloc.Rebalance(len(items))
		positions := make([]entities.Position, 0, len(items))
		for i, item := range items {
			if err := tasks.MoveTask(ctx, item.ID, columnID, values[i]); err != nil {
				return nil, err
			}
			positions = append(positions, entities.Position{ID: item.ID, OrderIndex: values[i]})
		}
		return positions, nil
	}
}

func rebalanced(boardID int64, columnID int64, scope string, positions []entities.Position) eventsv1.PositionsRebalanced {
	event := eventsv1.PositionsRebalanced{
		BoardID:   boardID,
		ColumnID:  columnID,
		Scope:     scope,
		Positions: make([]eventsv1.Position, 0, len(positions)),
	}
	for _, position := range positions {
		event.Positions = append(event.Positions, eventsv1.Position{ID: position.ID, OrderIndex: position.OrderIndex})
	}
	return event
}
