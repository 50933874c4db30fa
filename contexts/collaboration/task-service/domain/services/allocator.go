package services

import (
	"math"

	domainerrors "kanvas/contexts/collaboration/task-service/domain/errors"
)

const DefaultStep = 1024.0

// Allocator assigns fractional order indexes within one ordering scope: the
// columns of a board or the tasks of a column. Ascending index is render
// order.
type Allocator struct {
	Step float64
}

func (a Allocator) step() float64 {
	if a.Step <= 0 || math.IsNaN(a.Step) || math.IsInf(a.Step, 0) {
		return DefaultStep
	}
	return a.Step
}

// Append returns the index for a new last item. max is the current largest
// index in the scope, nil when the scope is empty.
func (a Allocator) Append(max *float64) float64 {
	if max == nil {
		return a.step()
	}
	return *max + a.step()
}

// Place returns the index for an item dropped between preceding and
// following. Either neighbor may be nil when the item lands at an end of the
// scope, but not both.
func (a Allocator) Place(preceding, following *float64) (float64, error) {
	var index float64
	switch {
	case preceding == nil && following == nil:
		return 0, domainerrors.ErrEmptyScope
	case preceding == nil:
		index = *following - a.step()
	case following == nil:
		index = *preceding + a.step()
	default:
		if !(*preceding < *following) {
			return 0, domainerrors.ErrInvalidNeighbors
		}
		index = (*preceding + *following) / 2
	}

	if math.IsNaN(index) || math.IsInf(index, 0) {
		return 0, domainerrors.ErrPrecisionExhausted
	}
	if preceding != nil && !(index > *preceding) {
		return 0, domainerrors.ErrPrecisionExhausted
	}
	if following != nil && !(index < *following) {
		return 0, domainerrors.ErrPrecisionExhausted
	}
	return index, nil
}

// Rebalance returns count evenly spaced indexes that keep the existing order
// when assigned in it.
func (a Allocator) Rebalance(count int) []float64 {
	if count <= 0 {
		return nil
	}
	indexes := make([]float64, count)
	for i := range indexes {
		indexes[i] = float64(i+1) * a.step()
	}
	return indexes
}
