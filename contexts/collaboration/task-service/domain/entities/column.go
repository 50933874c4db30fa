package entities

import (
	"strings"
	"time"
)

type Column struct {
	ID         int64
	BoardID    int64
	Name       string
	OrderIndex float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (c Column) Validate() bool {
	name := strings.TrimSpace(c.Name)
	return c.BoardID > 0 && name != "" && len(name) <= 100
}

// Position is the ordering slot of one column or task.
type Position struct {
	ID         int64
	OrderIndex float64
}
