package postgresadapter

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Clock struct{}

func (Clock) Now() time.Time {
	return time.Now().UTC()
}

type IDGenerator struct{}

func (IDGenerator) NewID(context.Context) (string, error) {
	return uuid.NewString(), nil
}
