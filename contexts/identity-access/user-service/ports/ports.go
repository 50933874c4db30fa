package ports

import (
	"context"
	"time"

	"kanvas/contexts/identity-access/user-service/domain/entities"
	eventsv1 "kanvas/contracts/events/v1"
)

type Repository interface {
	// CreateUser fails with ErrEmailTaken or ErrUsernameTaken on a duplicate.
	CreateUser(ctx context.Context, user entities.User) (entities.User, error)
	GetUser(ctx context.Context, userID int64) (entities.User, error)
	FindByEmail(ctx context.Context, email string) (entities.User, error)
	FindByUsername(ctx context.Context, username string) (entities.User, bool, error)
	UpdateUser(ctx context.Context, user entities.User) error
	// SearchUsers matches query as a substring of email or username.
	SearchUsers(ctx context.Context, query string, limit int) ([]entities.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns nil when password matches hash.
	Compare(hash string, password string) error
}

type TokenIssuer interface {
	Issue(userID int64, username string) (string, time.Time, error)
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = eventsv1.Envelope

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, topic string, event EventEnvelope) error
}
