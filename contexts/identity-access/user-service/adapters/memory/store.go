package memory

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"kanvas/contexts/identity-access/user-service/domain/entities"
	domainerrors "kanvas/contexts/identity-access/user-service/domain/errors"
	"kanvas/contexts/identity-access/user-service/ports"
	"kanvas/internal/shared/outbox"

	"github.com/google/uuid"
)

type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	now  func() time.Time

	nextID int64
	users  map[int64]entities.User
	outbox outbox.MemoryLog
}

func NewStore() *Store {
	return &Store{
		now:   time.Now,
		users: make(map[int64]entities.User),
	}
}

func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now().UTC()
}

func (s *Store) NewID(context.Context) (string, error) {
	return uuid.NewString(), nil
}

type txKey struct{}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	nextID, users, log := s.nextID, maps.Clone(s.users), s.outbox.Clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.nextID, s.users, s.outbox = nextID, users, log
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) CreateUser(_ context.Context, user entities.User) (entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return entities.User{}, domainerrors.ErrEmailTaken
		}
		if existing.Username == user.Username {
			return entities.User{}, domainerrors.ErrUsernameTaken
		}
	}
	s.nextID++
	user.ID = s.nextID
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) GetUser(_ context.Context, userID int64) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return entities.User{}, domainerrors.ErrUserNotFound
}

func (s *Store) FindByUsername(_ context.Context, username string) (entities.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			return user, true, nil
		}
	}
	return entities.User{}, false, nil
}

func (s *Store) UpdateUser(_ context.Context, user entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return domainerrors.ErrUserNotFound
	}
	s.users[user.ID] = user
	return nil
}

func (s *Store) SearchUsers(_ context.Context, query string, limit int) ([]entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	query = strings.ToLower(query)
	items := make([]entities.User, 0)
	for _, user := range s.users {
		if strings.Contains(strings.ToLower(user.Email), query) || strings.Contains(strings.ToLower(user.Username), query) {
			items = append(items, user)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) AppendOutbox(_ context.Context, topic string, event ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	message, err := outbox.NewMessage(event.EventID, topic, event, s.now())
	if err != nil {
		return err
	}
	s.outbox.Append(message)
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]outbox.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.outbox.Pending(limit), nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox.MarkSent(outboxID, sentAt)
	return nil
}

func (s *Store) OutboxEvents() []outbox.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.outbox.All()
}
