package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"kanvas/contexts/engagement/notification-service/domain/entities"
	domainerrors "kanvas/contexts/engagement/notification-service/domain/errors"
	"kanvas/contexts/engagement/notification-service/ports"
	"kanvas/internal/shared/outbox"

	"github.com/google/uuid"
)

type dedupEntry struct {
	PayloadHash string
	ExpiresAt   time.Time
}

// Store keeps notifications, event reservations and the user replica in
// memory. A failed transaction restores the state it started from.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	now  func() time.Time

	state state
}

type state struct {
	nextID        int64
	notifications map[int64]entities.Notification
	dedup         map[string]dedupEntry
	users         map[int64]entities.User
	outbox        outbox.MemoryLog
}

func (s state) clone() state {
	return state{
		nextID:        s.nextID,
		notifications: maps.Clone(s.notifications),
		dedup:         maps.Clone(s.dedup),
		users:         maps.Clone(s.users),
		outbox:        s.outbox.Clone(),
	}
}

func NewStore() *Store {
	return &Store{
		now: time.Now,
		state: state{
			notifications: make(map[int64]entities.Notification),
			dedup:         make(map[string]dedupEntry),
			users:         make(map[int64]entities.User),
		},
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
	snapshot := s.state.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.state = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) CreateNotification(_ context.Context, notification entities.Notification) (entities.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.nextID++
	notification.ID = s.state.nextID
	notification.Payload = append([]byte(nil), notification.Payload...)
	s.state.notifications[notification.ID] = notification
	return notification, nil
}

func (s *Store) GetNotification(_ context.Context, notificationID int64) (entities.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	notification, ok := s.state.notifications[notificationID]
	if !ok {
		return entities.Notification{}, domainerrors.ErrNotificationNotFound
	}
	return notification, nil
}

func (s *Store) FindInvitationNotification(_ context.Context, userID int64, invitationID int64, scope string) (entities.Notification, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, notification := range s.state.notifications {
		if notification.Type == entities.TypeInvitation &&
			notification.UserID == userID &&
			notification.InvitationID == invitationID &&
			notification.InvitationScope == scope {
			return notification, true, nil
		}
	}
	return entities.Notification{}, false, nil
}

func (s *Store) UpdateStatus(_ context.Context, notificationID int64, status entities.NotificationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	notification, ok := s.state.notifications[notificationID]
	if !ok {
		return domainerrors.ErrNotificationNotFound
	}
	notification.Status = status
	s.state.notifications[notificationID] = notification
	return nil
}

func (s *Store) ListVisible(_ context.Context, userID int64) ([]entities.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Notification, 0)
	for _, notification := range s.state.notifications {
		if notification.UserID == userID && notification.Status != entities.StatusDismissed {
			items = append(items, notification)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].SentAt.Equal(items[j].SentAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].SentAt.After(items[j].SentAt)
	})
	return items, nil
}

func (s *Store) CountUnread(_ context.Context, userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, notification := range s.state.notifications {
		if notification.UserID == userID && notification.Status == entities.StatusUnread {
			count++
		}
	}
	return count, nil
}

func (s *Store) ReserveEvent(_ context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.state.dedup[eventID]
	if !ok {
		s.state.dedup[eventID] = dedupEntry{PayloadHash: payloadHash, ExpiresAt: expiresAt.UTC()}
		return false, nil
	}
	if existing.PayloadHash != payloadHash {
		return false, domainerrors.ErrDedupConflict
	}
	return true, nil
}

func (s *Store) PruneEvents(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for eventID, entry := range s.state.dedup {
		if entry.ExpiresAt.Before(before) {
			delete(s.state.dedup, eventID)
			removed++
		}
	}
	return removed, nil
}

func (s *Store) UpsertUser(_ context.Context, user entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.users[user.ID] = user
	return nil
}

func (s *Store) GetUser(_ context.Context, userID int64) (entities.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.state.users[userID]
	return user, ok, nil
}

func (s *Store) AppendOutbox(_ context.Context, topic string, event ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	message, err := outbox.NewMessage(event.EventID, topic, event, s.now())
	if err != nil {
		return err
	}
	s.state.outbox.Append(message)
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]outbox.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.outbox.Pending(limit), nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.outbox.MarkSent(outboxID, sentAt)
	return nil
}

func (s *Store) OutboxEvents() []outbox.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.outbox.All()
}
