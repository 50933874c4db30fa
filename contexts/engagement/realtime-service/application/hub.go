package application

import (
	"sync"

	"kanvas/contexts/engagement/realtime-service/domain/entities"
)

const subscriberBuffer = 256

type subscriber struct {
	userID int64
	ch     chan entities.Message
	once   sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// Hub fans messages out to the live subscribers of each channel on this
// instance. A subscriber whose buffer is full misses the message and
// recovers it through replay on reconnect.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[entities.Channel][]*subscriber
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[entities.Channel][]*subscriber)}
}

// Subscribe registers userID on channel. The returned channel is closed by
// the cancel func or when the hub evicts the subscriber.
func (h *Hub) Subscribe(channel entities.Channel, userID int64) (<-chan entities.Message, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &subscriber{userID: userID, ch: make(chan entities.Message, subscriberBuffer)}
	h.subscribers[channel] = append(h.subscribers[channel], sub)

	return sub.ch, func() {
		h.remove(channel, func(s *subscriber) bool { return s == sub })
	}
}

func (h *Hub) Publish(msg entities.Message) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, sub := range h.subscribers[msg.Channel] {
		select {
		case sub.ch <- msg:
			delivered++
		default:
		}
	}
	return delivered
}

// Evict disconnects every stream userID holds on channel.
func (h *Hub) Evict(channel entities.Channel, userID int64) int {
	return h.remove(channel, func(s *subscriber) bool { return s.userID == userID })
}

// CloseChannel disconnects every subscriber of channel.
func (h *Hub) CloseChannel(channel entities.Channel) int {
	return h.remove(channel, func(*subscriber) bool { return true })
}

func (h *Hub) Subscribers(channel entities.Channel) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[channel])
}

func (h *Hub) remove(channel entities.Channel, match func(*subscriber) bool) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.subscribers[channel]
	kept := subs[:0]
	removed := 0
	for _, sub := range subs {
		if match(sub) {
			sub.close()
			removed++
			continue
		}
		kept = append(kept, sub)
	}
	if len(kept) == 0 {
		delete(h.subscribers, channel)
	} else {
		h.subscribers[channel] = kept
	}
	return removed
}
