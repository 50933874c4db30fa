package outbox

import (
	"sort"
	"time"
)

// MemoryLog is the outbox table of the in-memory service stores. It is not
// safe for concurrent use; owners guard it with their own lock.
type MemoryLog struct {
	rows []Message
	sent map[string]time.Time
}

func (l *MemoryLog) Append(message Message) {
	l.rows = append(l.rows, message)
}

func (l *MemoryLog) Pending(limit int) []Message {
	items := make([]Message, 0)
	for _, row := range l.rows {
		if _, ok := l.sent[row.ID]; ok {
			continue
		}
		items = append(items, row)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// MarkSent reports false when id is unknown.
func (l *MemoryLog) MarkSent(id string, sentAt time.Time) bool {
	for _, row := range l.rows {
		if row.ID != id {
			continue
		}
		if l.sent == nil {
			l.sent = make(map[string]time.Time)
		}
		l.sent[id] = sentAt
		return true
	}
	return false
}

// All returns every row, sent or not, in insertion order.
func (l *MemoryLog) All() []Message {
	return append([]Message(nil), l.rows...)
}

func (l *MemoryLog) Clone() MemoryLog {
	clone := MemoryLog{rows: append([]Message(nil), l.rows...), sent: make(map[string]time.Time, len(l.sent))}
	for id, at := range l.sent {
		clone.sent[id] = at
	}
	return clone
}
