package memory

import (
	"context"
	"sync"
	"time"

	"kanvas/contexts/engagement/realtime-service/domain/entities"
)

type channelLog struct {
	lastID   int64
	messages []entities.Message
}

// ReplayLog keeps the newest Size messages of each channel in memory.
type ReplayLog struct {
	mu       sync.Mutex
	size     int
	now      func() time.Time
	channels map[entities.Channel]*channelLog
}

func NewReplayLog(size int) *ReplayLog {
	if size <= 0 {
		size = 500
	}
	return &ReplayLog{size: size, now: time.Now, channels: make(map[entities.Channel]*channelLog)}
}

func (l *ReplayLog) Now() time.Time {
	return l.now().UTC()
}

func (l *ReplayLog) Append(_ context.Context, msg entities.Message) (entities.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	log, ok := l.channels[msg.Channel]
	if !ok {
		log = &channelLog{}
		l.channels[msg.Channel] = log
	}
	log.lastID++
	msg.ID = log.lastID
	msg.Payload = append([]byte(nil), msg.Payload...)
	log.messages = append(log.messages, msg)
	if overflow := len(log.messages) - l.size; overflow > 0 {
		log.messages = append([]entities.Message(nil), log.messages[overflow:]...)
	}
	return msg, nil
}

func (l *ReplayLog) Since(_ context.Context, channel entities.Channel, afterID int64) ([]entities.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	log, ok := l.channels[channel]
	if !ok {
		return nil, nil
	}
	items := make([]entities.Message, 0)
	for _, msg := range log.messages {
		if msg.ID > afterID {
			items = append(items, msg)
		}
	}
	return items, nil
}
