package redisadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"kanvas/contexts/engagement/realtime-service/domain/entities"
	domainerrors "kanvas/contexts/engagement/realtime-service/domain/errors"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "kanvas:realtime:"

type record struct {
	ID         int64           `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// ReplayLog stores each channel as a capped redis list next to an INCR
// sequence that hands out message ids.
type ReplayLog struct {
	Client *redis.Client
	Size   int
	// TTL expires idle channels. Zero keeps them until trimmed.
	TTL    time.Duration
	Logger *slog.Logger
}

func listKey(channel entities.Channel) string {
	return keyPrefix + string(channel) + ":log"
}

func seqKey(channel entities.Channel) string {
	return keyPrefix + string(channel) + ":seq"
}

func (l ReplayLog) size() int64 {
	if l.Size <= 0 {
		return 500
	}
	return int64(l.Size)
}

func (l ReplayLog) Append(ctx context.Context, msg entities.Message) (entities.Message, error) {
	id, err := l.Client.Incr(ctx, seqKey(msg.Channel)).Result()
	if err != nil {
		return entities.Message{}, l.fail("realtime_replay_incr_failed", msg.Channel, err)
	}
	msg.ID = id
	raw, err := json.Marshal(record{ID: id, Type: msg.Type, Payload: msg.Payload, OccurredAt: msg.OccurredAt.UTC()})
	if err != nil {
		return entities.Message{}, err
	}

	_, err = l.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		key := listKey(msg.Channel)
		pipe.RPush(ctx, key, raw)
		pipe.LTrim(ctx, key, -l.size(), -1)
		if l.TTL > 0 {
			pipe.Expire(ctx, key, l.TTL)
			pipe.Expire(ctx, seqKey(msg.Channel), l.TTL)
		}
		return nil
	})
	if err != nil {
		return entities.Message{}, l.fail("realtime_replay_push_failed", msg.Channel, err)
	}
	return msg, nil
}

func (l ReplayLog) Since(ctx context.Context, channel entities.Channel, afterID int64) ([]entities.Message, error) {
	items, err := l.Client.LRange(ctx, listKey(channel), 0, -1).Result()
	if err != nil {
		return nil, l.fail("realtime_replay_range_failed", channel, err)
	}
	messages := make([]entities.Message, 0, len(items))
	for _, item := range items {
		var rec record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			continue
		}
		if rec.ID <= afterID {
			continue
		}
		messages = append(messages, entities.Message{
			ID:         rec.ID,
			Channel:    channel,
			Type:       rec.Type,
			Payload:    rec.Payload,
			OccurredAt: rec.OccurredAt.UTC(),
		})
	}
	return messages, nil
}

func (l ReplayLog) fail(event string, channel entities.Channel, err error) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("redis replay log failure",
		"event", event,
		"module", "engagement/realtime-service",
		"layer", "adapter",
		"channel", string(channel),
		"error", err.Error(),
	)
	return fmt.Errorf("%w: %v", domainerrors.ErrReplayUnavailable, err)
}
