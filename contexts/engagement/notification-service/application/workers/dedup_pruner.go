package workers

import (
	"context"
	"log/slog"
	"time"

	"kanvas/contexts/engagement/notification-service/application"
	"kanvas/contexts/engagement/notification-service/ports"
)

// DedupPruner drops event reservations whose expiry has passed.
type DedupPruner struct {
	Dedup  ports.EventDedupStore
	Clock  ports.Clock
	Logger *slog.Logger
}

func (p DedupPruner) RunOnce(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	if p.Clock != nil {
		now = p.Clock.Now().UTC()
	}
	removed, err := p.Dedup.PruneEvents(ctx, now)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		application.ResolveLogger(p.Logger).Info("event reservations pruned",
			"event", "notification_dedup_pruned",
			"module", moduleName,
			"layer", "worker",
			"rows", removed,
		)
	}
	return removed, nil
}
