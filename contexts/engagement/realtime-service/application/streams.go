package application

import (
	"context"
	"log/slog"

	"kanvas/contexts/engagement/realtime-service/domain/entities"
	domainerrors "kanvas/contexts/engagement/realtime-service/domain/errors"
	"kanvas/contexts/engagement/realtime-service/domain/services"
	"kanvas/contexts/engagement/realtime-service/ports"
)

const moduleName = "engagement/realtime-service"

// Stream is an open subscription: the replayed backlog followed by live
// messages. Live may repeat ids already in Backlog.
type Stream struct {
	Channel entities.Channel
	Backlog []entities.Message
	Live    <-chan entities.Message
	cancel  func()
}

func (s Stream) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

type OpenStreamUseCase struct {
	Hub    *Hub
	Replay ports.ReplayLog
	Logger *slog.Logger
}

func (u OpenStreamUseCase) Board(ctx context.Context, principal int64, role string, boardID int64, lastEventID int64) (Stream, error) {
	if err := services.AuthorizeBoardStream(principal, role); err != nil {
		return Stream{}, err
	}
	if boardID <= 0 {
		return Stream{}, domainerrors.ErrInvalidRequest
	}
	return u.open(ctx, entities.BoardChannel(boardID), principal, lastEventID), nil
}

func (u OpenStreamUseCase) User(ctx context.Context, principal int64, lastEventID int64) (Stream, error) {
	if principal <= 0 {
		return Stream{}, domainerrors.ErrUnauthenticated
	}
	return u.open(ctx, entities.UserChannel(principal), principal, lastEventID), nil
}

// open subscribes before reading the backlog so nothing published in
// between is lost. A replay failure degrades to a live-only stream.
func (u OpenStreamUseCase) open(ctx context.Context, channel entities.Channel, principal int64, lastEventID int64) Stream {
	live, cancel := u.Hub.Subscribe(channel, principal)
	stream := Stream{Channel: channel, Live: live, cancel: cancel}
	if lastEventID <= 0 || u.Replay == nil {
		return stream
	}

	backlog, err := u.Replay.Since(ctx, channel, lastEventID)
	if err != nil {
		ResolveLogger(u.Logger).Warn("replay unavailable, streaming live only",
			"event", "realtime_replay_failed",
			"module", moduleName,
			"layer", "application",
			"channel", string(channel),
			"last_event_id", lastEventID,
			"error", err.Error(),
		)
		return stream
	}
	stream.Backlog = backlog
	return stream
}
