package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"kanvas/contexts/engagement/realtime-service/application"
	"kanvas/contexts/engagement/realtime-service/domain/entities"
	httptransport "kanvas/contexts/engagement/realtime-service/transport/http"
)

const (
	defaultHeartbeat = 25 * time.Second
	moduleName       = "engagement/realtime-service"
)

var ErrStreamingUnsupported = errors.New("response writer does not support streaming")

type Handler struct {
	Streams   application.OpenStreamUseCase
	Heartbeat time.Duration
	Logger    *slog.Logger
}

// BoardStream serves the board channel. Errors are returned only before the
// stream starts; once headers are sent the stream runs until the client
// goes away or the hub closes it.
func (h Handler) BoardStream(w http.ResponseWriter, r *http.Request, principal int64, role string, boardID int64) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return ErrStreamingUnsupported
	}
	stream, err := h.Streams.Board(r.Context(), principal, role, boardID, entities.ParseLastEventID(r.Header.Get("Last-Event-ID")))
	if err != nil {
		return err
	}
	defer stream.Close()
	h.serve(w, r, flusher, stream)
	return nil
}

func (h Handler) UserStream(w http.ResponseWriter, r *http.Request, principal int64) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return ErrStreamingUnsupported
	}
	stream, err := h.Streams.User(r.Context(), principal, entities.ParseLastEventID(r.Header.Get("Last-Event-ID")))
	if err != nil {
		return err
	}
	defer stream.Close()
	h.serve(w, r, flusher, stream)
	return nil
}

func (h Handler) serve(w http.ResponseWriter, r *http.Request, flusher http.Flusher, stream application.Stream) {
	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "retry: 3000\n\n")
	flusher.Flush()

	logger := application.ResolveLogger(h.Logger)
	logger.Info("realtime stream opened",
		"event", "realtime_stream_opened",
		"module", moduleName,
		"layer", "transport",
		"channel", string(stream.Channel),
		"replayed", len(stream.Backlog),
	)

	var lastSent int64
	for _, msg := range stream.Backlog {
		if err := writeMessage(w, msg); err != nil {
			return
		}
		lastSent = msg.ID
	}
	flusher.Flush()

	heartbeat := h.Heartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case msg, ok := <-stream.Live:
			if !ok {
				fmt.Fprint(w, "event: closed\ndata: {}\n\n")
				flusher.Flush()
				logger.Info("realtime stream closed by hub",
					"event", "realtime_stream_evicted",
					"module", moduleName,
					"layer", "transport",
					"channel", string(stream.Channel),
				)
				return
			}
			if msg.ID <= lastSent {
				continue
			}
			if err := writeMessage(w, msg); err != nil {
				return
			}
			lastSent = msg.ID
			flusher.Flush()
		}
	}
}

func writeMessage(w http.ResponseWriter, msg entities.Message) error {
	data, err := json.Marshal(httptransport.MessageFrame{
		ID:         msg.ID,
		Type:       msg.Type,
		Payload:    msg.Payload,
		OccurredAt: msg.OccurredAt,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\ndata: %s\n\n", msg.ID, data)
	return err
}
