package httpserver

import (
	"errors"
	"net/http"
	"strings"

	realtimehttp "kanvas/contexts/engagement/realtime-service/adapters/http"
	"kanvas/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

func (s *Server) mountRealtimeRoutes(r chi.Router) {
	r.Route("/realtime", func(r chi.Router) {
		r.Get("/boards", s.handleBoardStream)
		r.Get("/me", s.handleUserStream)
	})
}

func (s *Server) handleBoardStream(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	boardID, ok := boardIDFrom(w, r)
	if !ok {
		return
	}
	role := strings.TrimSpace(r.Header.Get(headerBoardRole))

	metrics.SubscriberOpened()
	defer metrics.SubscriberClosed()
	if err := s.services.Realtime.Handler.BoardStream(w, r, userID, role, boardID); err != nil {
		s.writeStreamError(w, err)
	}
}

func (s *Server) handleUserStream(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	metrics.SubscriberOpened()
	defer metrics.SubscriberClosed()
	if err := s.services.Realtime.Handler.UserStream(w, r, userID); err != nil {
		s.writeStreamError(w, err)
	}
}

func (s *Server) writeStreamError(w http.ResponseWriter, err error) {
	if errors.Is(err, realtimehttp.ErrStreamingUnsupported) {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", err.Error())
		return
	}
	writeDomainError(w, s.logger, err)
}
