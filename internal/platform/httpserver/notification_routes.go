package httpserver

import (
	"net/http"

	notificationhttp "kanvas/contexts/engagement/notification-service/transport/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) mountNotificationRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", s.handleListNotifications)
		r.Get("/unread-count", s.handleUnreadCount)
		r.Post("/read-all", s.handleMarkAllRead)
		r.Patch("/{notificationId}/status", s.handleUpdateNotificationStatus)
	})
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	resp, err := s.services.Notification.Handler.ListHandler(r.Context(), userID)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	resp, err := s.services.Notification.Handler.UnreadCountHandler(r.Context(), userID)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	resp, err := s.services.Notification.Handler.MarkAllReadHandler(r.Context(), userID)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateNotificationStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	notificationID, ok := pathID(w, r, "notificationId")
	if !ok {
		return
	}
	var req notificationhttp.UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.Notification.Handler.UpdateStatusHandler(r.Context(), userID, notificationID, req)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
