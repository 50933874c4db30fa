package httpadapter

import (
	"context"
	"fmt"

	"kanvas/contexts/engagement/notification-service/application/commands"
	"kanvas/contexts/engagement/notification-service/application/queries"
	"kanvas/contexts/engagement/notification-service/domain/entities"
	domainerrors "kanvas/contexts/engagement/notification-service/domain/errors"
	httptransport "kanvas/contexts/engagement/notification-service/transport/http"

	"github.com/go-playground/validator/v10"
)

type Handler struct {
	List         queries.ListNotificationsUseCase
	UnreadCount  queries.UnreadCountUseCase
	UpdateStatus commands.UpdateStatusUseCase
	MarkAllRead  commands.MarkAllReadUseCase
	Validate     *validator.Validate
}

func (h Handler) ListHandler(ctx context.Context, userID int64) (httptransport.NotificationListResponse, error) {
	items, err := h.List.Execute(ctx, userID)
	if err != nil {
		return httptransport.NotificationListResponse{}, err
	}
	response := httptransport.NotificationListResponse{
		Notifications: make([]httptransport.NotificationResponse, 0, len(items)),
	}
	for _, item := range items {
		response.Notifications = append(response.Notifications, toNotificationResponse(item))
		if item.Status == entities.StatusUnread {
			response.UnreadCount++
		}
	}
	return response, nil
}

func (h Handler) UnreadCountHandler(ctx context.Context, userID int64) (httptransport.UnreadCountResponse, error) {
	count, err := h.UnreadCount.Execute(ctx, userID)
	if err != nil {
		return httptransport.UnreadCountResponse{}, err
	}
	return httptransport.UnreadCountResponse{UnreadCount: count}, nil
}

func (h Handler) UpdateStatusHandler(
	ctx context.Context,
	userID int64,
	notificationID int64,
	request httptransport.UpdateStatusRequest,
) (httptransport.NotificationResponse, error) {
	if h.Validate != nil {
		if err := h.Validate.Struct(request); err != nil {
			return httptransport.NotificationResponse{}, fmt.Errorf("%w: %v", domainerrors.ErrInvalidRequest, err)
		}
	}
	updated, err := h.UpdateStatus.Execute(ctx, commands.UpdateStatusCommand{
		UserID:         userID,
		NotificationID: notificationID,
		Status:         request.Status,
	})
	if err != nil {
		return httptransport.NotificationResponse{}, err
	}
	return toNotificationResponse(updated), nil
}

func (h Handler) MarkAllReadHandler(ctx context.Context, userID int64) (httptransport.MarkAllReadResponse, error) {
	marked, err := h.MarkAllRead.Execute(ctx, userID)
	if err != nil {
		return httptransport.MarkAllReadResponse{}, err
	}
	return httptransport.MarkAllReadResponse{Marked: marked}, nil
}

func toNotificationResponse(n entities.Notification) httptransport.NotificationResponse {
	return httptransport.NotificationResponse{
		ID:      n.ID,
		UserID:  n.UserID,
		Type:    string(n.Type),
		Status:  string(n.Status),
		Payload: n.Payload,
		SentAt:  n.SentAt,
	}
}
