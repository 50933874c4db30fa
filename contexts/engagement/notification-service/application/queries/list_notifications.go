package queries

import (
	"context"

	"kanvas/contexts/engagement/notification-service/domain/entities"
	domainerrors "kanvas/contexts/engagement/notification-service/domain/errors"
	"kanvas/contexts/engagement/notification-service/ports"
)

type ListNotificationsUseCase struct {
	Notifications ports.NotificationRepository
}

func (u ListNotificationsUseCase) Execute(ctx context.Context, userID int64) ([]entities.Notification, error) {
	if userID <= 0 {
		return nil, domainerrors.ErrUnauthenticated
	}
	return u.Notifications.ListVisible(ctx, userID)
}

type UnreadCountUseCase struct {
	Notifications ports.NotificationRepository
}

func (u UnreadCountUseCase) Execute(ctx context.Context, userID int64) (int, error) {
	if userID <= 0 {
		return 0, domainerrors.ErrUnauthenticated
	}
	return u.Notifications.CountUnread(ctx, userID)
}
