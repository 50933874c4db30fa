package commands

import (
	"context"
	"log/slog"

	"kanvas/contexts/engagement/notification-service/application"
	"kanvas/contexts/engagement/notification-service/domain/entities"
	domainerrors "kanvas/contexts/engagement/notification-service/domain/errors"
	"kanvas/contexts/engagement/notification-service/ports"
)

const moduleName = "engagement/notification-service"

type UpdateStatusCommand struct {
	UserID         int64
	NotificationID int64
	Status         string
}

// UpdateStatusUseCase moves one of the caller's notifications to a new
// status. Setting the current status again is a no-op and emits nothing.
type UpdateStatusUseCase struct {
	Notifications ports.NotificationRepository
	Tx            ports.TxRunner
	Emitter       application.Emitter
	Logger        *slog.Logger
}

func (u UpdateStatusUseCase) Execute(ctx context.Context, cmd UpdateStatusCommand) (entities.Notification, error) {
	if cmd.UserID <= 0 {
		return entities.Notification{}, domainerrors.ErrUnauthenticated
	}
	status, ok := entities.ParseStatus(cmd.Status)
	if !ok || cmd.NotificationID <= 0 {
		return entities.Notification{}, domainerrors.ErrInvalidRequest
	}

	var updated entities.Notification
	err := u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		notification, err := u.Notifications.GetNotification(ctx, cmd.NotificationID)
		if err != nil {
			return err
		}
		if notification.UserID != cmd.UserID {
			return domainerrors.ErrNotOwner
		}
		updated = notification
		if notification.Status == status {
			return nil
		}
		if err := u.Notifications.UpdateStatus(ctx, notification.ID, status); err != nil {
			return err
		}
		updated.Status = status
		return u.Emitter.Updated(ctx, updated)
	})
	if err != nil {
		return entities.Notification{}, err
	}

	application.ResolveLogger(u.Logger).Info("notification status updated",
		"event", "notification_status_updated",
		"module", moduleName,
		"layer", "application",
		"notification_id", updated.ID,
		"user_id", updated.UserID,
		"status", string(updated.Status),
	)
	return updated, nil
}

// MarkAllReadUseCase marks every UNREAD notification of the caller READ.
type MarkAllReadUseCase struct {
	Notifications ports.NotificationRepository
	Tx            ports.TxRunner
	Emitter       application.Emitter
	Logger        *slog.Logger
}

func (u MarkAllReadUseCase) Execute(ctx context.Context, userID int64) (int, error) {
	if userID <= 0 {
		return 0, domainerrors.ErrUnauthenticated
	}
	marked := 0
	err := u.Tx.RunInTx(ctx, func(ctx context.Context) error {
		items, err := u.Notifications.ListVisible(ctx, userID)
		if err != nil {
			return err
		}
		for _, item := range items {
			if item.Status != entities.StatusUnread {
				continue
			}
			if err := u.Notifications.UpdateStatus(ctx, item.ID, entities.StatusRead); err != nil {
				return err
			}
			item.Status = entities.StatusRead
			if err := u.Emitter.Updated(ctx, item); err != nil {
				return err
			}
			marked++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if marked > 0 {
		application.ResolveLogger(u.Logger).Info("notifications marked read",
			"event", "notification_mark_all_read",
			"module", moduleName,
			"layer", "application",
			"user_id", userID,
			"count", marked,
		)
	}
	return marked, nil
}
