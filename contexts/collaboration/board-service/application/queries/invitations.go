package queries

import (
	"context"
	"time"

	"kanvas/contexts/collaboration/board-service/domain/entities"
	domainerrors "kanvas/contexts/collaboration/board-service/domain/errors"
	"kanvas/contexts/collaboration/board-service/ports"
)

type ListInvitationsUseCase struct {
	Invitations ports.InvitationRepository
	Clock       ports.Clock
}

// Execute lists the caller's pending invitations. Invitations past their
// expiry are reported as EXPIRED; the stored status flips on the next write.
func (u ListInvitationsUseCase) Execute(ctx context.Context, actorID int64) ([]entities.Invitation, error) {
	if actorID <= 0 {
		return nil, domainerrors.ErrUnauthenticated
	}
	items, err := u.Invitations.ListInvitationsForInvitee(ctx, actorID, entities.InvitationPending)
	if err != nil {
		return nil, err
	}
	now := u.now()
	for i := range items {
		if items[i].ExpiredAt(now) {
			items[i].Status = entities.InvitationExpired
		}
	}
	return items, nil
}

func (u ListInvitationsUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
