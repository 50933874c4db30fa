package commands

import (
	"context"
	"time"

	"kanvas/contexts/collaboration/board-service/domain/entities"
	"kanvas/contexts/collaboration/board-service/ports"
)

const moduleName = "collaboration/board-service"

func currentTime(clock ports.Clock) time.Time {
	if clock != nil {
		return clock.Now().UTC()
	}
	return time.Now().UTC()
}

// replicaUser returns the replicated profile for userID, or a profile with
// only the id when the replica has not caught up yet.
func replicaUser(ctx context.Context, users ports.UserReplica, userID int64) (entities.User, error) {
	if users == nil {
		return entities.User{ID: userID}, nil
	}
	found, err := users.GetUsers(ctx, []int64{userID})
	if err != nil {
		return entities.User{}, err
	}
	if user, ok := found[userID]; ok {
		return user, nil
	}
	return entities.User{ID: userID}, nil
}
