package entities

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Channel names one live stream: "board:<id>" or "user:<id>".
type Channel string

func BoardChannel(boardID int64) Channel {
	return Channel("board:" + strconv.FormatInt(boardID, 10))
}

func UserChannel(userID int64) Channel {
	return Channel("user:" + strconv.FormatInt(userID, 10))
}

func (c Channel) IsBoard() bool {
	return strings.HasPrefix(string(c), "board:")
}

// Message is one entry of a channel. ID is assigned by the replay log and
// increases by one per message within the channel.
type Message struct {
	ID         int64
	Channel    Channel
	Type       string
	Payload    json.RawMessage
	OccurredAt time.Time
}

// ParseLastEventID reads the SSE Last-Event-ID header. Anything that is not
// a positive integer means "no replay".
func ParseLastEventID(raw string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}
