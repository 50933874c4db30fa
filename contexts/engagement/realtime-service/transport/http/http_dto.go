package httptransport

import (
	"encoding/json"
	"time"
)

// MessageFrame is the data line of one SSE event.
type MessageFrame struct {
	ID         int64           `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurredAt"`
}
