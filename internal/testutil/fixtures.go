package testutil

import (
	"encoding/json"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/domain/scoreboard"
)

// SamplePayload builds a scoreboard document with one event per id.
func SamplePayload(ids ...string) scoreboard.Payload {
	events := make([]map[string]string, 0, len(ids))
	for _, id := range ids {
		events = append(events, map[string]string{"id": id})
	}
	b, _ := json.Marshal(map[string]any{"events": events})
	return scoreboard.Payload(b)
}

// SampleEnvelope wraps payload in the feed's update envelope for key.
func SampleEnvelope(key scoreboard.Key, payload scoreboard.Payload) []byte {
	b, _ := json.Marshal(map[string]any{
		"type":    "update",
		"sport":   key.Sport,
		"date":    key.Date,
		"payload": json.RawMessage(payload),
	})
	return b
}
