package scoreboard

import (
	"encoding/json"
	"time"
)

// Payload is the canonical scoreboard document handed to callers.
// It is kept as raw JSON so callers can render it directly.
type Payload json.RawMessage

// IsZero reports whether the payload carries no document.
func (p Payload) IsZero() bool {
	return len(p) == 0
}

// MarshalJSON emits the document verbatim, or null when empty.
func (p Payload) MarshalJSON() ([]byte, error) {
	if p.IsZero() {
		return []byte("null"), nil
	}
	return []byte(p), nil
}

// UnmarshalJSON keeps the document verbatim; null leaves the payload empty.
func (p *Payload) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = nil
		return nil
	}
	*p = append((*p)[0:0], data...)
	return nil
}

// EventCount returns the length of the top-level "events" list, if any.
func (p Payload) EventCount() int {
	var doc struct {
		Events []json.RawMessage `json:"events"`
	}
	if err := json.Unmarshal(p, &doc); err != nil {
		return 0
	}
	return len(doc.Events)
}

// Snapshot is the latest state a session exposes to the presentation layer.
type Snapshot struct {
	Key       Key       `json:"key"`
	SessionID string    `json:"sessionId,omitempty"`
	State     string    `json:"state"`
	Transport string    `json:"transport,omitempty"`
	HasData   bool      `json:"hasData"`
	Payload   Payload   `json:"payload"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}
