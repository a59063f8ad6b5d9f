// Package normalize maps the stream and pull envelopes onto one canonical payload.
package normalize

import (
	"bytes"
	"encoding/json"

	"github.com/preston-bernstein/scoreboard-feed-service/internal/domain/scoreboard"
)

// Envelope is the superset of the two wire shapes:
// stream messages carry {type, meta, payload}, pull responses {sport, date, payload, ...}.
type Envelope struct {
	Type    string          `json:"type,omitempty"`
	Meta    json.RawMessage `json:"meta,omitempty"`
	Sport   string          `json:"sport,omitempty"`
	Date    string          `json:"date,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

var jsonNull = []byte("null")

// Normalize returns the envelope's payload field when it is present and not null,
// otherwise the envelope itself. Input must already be well-formed JSON; any such
// input yields a payload.
func Normalize(raw json.RawMessage) scoreboard.Payload {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		// arrays, scalars: nothing to unwrap
		return scoreboard.Payload(raw)
	}
	inner, ok := fields["payload"]
	if !ok || len(inner) == 0 || bytes.Equal(bytes.TrimSpace(inner), jsonNull) {
		return scoreboard.Payload(raw)
	}
	return scoreboard.Payload(inner)
}

// Peek decodes the envelope's descriptive fields for logging.
// It never fails: unknown shapes yield a zero Envelope.
func Peek(raw json.RawMessage) Envelope {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}
	}
	return env
}
