package metrics

// Common metric attribute keys to keep telemetry consistent/searchable.
const (
	AttrMethod    = "method"
	AttrPath      = "path"
	AttrStatus    = "status"
	AttrRoute     = "route"
	AttrTransport = "transport"
	AttrOutcome   = "outcome"
	AttrReason    = "reason"
)

// Stream message outcomes.
const (
	OutcomeDelivered = "delivered"
	OutcomeDropped   = "dropped"
)
