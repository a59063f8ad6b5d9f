package feed

// State is the transport mode of a session.
type State int32

const (
	StateIdle State = iota
	StateStreaming
	StatePolling
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StatePolling:
		return "polling"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Transport names which driver produced a delivery.
type Transport string

const (
	TransportStream Transport = "stream"
	TransportPull   Transport = "pull"
)
