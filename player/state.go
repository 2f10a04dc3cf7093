package player

// State is the lifecycle state of a playback session.
type State int

const (
	StatePreparing State = iota
	StateReady
	StateBuffering
	StateEnded
	StateError
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StatePreparing:
		return "preparing"
	case StateReady:
		return "ready"
	case StateBuffering:
		return "buffering"
	case StateEnded:
		return "ended"
	case StateError:
		return "error"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
