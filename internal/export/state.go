package export

// State is the lifecycle stage of a capture session.
type State int

const (
	StateIdle State = iota
	StateInitializing
	StateRecording
	StateFinalizing
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateRecording:
		return "recording"
	case StateFinalizing:
		return "finalizing"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}
