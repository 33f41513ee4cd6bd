package session

// State is the lifecycle state of a session.
type State int

const (
	// StateIdle means no transport exists.
	StateIdle State = iota
	// StateConnecting means the transport is negotiating or the control
	// channel has not opened yet.
	StateConnecting
	// StateOpen means the control channel is open and configured.
	StateOpen
	// StateClosing means Stop is releasing the transport.
	StateClosing
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}
