package control

// State is the lifecycle state of a Client.
type State int32

const (
	// StateDisconnected is the initial state.
	StateDisconnected State = iota

	// StateConnecting covers the dial and the wait for Hello.
	StateConnecting

	// StateIdentifying covers the wait for Identified.
	StateIdentifying

	// StateReady accepts requests.
	StateReady

	// StateClosed is terminal.
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateIdentifying:
		return "IDENTIFYING"
	case StateReady:
		return "READY"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}
