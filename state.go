package ftclient

// State is a step in a session's lifecycle. A session only moves forward;
// on failure it jumps straight to StateClosed.
type State int

const (
	StateDisconnected State = iota
	StateControlConnected
	StateDataListening
	StateAddressSent
	StateDataConnected
	StateActionSent
	StateTransferring
	StateStatusDrained
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateControlConnected:
		return "CONTROL_CONNECTED"
	case StateDataListening:
		return "DATA_LISTENING"
	case StateAddressSent:
		return "ADDRESS_SENT"
	case StateDataConnected:
		return "DATA_CONNECTED"
	case StateActionSent:
		return "ACTION_SENT"
	case StateTransferring:
		return "TRANSFERRING"
	case StateStatusDrained:
		return "STATUS_DRAINED"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}
