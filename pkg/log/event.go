package log

import (
	"time"

	"github.com/miqbot/obs-subtitles/pkg/wire"
)

// MaxCapturedFrameBytes bounds the raw bytes stored in a FrameEvent.
const MaxCapturedFrameBytes = 4096

// Event is a protocol capture record.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID identifies the control channel session (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction of the frame. Zero for state and error events.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the websocket URL of the peer.
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"`
	Message     *MessageEvent     `cbor:"11,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"`
}

// Direction indicates the direction of a frame.
type Direction uint8

const (
	// DirectionIn indicates a frame received from OBS.
	DirectionIn Direction = 0
	// DirectionOut indicates a frame sent to OBS.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates where the event was captured.
type Layer uint8

const (
	// LayerTransport is the websocket layer (raw JSON text).
	LayerTransport Layer = 0
	// LayerWire is the decoded frame layer.
	LayerWire Layer = 1
	// LayerSession is the control session and scheduler layer.
	LayerSession Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a frame.
	CategoryMessage Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryError indicates an error.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw frame text at the transport layer.
type FrameEvent struct {
	// Size is the full frame size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data is the raw frame (truncated to MaxCapturedFrameBytes).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// NewFrameEvent captures data, truncating it if necessary. The returned
// event owns a copy of the bytes.
func NewFrameEvent(data []byte) *FrameEvent {
	fe := &FrameEvent{Size: len(data)}
	n := len(data)
	if n > MaxCapturedFrameBytes {
		n = MaxCapturedFrameBytes
		fe.Truncated = true
	}
	fe.Data = append([]byte(nil), data[:n]...)
	return fe
}

// MessageEvent captures a decoded frame at the wire layer.
type MessageEvent struct {
	// Op is the frame opcode.
	Op wire.OpCode `cbor:"1,keyasint"`

	// RequestType is set for Request and RequestResponse frames.
	RequestType string `cbor:"2,keyasint,omitempty"`

	// RequestID correlates Request and RequestResponse frames.
	RequestID string `cbor:"3,keyasint,omitempty"`

	// For responses: whether the request succeeded.
	Result *bool `cbor:"4,keyasint,omitempty"`

	// For responses: the status code.
	Status *wire.StatusCode `cbor:"5,keyasint,omitempty"`

	// For responses: the server's comment, if any.
	Comment string `cbor:"6,keyasint,omitempty"`

	// For responses: time since the matching request was sent.
	// Stored as nanoseconds.
	RoundTrip *time.Duration `cbor:"7,keyasint,omitempty"`

	// For Hello: whether the server asked for authentication.
	AuthRequired bool `cbor:"8,keyasint,omitempty"`

	// For Identified: the negotiated RPC version.
	RPCVersion int `cbor:"9,keyasint,omitempty"`
}

// StateChangeEvent captures control session and scheduler transitions.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityChannel is the control channel session.
	StateEntityChannel StateEntity = 0
	// StateEntityScheduler is the subtitle scheduler.
	StateEntityScheduler StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityChannel:
		return "CHANNEL"
	case StateEntityScheduler:
		return "SCHEDULER"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Kind is the error kind name (PROTOCOL, REQUEST, ...).
	Kind string `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
