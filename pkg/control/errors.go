package control

import (
	"errors"
	"fmt"

	"github.com/miqbot/obs-subtitles/pkg/wire"
)

// Client errors.
var (
	ErrNotReady         = errors.New("control channel is not ready")
	ErrClosed           = errors.New("control channel is closed")
	ErrAlreadyConnected = errors.New("control channel already connected")
)

// Kind classifies errors returned by this module.
type Kind int

const (
	// KindUnknown is any error that carries no classification.
	KindUnknown Kind = iota

	// KindProtocol is a fatal protocol violation.
	KindProtocol

	// KindTransport is a fatal failure of the underlying connection.
	KindTransport

	// KindRequest is a failure status reported by OBS. Not fatal.
	KindRequest

	// KindValidation is input rejected before reaching the channel.
	KindValidation
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindProtocol:
		return "PROTOCOL"
	case KindTransport:
		return "TRANSPORT"
	case KindRequest:
		return "REQUEST"
	case KindValidation:
		return "VALIDATION"
	default:
		return "UNKNOWN"
	}
}

// Classified is implemented by errors that carry a Kind.
type Classified interface {
	error
	Kind() Kind
}

// KindOf returns the Kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var c Classified
	if errors.As(err, &c) {
		return c.Kind()
	}
	return KindUnknown
}

// IsFatal returns true if err means the session is dead.
func IsFatal(err error) bool {
	switch KindOf(err) {
	case KindProtocol, KindTransport:
		return true
	default:
		return errors.Is(err, ErrClosed)
	}
}

// ProtocolError reports a violation of the handshake or request/response
// sequence.
type ProtocolError struct {
	// Op is the client operation that failed (Connect, SetText, ...).
	Op string

	// Reason describes the violation.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: protocol error: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: protocol error: %s", e.Op, e.Reason)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// Kind returns KindProtocol.
func (e *ProtocolError) Kind() Kind { return KindProtocol }

// TransportError reports a failure of the websocket connection.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Kind returns KindTransport.
func (e *TransportError) Kind() Kind { return KindTransport }

// RequestError reports a well-formed RequestResponse with a failure
// status.
type RequestError struct {
	RequestType string
	RequestID   string
	Code        wire.StatusCode
	Comment     string
}

func (e *RequestError) Error() string {
	msg := fmt.Sprintf("%s %s failed: %s", e.RequestType, e.RequestID, e.Code)
	if e.Comment != "" {
		msg += ": " + e.Comment
	}
	return msg
}

// Kind returns KindRequest.
func (e *RequestError) Kind() Kind { return KindRequest }

// Compile-time interface satisfaction checks.
var (
	_ Classified = (*ProtocolError)(nil)
	_ Classified = (*TransportError)(nil)
	_ Classified = (*RequestError)(nil)
)
