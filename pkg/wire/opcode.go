package wire

// OpCode identifies the kind of frame.
type OpCode uint8

const (
	// OpHello is the first frame sent by the server.
	OpHello OpCode = 0

	// OpIdentify is the client's answer to Hello.
	OpIdentify OpCode = 1

	// OpIdentified acknowledges a successful Identify.
	OpIdentified OpCode = 2

	// OpReidentify updates session parameters after identification.
	OpReidentify OpCode = 3

	// OpEvent carries a subscribed server event.
	OpEvent OpCode = 5

	// OpRequest is a client request.
	OpRequest OpCode = 6

	// OpRequestResponse is the server's reply to a Request.
	OpRequestResponse OpCode = 7

	// OpRequestBatch is a batch of client requests.
	OpRequestBatch OpCode = 8

	// OpRequestBatchResponse is the server's reply to a RequestBatch.
	OpRequestBatchResponse OpCode = 9
)

// String returns the opcode name.
func (o OpCode) String() string {
	switch o {
	case OpHello:
		return "HELLO"
	case OpIdentify:
		return "IDENTIFY"
	case OpIdentified:
		return "IDENTIFIED"
	case OpReidentify:
		return "REIDENTIFY"
	case OpEvent:
		return "EVENT"
	case OpRequest:
		return "REQUEST"
	case OpRequestResponse:
		return "REQUEST_RESPONSE"
	case OpRequestBatch:
		return "REQUEST_BATCH"
	case OpRequestBatchResponse:
		return "REQUEST_BATCH_RESPONSE"
	default:
		return "UNKNOWN"
	}
}

// IsValid returns true if the opcode is defined by the protocol.
func (o OpCode) IsValid() bool {
	return o.String() != "UNKNOWN"
}
