package wire

import "strconv"

// CloseCode is a websocket close code sent by obs-websocket when it drops
// a session.
type CloseCode int

const (
	CloseUnknownReason         CloseCode = 4000
	CloseMessageDecodeError    CloseCode = 4002
	CloseMissingDataField      CloseCode = 4003
	CloseInvalidDataFieldType  CloseCode = 4004
	CloseInvalidDataFieldValue CloseCode = 4005
	CloseUnknownOpCode         CloseCode = 4006
	CloseNotIdentified         CloseCode = 4007
	CloseAlreadyIdentified     CloseCode = 4008
	CloseAuthenticationFailed  CloseCode = 4009
	CloseUnsupportedRPCVersion CloseCode = 4010
	CloseSessionInvalidated    CloseCode = 4011
	CloseUnsupportedFeature    CloseCode = 4012
)

// String returns the close code name.
func (c CloseCode) String() string {
	switch c {
	case CloseUnknownReason:
		return "UNKNOWN_REASON"
	case CloseMessageDecodeError:
		return "MESSAGE_DECODE_ERROR"
	case CloseMissingDataField:
		return "MISSING_DATA_FIELD"
	case CloseInvalidDataFieldType:
		return "INVALID_DATA_FIELD_TYPE"
	case CloseInvalidDataFieldValue:
		return "INVALID_DATA_FIELD_VALUE"
	case CloseUnknownOpCode:
		return "UNKNOWN_OPCODE"
	case CloseNotIdentified:
		return "NOT_IDENTIFIED"
	case CloseAlreadyIdentified:
		return "ALREADY_IDENTIFIED"
	case CloseAuthenticationFailed:
		return "AUTHENTICATION_FAILED"
	case CloseUnsupportedRPCVersion:
		return "UNSUPPORTED_RPC_VERSION"
	case CloseSessionInvalidated:
		return "SESSION_INVALIDATED"
	case CloseUnsupportedFeature:
		return "UNSUPPORTED_FEATURE"
	default:
		return "CLOSE_" + strconv.Itoa(int(c))
	}
}
