package wire

import "strconv"

// StatusCode is the requestStatus.code of a RequestResponse.
type StatusCode int

const (
	// StatusUnknown is never sent by a well-behaved server.
	StatusUnknown StatusCode = 0

	// StatusNoError is used internally by the server.
	StatusNoError StatusCode = 10

	// StatusSuccess indicates the request completed.
	StatusSuccess StatusCode = 100

	// StatusMissingRequestType indicates requestType was absent.
	StatusMissingRequestType StatusCode = 203

	// StatusUnknownRequestType indicates requestType is not recognised.
	StatusUnknownRequestType StatusCode = 204

	// StatusGenericError is a catch-all server failure.
	StatusGenericError StatusCode = 205

	// StatusNotReady indicates the server cannot handle requests yet.
	StatusNotReady StatusCode = 207

	// StatusMissingRequestField indicates a required field was absent.
	StatusMissingRequestField StatusCode = 300

	// StatusInvalidRequestField indicates a field has an invalid value.
	StatusInvalidRequestField StatusCode = 400

	// StatusInvalidRequestFieldType indicates a field has the wrong type.
	StatusInvalidRequestFieldType StatusCode = 401

	// StatusResourceNotFound indicates the named input does not exist.
	StatusResourceNotFound StatusCode = 600

	// StatusInvalidInputKind indicates the input cannot accept the settings.
	StatusInvalidInputKind StatusCode = 605

	// StatusRequestProcessingFailed indicates the server failed mid-request.
	StatusRequestProcessingFailed StatusCode = 702
)

// String returns the status name.
func (s StatusCode) String() string {
	switch s {
	case StatusUnknown:
		return "UNKNOWN"
	case StatusNoError:
		return "NO_ERROR"
	case StatusSuccess:
		return "SUCCESS"
	case StatusMissingRequestType:
		return "MISSING_REQUEST_TYPE"
	case StatusUnknownRequestType:
		return "UNKNOWN_REQUEST_TYPE"
	case StatusGenericError:
		return "GENERIC_ERROR"
	case StatusNotReady:
		return "NOT_READY"
	case StatusMissingRequestField:
		return "MISSING_REQUEST_FIELD"
	case StatusInvalidRequestField:
		return "INVALID_REQUEST_FIELD"
	case StatusInvalidRequestFieldType:
		return "INVALID_REQUEST_FIELD_TYPE"
	case StatusResourceNotFound:
		return "RESOURCE_NOT_FOUND"
	case StatusInvalidInputKind:
		return "INVALID_INPUT_KIND"
	case StatusRequestProcessingFailed:
		return "REQUEST_PROCESSING_FAILED"
	default:
		return "STATUS_" + strconv.Itoa(int(s))
	}
}
