package wire

import "encoding/json"

// Request types used by this module.
const (
	// RequestSetInputSettings updates the settings of a named input.
	RequestSetInputSettings = "SetInputSettings"
)

// EventSubscriptionNone subscribes to no events. The control client never
// expects an Event frame.
const EventSubscriptionNone uint32 = 0

// Frame is the envelope of every message on the channel.
//
// JSON encoding:
//
//	{
//	  "op": 7,          // OpCode
//	  "d":  {...}       // opcode-specific payload
//	}
type Frame struct {
	Op OpCode          `json:"op"`
	D  json.RawMessage `json:"d"`
}

// Hello is the payload of OpHello.
type Hello struct {
	ObsWebSocketVersion string          `json:"obsWebSocketVersion,omitempty"`
	RPCVersion          int             `json:"rpcVersion"`
	Authentication      *Authentication `json:"authentication,omitempty"`
}

// Authentication is the challenge carried by Hello when the server has a
// password configured.
type Authentication struct {
	Challenge string `json:"challenge"`
	Salt      string `json:"salt"`
}

// Identify is the payload of OpIdentify.
//
// Authentication is omitted entirely when the server did not ask for it.
type Identify struct {
	RPCVersion         int    `json:"rpcVersion"`
	Authentication     string `json:"authentication,omitempty"`
	EventSubscriptions uint32 `json:"eventSubscriptions"`
}

// Identified is the payload of OpIdentified.
type Identified struct {
	NegotiatedRPCVersion int `json:"negotiatedRpcVersion"`
}

// Request is the payload of OpRequest.
type Request struct {
	RequestType string `json:"requestType"`
	RequestID   string `json:"requestId"`
	RequestData any    `json:"requestData,omitempty"`
}

// RequestResponse is the payload of OpRequestResponse.
type RequestResponse struct {
	RequestType   string          `json:"requestType"`
	RequestID     string          `json:"requestId"`
	RequestStatus RequestStatus   `json:"requestStatus"`
	ResponseData  json.RawMessage `json:"responseData,omitempty"`
}

// IsSuccess returns true if the server reported success.
func (r *RequestResponse) IsSuccess() bool {
	return r.RequestStatus.Result
}

// RequestStatus reports the outcome of a request.
type RequestStatus struct {
	Result  bool       `json:"result"`
	Code    StatusCode `json:"code"`
	Comment string     `json:"comment,omitempty"`
}

// SetInputSettingsData is the requestData of RequestSetInputSettings for a
// text source.
type SetInputSettingsData struct {
	InputName     string            `json:"inputName"`
	InputSettings TextInputSettings `json:"inputSettings"`
	Overlay       bool              `json:"overlay"`
}

// TextInputSettings holds the settings of a text source that this module
// changes. With overlay set, all other settings are left untouched.
type TextInputSettings struct {
	Text string `json:"text"`
}
