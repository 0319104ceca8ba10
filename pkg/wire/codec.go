package wire

import (
	"encoding/json"
	"fmt"
)

// EncodeFrame wraps payload in a frame with the given opcode and encodes it.
func EncodeFrame(op OpCode, payload any) ([]byte, error) {
	d, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", op, err)
	}
	return json.Marshal(&Frame{Op: op, D: d})
}

// DecodeFrame decodes the envelope of a frame. The payload is left raw so
// the caller can check the opcode before decoding it.
func DecodeFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return &f, nil
}

// Payload decodes the frame payload into v.
func (f *Frame) Payload(v any) error {
	if len(f.D) == 0 {
		return fmt.Errorf("%s frame has no payload", f.Op)
	}
	if err := json.Unmarshal(f.D, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", f.Op, err)
	}
	return nil
}

// EncodeIdentify encodes an Identify frame.
func EncodeIdentify(id *Identify) ([]byte, error) {
	return EncodeFrame(OpIdentify, id)
}

// EncodeRequest encodes a Request frame.
func EncodeRequest(req *Request) ([]byte, error) {
	if req.RequestID == "" {
		return nil, fmt.Errorf("invalid request: empty requestId")
	}
	if req.RequestType == "" {
		return nil, fmt.Errorf("invalid request: empty requestType")
	}
	return EncodeFrame(OpRequest, req)
}

// DecodeHello decodes the payload of a Hello frame.
func DecodeHello(f *Frame) (*Hello, error) {
	var h Hello
	if err := f.Payload(&h); err != nil {
		return nil, err
	}
	return &h, nil
}

// DecodeIdentified decodes the payload of an Identified frame.
func DecodeIdentified(f *Frame) (*Identified, error) {
	var id Identified
	if err := f.Payload(&id); err != nil {
		return nil, err
	}
	return &id, nil
}

// DecodeRequestResponse decodes the payload of a RequestResponse frame.
func DecodeRequestResponse(f *Frame) (*RequestResponse, error) {
	var resp RequestResponse
	if err := f.Payload(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DecodeRequest decodes the payload of a Request frame. Used by test
// servers and the protocol log viewer.
func DecodeRequest(f *Frame) (*Request, error) {
	var req Request
	if err := f.Payload(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// DecodeIdentify decodes the payload of an Identify frame.
func DecodeIdentify(f *Frame) (*Identify, error) {
	var id Identify
	if err := f.Payload(&id); err != nil {
		return nil, err
	}
	return &id, nil
}
