// Package wire defines the obs-websocket v5 frame format.
//
// Every frame is a JSON text message with an integer opcode and a payload:
//
//	{"op": 6, "d": {"requestType": "SetInputSettings", "requestId": "req-1", ...}}
//
// # Opcodes
//
// Only the opcodes needed to drive a text input are modelled:
//   - Hello (0): server greeting, optionally carrying an auth challenge
//   - Identify (1): client reply with RPC version and auth token
//   - Identified (2): handshake complete
//   - Request (6): client request
//   - RequestResponse (7): server reply, correlated by requestId
//
// Event (5) and the batch opcodes are recognised by name so they can be
// logged, but no payload types are defined for them.
//
// # Authentication
//
// When Hello carries an authentication block the client answers with
//
//	base64(sha256(base64(sha256(password + salt)) + challenge))
//
// See AuthToken.
package wire
