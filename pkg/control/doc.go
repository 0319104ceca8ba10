// Package control implements the OBS control channel client.
//
// A Client owns one authenticated obs-websocket session and drives it
// through a fixed state machine:
//
//	DISCONNECTED → CONNECTING → IDENTIFYING → READY → CLOSED
//
// Connect performs the Hello → Identify → Identified handshake, answering
// the server's authentication challenge when one is present. Once READY,
// SetText (or the general Do) sends exactly one Request and blocks for its
// RequestResponse. The channel does not pipeline: a new request is never
// sent before the previous response has been received.
//
// # Errors
//
// Failures are classified so callers can choose a reconnection policy
// without matching error strings:
//
//   - ProtocolError: unexpected opcode, mismatched requestId, malformed
//     handshake, or a silent peer. Fatal: the client closes itself.
//   - TransportError: the websocket failed underneath. Fatal.
//   - RequestError: OBS answered with a failure status. The session stays
//     READY.
//
// Use KindOf and IsFatal to inspect an error. CLOSED is terminal; a new
// Client is needed to reconnect, and no reconnection is attempted here.
package control
