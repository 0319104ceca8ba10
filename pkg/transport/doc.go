// Package transport provides the websocket connection used by the OBS
// control channel.
//
// The transport layer handles:
//   - Dialing ws:// and wss:// endpoints with the obs-websocket JSON
//     subprotocol
//   - Sending and receiving whole text frames
//   - Context-bounded reads and bounded writes
//   - Idempotent close
//
// A ClientConn allows one concurrent reader and one concurrent writer,
// which is what gorilla/websocket supports. Higher layers that need strict
// request/response pairing must serialise Send+Receive themselves.
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│   obs-websocket JSON frames    │
//	├────────────────────────────────┤
//	│   WebSocket text messages      │
//	├────────────────────────────────┤
//	│   TCP (optionally TLS)         │
//	└────────────────────────────────┘
package transport
