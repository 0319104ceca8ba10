package transport

import "context"

// Conn is a message-oriented connection to the OBS websocket server.
// Implemented by ClientConn.
type Conn interface {
	// RemoteAddr returns the URL the connection was dialed with.
	RemoteAddr() string

	// Send writes one text message.
	Send(data []byte) error

	// Receive blocks until one message arrives or ctx is done.
	Receive(ctx context.Context) ([]byte, error)

	// Close closes the connection. Safe to call more than once.
	Close() error
}

// Dialer opens connections. Implemented by WebsocketDialer.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// Compile-time interface satisfaction checks.
var (
	_ Conn   = (*ClientConn)(nil)
	_ Dialer = (*WebsocketDialer)(nil)
)
