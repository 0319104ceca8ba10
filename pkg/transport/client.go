package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Subprotocol is the obs-websocket JSON subprotocol.
const Subprotocol = "obswebsocket.json"

// Defaults.
const (
	// DefaultMaxMessageSize bounds a single inbound message.
	DefaultMaxMessageSize = 1 << 20

	// DefaultDialTimeout bounds the TCP and websocket handshake.
	DefaultDialTimeout = 10 * time.Second

	// DefaultWriteTimeout bounds a single write.
	DefaultWriteTimeout = 5 * time.Second

	// closeGracePeriod bounds the close message write.
	closeGracePeriod = time.Second
)

// Connection errors.
var (
	ErrConnectionClosed  = errors.New("connection closed")
	ErrUnexpectedMessage = errors.New("unexpected websocket message type")
	ErrInvalidURL        = errors.New("invalid websocket URL")
)

// DialConfig configures a WebsocketDialer.
type DialConfig struct {
	// DialTimeout bounds the dial and the websocket upgrade when the
	// context has no deadline (default: 10s).
	DialTimeout time.Duration

	// WriteTimeout bounds each Send (default: 5s).
	WriteTimeout time.Duration

	// MaxMessageSize is the largest inbound message accepted
	// (default: 1 MiB).
	MaxMessageSize int64

	// Header carries extra HTTP headers for the upgrade request.
	Header http.Header
}

// WebsocketDialer dials obs-websocket servers.
type WebsocketDialer struct {
	config DialConfig
	dialer *websocket.Dialer
}

// NewDialer creates a WebsocketDialer.
func NewDialer(config DialConfig) *WebsocketDialer {
	if config.DialTimeout == 0 {
		config.DialTimeout = DefaultDialTimeout
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = DefaultWriteTimeout
	}
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}

	return &WebsocketDialer{
		config: config,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: config.DialTimeout,
			Subprotocols:     []string{Subprotocol},
		},
	}
}

// ValidateURL checks that raw is an absolute ws:// or wss:// URL.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("%w: scheme must be ws or wss, got %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

// Dial connects to the websocket server at rawURL.
func (d *WebsocketDialer) Dial(ctx context.Context, rawURL string) (Conn, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	// Apply timeout from config if context doesn't have one
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.DialTimeout)
		defer cancel()
	}

	ws, resp, err := d.dialer.DialContext(ctx, rawURL, d.config.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial failed: %w", err)
	}
	ws.SetReadLimit(d.config.MaxMessageSize)

	return newClientConn(ws, rawURL, d.config.WriteTimeout), nil
}

// ClientConn is a websocket connection to the OBS server.
type ClientConn struct {
	ws           *websocket.Conn
	url          string
	writeTimeout time.Duration
	closeCh      chan struct{}

	closeOnce sync.Once
	writeMu   sync.Mutex
	readMu    sync.Mutex
}

func newClientConn(ws *websocket.Conn, rawURL string, writeTimeout time.Duration) *ClientConn {
	return &ClientConn{
		ws:           ws,
		url:          rawURL,
		writeTimeout: writeTimeout,
		closeCh:      make(chan struct{}),
	}
}

// RemoteAddr returns the URL the connection was dialed with.
func (c *ClientConn) RemoteAddr() string {
	return c.url
}

// Send writes data as one text message.
func (c *ClientConn) Send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	select {
	case <-c.closeCh:
		return ErrConnectionClosed
	default:
	}

	if c.writeTimeout > 0 {
		c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
		defer c.ws.SetWriteDeadline(time.Time{})
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Receive reads one text message. It returns early with ctx.Err() if ctx
// is done first; the connection is unusable after that, because the read
// deadline has been forced into the past.
func (c *ClientConn) Receive(ctx context.Context) ([]byte, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	select {
	case <-c.closeCh:
		return nil, ErrConnectionClosed
	default:
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.ws.SetReadDeadline(deadline)
	} else {
		c.ws.SetReadDeadline(time.Time{})
	}

	stop := context.AfterFunc(ctx, func() {
		c.ws.SetReadDeadline(time.Now())
	})
	defer stop()

	msgType, data, err := c.ws.ReadMessage()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, context.DeadlineExceeded
		}
		select {
		case <-c.closeCh:
			return nil, ErrConnectionClosed
		default:
		}
		return nil, err
	}
	if msgType != websocket.TextMessage {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedMessage, msgType)
	}
	return data, nil
}

// Close sends a close message and closes the connection.
func (c *ClientConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)

		// WriteControl may run concurrently with a pending Send.
		_ = c.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeGracePeriod),
		)
		err = c.ws.Close()
	})
	return err
}

// CloseCode reports the close code the peer sent if err was caused by
// the peer closing the connection.
func CloseCode(err error) (int, bool) {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code, true
	}
	return 0, false
}
