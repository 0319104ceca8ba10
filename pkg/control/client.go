package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/miqbot/obs-subtitles/pkg/log"
	"github.com/miqbot/obs-subtitles/pkg/transport"
	"github.com/miqbot/obs-subtitles/pkg/version"
	"github.com/miqbot/obs-subtitles/pkg/wire"
)

// Default timeouts.
const (
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultRequestTimeout   = 10 * time.Second
)

// Config configures a Client.
type Config struct {
	// URL is the obs-websocket endpoint (ws:// or wss://).
	URL string

	// Password is the obs-websocket server password. Empty means the
	// server is expected not to require authentication.
	Password string

	// HandshakeTimeout bounds dial, Hello and Identified together
	// (default: 10s). Negative disables the bound.
	HandshakeTimeout time.Duration

	// RequestTimeout bounds the wait for each RequestResponse
	// (default: 10s). Negative disables the bound.
	RequestTimeout time.Duration

	// Dialer opens the websocket. Defaults to transport.NewDialer.
	Dialer transport.Dialer

	// Logger is the optional logger for operational output.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// ProtocolLogger receives protocol capture events.
	// If nil, capture is disabled.
	ProtocolLogger log.Logger
}

// Client is an obs-websocket control channel session.
//
// All exchanges on the channel (the handshake and each request/response
// pair) run under one mutex, so at most one request is ever outstanding.
// Close may be called at any time and unblocks a pending exchange.
type Client struct {
	config Config
	dialer transport.Dialer
	connID string

	state atomic.Int32

	// reqMu serialises channel exchanges.
	reqMu         sync.Mutex
	nextRequestID uint64

	// connMu guards conn and the negotiated session details.
	connMu        sync.Mutex
	conn          transport.Conn
	rpcVersion    int
	serverVersion string
}

// New creates a Client. No connection is made until Connect.
func New(config Config) *Client {
	if config.HandshakeTimeout == 0 {
		config.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}

	dialer := config.Dialer
	if dialer == nil {
		dialer = transport.NewDialer(transport.DialConfig{})
	}

	c := &Client{
		config: config,
		dialer: dialer,
		connID: uuid.New().String(),
	}
	c.state.Store(int32(StateDisconnected))
	return c
}

// State returns the current state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// Ready returns true if the client accepts requests.
func (c *Client) Ready() bool {
	return c.State() == StateReady
}

// ConnectionID returns the identifier used for this session in protocol
// capture.
func (c *Client) ConnectionID() string {
	return c.connID
}

// NegotiatedRPCVersion returns the RPC version confirmed by Identified,
// or 0 before the handshake completes.
func (c *Client) NegotiatedRPCVersion() int {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.rpcVersion
}

// ServerVersion returns the obs-websocket version reported in Hello.
func (c *Client) ServerVersion() string {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.serverVersion
}

// Connect dials the server and performs the Hello → Identify → Identified
// handshake. On any failure the client is closed.
//
// If Hello demands authentication and no password is configured, Connect
// fails with a ProtocolError without sending Identify. The server would
// reject a token-less Identify with close code 4009 anyway; failing first
// names the missing password instead.
func (c *Client) Connect(ctx context.Context) error {
	c.reqMu.Lock()
	defer c.reqMu.Unlock()

	if !c.transition(StateDisconnected, StateConnecting, "connect") {
		if c.State() == StateClosed {
			return ErrClosed
		}
		return ErrAlreadyConnected
	}

	if c.config.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.HandshakeTimeout)
		defer cancel()
	}

	const op = "Connect"

	conn, err := c.dialer.Dial(ctx, c.config.URL)
	if err != nil {
		return c.fail(&TransportError{Op: op, Err: err})
	}
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	// Close may have run while dialing, before conn was visible to it.
	if c.State() == StateClosed {
		conn.Close()
		return ErrClosed
	}

	frame, err := c.receive(ctx, op)
	if err != nil {
		return c.fail(err)
	}
	if frame.Op != wire.OpHello {
		return c.fail(unexpectedOp(op, wire.OpHello, frame.Op))
	}
	hello, err := wire.DecodeHello(frame)
	if err != nil {
		return c.fail(&ProtocolError{Op: op, Reason: "malformed HELLO", Err: err})
	}
	c.logMessage(log.DirectionIn, &log.MessageEvent{
		Op:           wire.OpHello,
		AuthRequired: hello.Authentication != nil,
	})
	c.checkServerVersion(hello.ObsWebSocketVersion)

	identify, err := c.identify(hello)
	if err != nil {
		return c.fail(err)
	}
	data, err := wire.EncodeIdentify(identify)
	if err != nil {
		return c.fail(&ProtocolError{Op: op, Reason: "encode IDENTIFY", Err: err})
	}

	c.transition(StateConnecting, StateIdentifying, "hello received")
	if err := c.send(op, data); err != nil {
		return c.fail(err)
	}
	c.logMessage(log.DirectionOut, &log.MessageEvent{Op: wire.OpIdentify, RPCVersion: identify.RPCVersion})

	frame, err = c.receive(ctx, op)
	if err != nil {
		return c.fail(err)
	}
	if frame.Op != wire.OpIdentified {
		return c.fail(unexpectedOp(op, wire.OpIdentified, frame.Op))
	}
	identified, err := wire.DecodeIdentified(frame)
	if err != nil {
		return c.fail(&ProtocolError{Op: op, Reason: "malformed IDENTIFIED", Err: err})
	}
	c.logMessage(log.DirectionIn, &log.MessageEvent{Op: wire.OpIdentified, RPCVersion: identified.NegotiatedRPCVersion})

	c.connMu.Lock()
	c.rpcVersion = identified.NegotiatedRPCVersion
	c.connMu.Unlock()

	if !c.transition(StateIdentifying, StateReady, "identified") {
		return ErrClosed
	}
	c.info("control channel ready",
		"url", c.config.URL,
		"rpcVersion", identified.NegotiatedRPCVersion,
		"authenticated", identify.Authentication != "")
	return nil
}

// identify builds the Identify payload answering hello.
func (c *Client) identify(hello *wire.Hello) (*wire.Identify, error) {
	rpc := version.RPCVersion
	if hello.RPCVersion != 0 {
		var err error
		rpc, err = version.Negotiate(hello.RPCVersion)
		if err != nil {
			return nil, &ProtocolError{Op: "Connect", Reason: "malformed HELLO", Err: err}
		}
	}

	id := &wire.Identify{
		RPCVersion:         rpc,
		EventSubscriptions: wire.EventSubscriptionNone,
	}

	if auth := hello.Authentication; auth != nil {
		if c.config.Password == "" {
			return nil, &ProtocolError{Op: "Connect", Reason: "server requires authentication but no password is configured"}
		}
		id.Authentication = wire.AuthToken(c.config.Password, auth.Salt, auth.Challenge)
	} else if c.config.Password != "" {
		c.debug("server does not require authentication; password unused")
	}
	return id, nil
}

// checkServerVersion records and sanity-checks the advertised version.
func (c *Client) checkServerVersion(v string) {
	c.connMu.Lock()
	c.serverVersion = v
	c.connMu.Unlock()

	if v == "" {
		return
	}
	sv, err := version.ParseServer(v)
	if err != nil {
		c.warn("unparseable obs-websocket version", "version", v, "error", err)
		return
	}
	if !sv.Supported() {
		c.warn("unsupported obs-websocket version", "version", sv.String(), "supportedMajor", version.SupportedServerMajor)
	}
}

// SetText replaces the text of the named text input.
func (c *Client) SetText(ctx context.Context, inputName, text string) error {
	_, err := c.Do(ctx, wire.RequestSetInputSettings, wire.SetInputSettingsData{
		InputName:     inputName,
		InputSettings: wire.TextInputSettings{Text: text},
		Overlay:       true,
	})
	return err
}

// Do sends one request and waits for its response.
//
// A failure status is returned as a *RequestError together with the
// response; the session stays ready. Any other failure is fatal and
// closes the client.
func (c *Client) Do(ctx context.Context, requestType string, data any) (*wire.RequestResponse, error) {
	c.reqMu.Lock()
	defer c.reqMu.Unlock()

	switch c.State() {
	case StateReady:
	case StateClosed:
		return nil, ErrClosed
	default:
		return nil, ErrNotReady
	}

	if c.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.RequestTimeout)
		defer cancel()
	}

	c.nextRequestID++
	req := &wire.Request{
		RequestType: requestType,
		RequestID:   "req-" + strconv.FormatUint(c.nextRequestID, 10),
		RequestData: data,
	}
	payload, err := wire.EncodeRequest(req)
	if err != nil {
		// Nothing was sent; the session is intact.
		return nil, fmt.Errorf("%s: %w", requestType, err)
	}

	sentAt := time.Now()
	if err := c.send(requestType, payload); err != nil {
		return nil, c.fail(err)
	}
	c.logMessage(log.DirectionOut, &log.MessageEvent{
		Op:          wire.OpRequest,
		RequestType: req.RequestType,
		RequestID:   req.RequestID,
	})

	frame, err := c.receive(ctx, requestType)
	if err != nil {
		return nil, c.fail(err)
	}
	if frame.Op != wire.OpRequestResponse {
		return nil, c.fail(unexpectedOp(requestType, wire.OpRequestResponse, frame.Op))
	}
	resp, err := wire.DecodeRequestResponse(frame)
	if err != nil {
		return nil, c.fail(&ProtocolError{Op: requestType, Reason: "malformed REQUEST_RESPONSE", Err: err})
	}

	rtt := time.Since(sentAt)
	result := resp.RequestStatus.Result
	status := resp.RequestStatus.Code
	c.logMessage(log.DirectionIn, &log.MessageEvent{
		Op:          wire.OpRequestResponse,
		RequestType: resp.RequestType,
		RequestID:   resp.RequestID,
		Result:      &result,
		Status:      &status,
		Comment:     resp.RequestStatus.Comment,
		RoundTrip:   &rtt,
	})

	if resp.RequestID != req.RequestID {
		return nil, c.fail(&ProtocolError{
			Op:     requestType,
			Reason: fmt.Sprintf("response requestId %q does not match request %q", resp.RequestID, req.RequestID),
		})
	}

	if !resp.IsSuccess() {
		reqErr := &RequestError{
			RequestType: requestType,
			RequestID:   req.RequestID,
			Code:        resp.RequestStatus.Code,
			Comment:     resp.RequestStatus.Comment,
		}
		c.logError(log.LayerWire, reqErr, requestType)
		return resp, reqErr
	}
	return resp, nil
}

// Close closes the session. It is idempotent and may be called
// concurrently with a pending exchange, which then fails.
func (c *Client) Close() error {
	return c.shutdown("closed by caller")
}

// shutdown moves to CLOSED and releases the connection.
func (c *Client) shutdown(reason string) error {
	old := State(c.state.Swap(int32(StateClosed)))
	if old == StateClosed {
		return nil
	}
	c.logState(old, StateClosed, reason)

	c.connMu.Lock()
	conn := c.conn
	c.connMu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

// fail records a fatal error, closes the session, and returns err.
func (c *Client) fail(err error) error {
	if c.State() != StateClosed {
		c.logError(log.LayerSession, err, "")
		c.warn("control channel failed", "error", err, "kind", KindOf(err).String())
	}
	c.shutdown(err.Error())
	return err
}

// transition moves from one state to another if the client is in from.
func (c *Client) transition(from, to State, reason string) bool {
	if !c.state.CompareAndSwap(int32(from), int32(to)) {
		return false
	}
	c.logState(from, to, reason)
	return true
}

func (c *Client) currentConn() transport.Conn {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.conn
}

// send writes one frame.
func (c *Client) send(op string, data []byte) error {
	conn := c.currentConn()
	if conn == nil {
		return fmt.Errorf("%s: %w", op, ErrNotReady)
	}

	c.logFrame(log.DirectionOut, data)
	if err := conn.Send(data); err != nil {
		if errors.Is(err, transport.ErrConnectionClosed) {
			return fmt.Errorf("%s: %w", op, ErrClosed)
		}
		return &TransportError{Op: op, Err: err}
	}
	return nil
}

// receive reads and decodes the envelope of the next frame.
func (c *Client) receive(ctx context.Context, op string) (*wire.Frame, error) {
	conn := c.currentConn()
	if conn == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotReady)
	}

	data, err := conn.Receive(ctx)
	if err != nil {
		return nil, classifyReceiveError(op, err)
	}
	c.logFrame(log.DirectionIn, data)

	frame, err := wire.DecodeFrame(data)
	if err != nil {
		return nil, &ProtocolError{Op: op, Reason: "malformed frame", Err: err}
	}
	return frame, nil
}

// classifyReceiveError maps a failed read onto the error taxonomy.
// An abandoned read leaves a response in flight, so every case is fatal.
func classifyReceiveError(op string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &ProtocolError{Op: op, Reason: "timed out waiting for server", Err: err}
	case errors.Is(err, context.Canceled):
		return &ProtocolError{Op: op, Reason: "wait for server interrupted", Err: err}
	case errors.Is(err, transport.ErrConnectionClosed):
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}

	if code, ok := transport.CloseCode(err); ok && code >= int(wire.CloseUnknownReason) {
		return &ProtocolError{
			Op:     op,
			Reason: "server closed session with " + wire.CloseCode(code).String(),
			Err:    err,
		}
	}
	return &TransportError{Op: op, Err: err}
}

func unexpectedOp(op string, want, got wire.OpCode) error {
	return &ProtocolError{
		Op:     op,
		Reason: fmt.Sprintf("expected %s, got %s (op %d)", want, got, got),
	}
}
