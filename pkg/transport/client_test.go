package transport_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miqbot/obs-subtitles/pkg/transport"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:  func(r *http.Request) bool { return true },
	Subprotocols: []string{transport.Subprotocol},
}

// startServer runs handler for each upgraded connection and returns the
// ws:// URL of the server.
func startServer(t *testing.T, handler func(ws *websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		handler(ws)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func echo(ws *websocket.Conn) {
	for {
		mt, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		if err := ws.WriteMessage(mt, data); err != nil {
			return
		}
	}
}

func dial(t *testing.T, url string) transport.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := transport.NewDialer(transport.DialConfig{}).Dial(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestDialAndEcho(t *testing.T) {
	url := startServer(t, echo)
	conn := dial(t, url)

	assert.Equal(t, url, conn.RemoteAddr())
	require.NoError(t, conn.Send([]byte(`{"op":6}`)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	data, err := conn.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"op":6}`, string(data))
}

func TestDialNegotiatesSubprotocol(t *testing.T) {
	got := make(chan string, 1)
	url := startServer(t, func(ws *websocket.Conn) {
		got <- ws.Subprotocol()
		echo(ws)
	})
	dial(t, url)

	select {
	case proto := <-got:
		assert.Equal(t, transport.Subprotocol, proto)
	case <-time.After(5 * time.Second):
		t.Fatal("server never saw the connection")
	}
}

func TestDialInvalidURL(t *testing.T) {
	d := transport.NewDialer(transport.DialConfig{})
	for _, url := range []string{"http://localhost:4455", "localhost:4455", "ws://", "::bad"} {
		_, err := d.Dial(context.Background(), url)
		assert.ErrorIs(t, err, transport.ErrInvalidURL, "url %q", url)
	}
}

func TestDialRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := transport.NewDialer(transport.DialConfig{}).Dial(ctx, url)
	assert.Error(t, err)
}

func TestReceiveDeadline(t *testing.T) {
	url := startServer(t, echo)
	conn := dial(t, url)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := conn.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestReceiveCancel(t *testing.T) {
	url := startServer(t, echo)
	conn := dial(t, url)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := conn.Receive(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReceiveBinaryRejected(t *testing.T) {
	url := startServer(t, func(ws *websocket.Conn) {
		ws.WriteMessage(websocket.BinaryMessage, []byte{0x81, 0xa2})
		echo(ws)
	})
	conn := dial(t, url)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := conn.Receive(ctx)
	assert.ErrorIs(t, err, transport.ErrUnexpectedMessage)
}

func TestCloseIdempotent(t *testing.T) {
	url := startServer(t, echo)
	conn := dial(t, url)

	require.NoError(t, conn.Close())
	assert.NotPanics(t, func() { conn.Close() })

	assert.ErrorIs(t, conn.Send([]byte("x")), transport.ErrConnectionClosed)
	_, err := conn.Receive(context.Background())
	assert.ErrorIs(t, err, transport.ErrConnectionClosed)
}

func TestCloseUnblocksReceive(t *testing.T) {
	url := startServer(t, echo)
	conn := dial(t, url)

	errCh := make(chan error, 1)
	go func() {
		_, err := conn.Receive(context.Background())
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	conn.Close()

	select {
	case err := <-errCh:
		assert.True(t, errors.Is(err, transport.ErrConnectionClosed), "got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("Receive did not return after Close")
	}
}

func TestCloseCodeFromPeer(t *testing.T) {
	url := startServer(t, func(ws *websocket.Conn) {
		ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(4009, "Authentication failed."))
		time.Sleep(100 * time.Millisecond)
	})
	conn := dial(t, url)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := conn.Receive(ctx)
	require.Error(t, err)

	code, ok := transport.CloseCode(err)
	assert.True(t, ok)
	assert.Equal(t, 4009, code)

	_, ok = transport.CloseCode(errors.New("plain"))
	assert.False(t, ok)
}
