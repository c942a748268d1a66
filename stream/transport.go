package stream

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Request is everything a Transport needs to open one connection attempt.
type Request struct {
	URL    string
	Header http.Header
}

const (
	MessageTypeText   = websocket.TextMessage
	MessageTypeBinary = websocket.BinaryMessage
)

// Connection is one established bidirectional message channel.
type Connection interface {
	SendText(text string) error
	SendBinary(data []byte) error
	ReadMessage() (messageType int, data []byte, err error)
	Close() error
}

// codedCloser is an optional Connection capability: a transport that
// supports a protocol-level close code implements it so Session can use
// the close_code hook when tearing a connection down.
type codedCloser interface {
	CloseWithCode(code int) error
}

// Transport is the pluggable connection engine an AsyncSession drives.
// The default is a gorilla/websocket transport; tests and alternate
// protocol variants supply their own.
type Transport interface {
	Connect(ctx context.Context, req Request) (Connection, error)
}

// NewWebSocketTransport returns the default Transport, backed by
// gorilla/websocket.
func NewWebSocketTransport() Transport {
	return wsTransport{}
}

type wsTransport struct{}

func (wsTransport) Connect(ctx context.Context, req Request) (Connection, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, req.URL, req.Header)
	if err != nil {
		return nil, err
	}
	return &wsConnection{conn: conn}, nil
}

type wsConnection struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConnection) SendText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (c *wsConnection) SendBinary(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.BinaryMessage, data)
}

func (c *wsConnection) ReadMessage() (int, []byte, error) {
	return c.conn.ReadMessage()
}

func (c *wsConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

func (c *wsConnection) CloseWithCode(code int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload := websocket.FormatCloseMessage(code, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, payload, time.Now().Add(time.Second))
	return c.conn.Close()
}
