package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type wsMsg struct {
	mtype int
	data  []byte
}

type fakeConnection struct {
	mu        sync.Mutex
	outbound  []string
	outboundBin [][]byte
	incoming  chan wsMsg
	closed    bool
	closeCode int
}

func newFakeConnection() *fakeConnection {
	return &fakeConnection{incoming: make(chan wsMsg, 16)}
}

func (c *fakeConnection) deliverText(text string) {
	c.incoming <- wsMsg{mtype: MessageTypeText, data: []byte(text)}
}

func (c *fakeConnection) SendText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("closed")
	}
	c.outbound = append(c.outbound, text)
	return nil
}

func (c *fakeConnection) SendBinary(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("closed")
	}
	c.outboundBin = append(c.outboundBin, data)
	return nil
}

func (c *fakeConnection) ReadMessage() (int, []byte, error) {
	m, ok := <-c.incoming
	if !ok {
		return 0, nil, errors.New("connection closed")
	}
	return m.mtype, m.data, nil
}

func (c *fakeConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.incoming)
	}
	return nil
}

func (c *fakeConnection) CloseWithCode(code int) error {
	c.mu.Lock()
	c.closeCode = code
	c.mu.Unlock()
	return c.Close()
}

type fakeTransport struct {
	mu        sync.Mutex
	attempts  int
	failUntil int
	conn      *fakeConnection
}

func (t *fakeTransport) Connect(ctx context.Context, req Request) (Connection, error) {
	t.mu.Lock()
	attempt := t.attempts
	t.attempts++
	t.mu.Unlock()
	if attempt < t.failUntil {
		return nil, errors.New("dial failed")
	}
	return t.conn, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for condition")
}

func TestConnectSucceedsImmediately(t *testing.T) {
	t.Parallel()

	conn := newFakeConnection()
	transport := &fakeTransport{conn: conn}
	session := NewSession(transport, Hooks{
		CreateRequest: func(int) Request { return Request{URL: "wss://example"} },
	})

	opened := make(chan struct{})
	session.Connect(Listener{OnOpen: func() { close(opened) }})

	select {
	case <-opened:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OnOpen")
	}
	if session.Status() != StatusOpen {
		t.Fatalf("expected Open, got %v", session.Status())
	}
}

func TestConnectRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	conn := newFakeConnection()
	transport := &fakeTransport{conn: conn, failUntil: 2}

	var retryAttempts []int
	var mu sync.Mutex
	session := NewSession(transport, Hooks{
		CreateRequest: func(int) Request { return Request{URL: "wss://example"} },
		OnRetryAttempt: func(attempt int, prev Request, cause error) Request {
			mu.Lock()
			retryAttempts = append(retryAttempts, attempt)
			mu.Unlock()
			return prev
		},
		RetryCount: 5,
	})

	opened := make(chan struct{})
	session.Connect(Listener{OnOpen: func() { close(opened) }})

	select {
	case <-opened:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OnOpen")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(retryAttempts) != 2 || retryAttempts[0] != 1 || retryAttempts[1] != 2 {
		t.Fatalf("unexpected retry attempts: %v", retryAttempts)
	}
}

func TestConnectExhaustsRetriesAndReportsError(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{conn: newFakeConnection(), failUntil: 100}
	session := NewSession(transport, Hooks{
		CreateRequest:  func(int) Request { return Request{} },
		OnRetryAttempt: func(attempt int, prev Request, cause error) Request { return prev },
		RetryCount:     2,
	})

	errCh := make(chan *Error, 1)
	session.Connect(Listener{OnError: func(e *Error) { errCh <- e }})

	select {
	case e := <-errCh:
		if e.Kind != ErrorKindFailedToConnect {
			t.Fatalf("expected FailedToConnect, got %v", e.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OnError")
	}
	if session.Status() != StatusDisconnected {
		t.Fatalf("expected Disconnected, got %v", session.Status())
	}
}

func TestSecondConnectIsNoOp(t *testing.T) {
	t.Parallel()

	conn := newFakeConnection()
	transport := &fakeTransport{conn: conn}
	session := NewSession(transport, Hooks{
		CreateRequest: func(int) Request { return Request{} },
	})

	var opens int
	var mu sync.Mutex
	opened := make(chan struct{})
	listener := Listener{OnOpen: func() {
		mu.Lock()
		opens++
		mu.Unlock()
		close(opened)
	}}

	session.Connect(listener)
	<-opened
	session.Connect(listener) // second call: already past Disconnected, no-op

	mu.Lock()
	defer mu.Unlock()
	if opens != 1 {
		t.Fatalf("expected exactly one OnOpen, got %d", opens)
	}
}

func TestSendOnlySucceedsWhenOpen(t *testing.T) {
	t.Parallel()

	conn := newFakeConnection()
	transport := &fakeTransport{conn: conn}
	session := NewSession(transport, Hooks{CreateRequest: func(int) Request { return Request{} }})

	if session.SendText("hi") {
		t.Fatal("expected send to fail before connect")
	}

	opened := make(chan struct{})
	session.Connect(Listener{OnOpen: func() { close(opened) }})
	<-opened

	if !session.SendText("hello") {
		t.Fatal("expected send to succeed while open")
	}
	if !session.SendBinary([]byte{1, 2, 3}) {
		t.Fatal("expected binary send to succeed while open")
	}
}

func TestOnMessageDeliversTextFrames(t *testing.T) {
	t.Parallel()

	conn := newFakeConnection()
	transport := &fakeTransport{conn: conn}
	session := NewSession(transport, Hooks{CreateRequest: func(int) Request { return Request{} }})

	messages := make(chan string, 4)
	opened := make(chan struct{})
	session.Connect(Listener{
		OnOpen:    func() { close(opened) },
		OnMessage: func(text string) { messages <- text },
	})
	<-opened

	conn.deliverText(`{"actions":[]}`)

	select {
	case msg := <-messages:
		if msg != `{"actions":[]}` {
			t.Fatalf("unexpected message: %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestDisconnectWithoutCloseMessageClosesImmediately(t *testing.T) {
	t.Parallel()

	conn := newFakeConnection()
	transport := &fakeTransport{conn: conn}
	session := NewSession(transport, Hooks{CreateRequest: func(int) Request { return Request{} }})

	opened := make(chan struct{})
	closed := make(chan struct{})
	session.Connect(Listener{
		OnOpen:  func() { close(opened) },
		OnClose: func() { close(closed) },
	})
	<-opened

	session.Disconnect()

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OnClose")
	}
	if session.Status() != StatusDisconnected {
		t.Fatalf("expected Disconnected, got %v", session.Status())
	}
}

func TestDisconnectWithoutCloseMessageUsesCloseCodeHook(t *testing.T) {
	t.Parallel()

	conn := newFakeConnection()
	transport := &fakeTransport{conn: conn}
	session := NewSession(transport, Hooks{
		CreateRequest: func(int) Request { return Request{} },
		CloseCode:     func() int { return 1000 },
	})

	opened := make(chan struct{})
	session.Connect(Listener{OnOpen: func() { close(opened) }})
	<-opened

	session.Disconnect()

	waitFor(t, func() bool {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return conn.closeCode == 1000
	})
}

func TestDisconnectWithCloseMessageWaitsForPeerAck(t *testing.T) {
	t.Parallel()

	conn := newFakeConnection()
	transport := &fakeTransport{conn: conn}
	session := NewSession(transport, Hooks{
		CreateRequest: func(int) Request { return Request{} },
		CloseMessage:  func() (string, bool) { return `{"type":"close"}`, true },
	})
	session.DisconnectPollInterval = time.Millisecond

	opened := make(chan struct{})
	closed := make(chan struct{})
	var gotTimeoutErr bool
	session.Connect(Listener{
		OnOpen:  func() { close(opened) },
		OnClose: func() { close(closed) },
		OnError: func(e *Error) {
			if e.Kind == ErrorKindDisconnectTimeout {
				gotTimeoutErr = true
			}
		},
	})
	<-opened

	// Simulate the peer acking the close by closing the connection itself
	// shortly after the close message is sent.
	go func() {
		waitFor(t, func() bool {
			conn.mu.Lock()
			defer conn.mu.Unlock()
			return len(conn.outbound) > 0
		})
		_ = conn.Close()
	}()

	session.Disconnect()

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OnClose")
	}
	if gotTimeoutErr {
		t.Fatal("did not expect a disconnect timeout when the peer acked in time")
	}
}

func TestDisconnectTimesOutWhenPeerNeverCloses(t *testing.T) {
	t.Parallel()

	conn := newFakeConnection()
	transport := &fakeTransport{conn: conn}
	session := NewSession(transport, Hooks{
		CreateRequest: func(int) Request { return Request{} },
		CloseMessage:  func() (string, bool) { return `{"type":"close"}`, true },
	})
	session.DisconnectTimeout = 20 * time.Millisecond
	session.DisconnectPollInterval = time.Millisecond

	opened := make(chan struct{})
	errCh := make(chan *Error, 1)
	session.Connect(Listener{
		OnOpen:  func() { close(opened) },
		OnError: func(e *Error) { errCh <- e },
	})
	<-opened

	session.Disconnect()

	select {
	case e := <-errCh:
		if e.Kind != ErrorKindDisconnectTimeout {
			t.Fatalf("expected DisconnectTimeout, got %v", e.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OnError")
	}
}

func TestDisconnectIsNoOpWhenNotOpen(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{conn: newFakeConnection()}
	session := NewSession(transport, Hooks{CreateRequest: func(int) Request { return Request{} }})

	session.Disconnect() // never connected
	if session.Status() != StatusDisconnected {
		t.Fatalf("expected Disconnected, got %v", session.Status())
	}
}
