package stream

import (
	"context"
	"sync"
	"time"

	"speechcore/internal/metrics"
)

// Listener is the bidirectional-channel observer surface. Every callback
// is optional; a nil field is simply not invoked.
type Listener struct {
	OnOpen    func()
	OnMessage func(text string)
	OnError   func(err *Error)
	OnClose   func()
}

// Hooks lets a single Session serve multiple protocol variants with
// different auth and framing policies.
type Hooks struct {
	// CreateRequest builds the request for a connection attempt. attempt
	// is 0 for the first try.
	CreateRequest func(attempt int) Request
	// OnRetryAttempt is consulted after a failed attempt; implementations
	// typically refresh an auth token here. Only called while RetryCount
	// attempts remain.
	OnRetryAttempt func(attempt int, prevRequest Request, cause error) Request
	// OpenMessage, if it returns ok, is sent immediately after connect.
	OpenMessage func() (text string, ok bool)
	// CloseMessage, if it returns ok, is sent on Disconnect and the
	// session then waits for the peer to close. If CloseMessage is nil or
	// returns ok=false, Disconnect closes the socket itself immediately.
	CloseMessage func() (text string, ok bool)
	// CloseCode, if set, is used as the websocket close code when the
	// session tears a connection down itself.
	CloseCode func() int
	// RetryCount is how many additional attempts Connect makes after the
	// first failure.
	RetryCount int
}

const defaultDisconnectPollInterval = 50 * time.Millisecond
const defaultDisconnectTimeout = 5000 * time.Millisecond

// Session manages one streaming connection: connect with retry, the
// open-message handshake, a receive loop, graceful close, and a send
// API that only accepts frames while the connection is Open. A Session
// permits only one connect per instance lifetime; once closed, a new
// instance is required.
type Session struct {
	transport Transport
	hooks     Hooks

	// DisconnectTimeout and DisconnectPollInterval default to the spec's
	// 5000ms/50ms; tests may shrink them.
	DisconnectTimeout     time.Duration
	DisconnectPollInterval time.Duration

	// Metrics is optional; a nil value disables instrumentation.
	Metrics *metrics.Metrics

	mu       sync.Mutex
	status   ConnectionStatus
	conn     Connection
	listener Listener
	everConnected bool
}

// NewSession builds a Session around the given transport and hooks.
func NewSession(transport Transport, hooks Hooks) *Session {
	return &Session{
		transport:              transport,
		hooks:                  hooks,
		status:                 StatusDisconnected,
		DisconnectTimeout:      defaultDisconnectTimeout,
		DisconnectPollInterval: defaultDisconnectPollInterval,
	}
}

// Status returns the current connection status.
func (s *Session) Status() ConnectionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Connect attempts to open the connection, retrying per Hooks.RetryCount.
// It connects exactly once per instance lifetime: a second concurrent
// call blocks on the same mutex and then, finding the session already
// past Disconnected, returns without side effects.
func (s *Session) Connect(listener Listener) {
	s.mu.Lock()
	if s.status != StatusDisconnected || s.everConnected {
		s.mu.Unlock()
		return
	}
	s.listener = listener
	s.status = StatusConnecting
	s.everConnected = true
	s.mu.Unlock()

	req := s.hooks.CreateRequest(0)
	retriesLeft := s.hooks.RetryCount
	attempt := 0

	for {
		s.recordAttempt()
		conn, err := s.transport.Connect(context.Background(), req)
		if err == nil {
			s.openConnection(conn, listener)
			return
		}

		if retriesLeft <= 0 {
			s.mu.Lock()
			s.status = StatusDisconnected
			s.mu.Unlock()
			s.recordFailure()
			if listener.OnError != nil {
				listener.OnError(&Error{Kind: ErrorKindFailedToConnect, Message: err.Error()})
			}
			return
		}

		attempt++
		retriesLeft--
		s.recordRetry()
		if s.hooks.OnRetryAttempt != nil {
			req = s.hooks.OnRetryAttempt(attempt, req, err)
		}
	}
}

func (s *Session) openConnection(conn Connection, listener Listener) {
	s.mu.Lock()
	s.conn = conn
	s.status = StatusOpen
	s.mu.Unlock()
	if s.Metrics != nil {
		s.Metrics.ActiveSessions.Inc()
	}

	go s.receiveLoop(conn)

	if s.hooks.OpenMessage != nil {
		if text, ok := s.hooks.OpenMessage(); ok {
			_ = conn.SendText(text)
		}
	}
	if listener.OnOpen != nil {
		listener.OnOpen()
	}
}

func (s *Session) receiveLoop(conn Connection) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			closing := s.status == StatusClosing
			listener := s.listener
			s.mu.Unlock()
			if !closing && listener.OnError != nil {
				listener.OnError(&Error{Kind: ErrorKindUnknown, Message: err.Error()})
			}
			break
		}
		if msgType == MessageTypeText {
			s.mu.Lock()
			listener := s.listener
			s.mu.Unlock()
			if listener.OnMessage != nil {
				listener.OnMessage(string(data))
			}
		}
	}

	s.mu.Lock()
	listener := s.listener
	s.conn = nil
	s.listener = Listener{}
	s.status = StatusDisconnected
	s.mu.Unlock()
	if s.Metrics != nil {
		s.Metrics.ActiveSessions.Dec()
	}

	if listener.OnClose != nil {
		listener.OnClose()
	}
}

func (s *Session) recordAttempt() {
	if s.Metrics != nil {
		s.Metrics.ConnectAttempts.Inc()
	}
}

func (s *Session) recordRetry() {
	if s.Metrics != nil {
		s.Metrics.ConnectRetries.Inc()
	}
}

func (s *Session) recordFailure() {
	if s.Metrics != nil {
		s.Metrics.ConnectFailures.Inc()
	}
}

// Disconnect is idempotent. If the session is not Open, it is a no-op.
// If a close message is configured, it is sent and the session waits up
// to 5000ms (polled every 50ms) for the peer to close; otherwise the
// socket is closed directly. Disconnect is safe to call from a Listener
// callback invoked on the session's own receive-loop goroutine: the
// close-ack wait never runs on the calling goroutine, so it can't block
// behind the very loop iteration that would complete it.
func (s *Session) Disconnect() {
	s.mu.Lock()
	if s.status != StatusOpen {
		s.mu.Unlock()
		return
	}
	s.status = StatusClosing
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return
	}

	text, hasCloseMessage := "", false
	if s.hooks.CloseMessage != nil {
		text, hasCloseMessage = s.hooks.CloseMessage()
	}

	if !hasCloseMessage {
		s.closeConn(conn)
		return
	}

	_ = conn.SendText(text)

	go s.awaitCloseAck(conn)
}

// awaitCloseAck polls for the receive loop to observe the peer's close
// and transition status to Disconnected, falling back to an abnormal
// close after DisconnectTimeout. It always runs on its own goroutine so
// that a Disconnect call made from within the receive loop itself
// (e.g. a plugin reacting to a decode error) returns immediately and
// lets that loop keep reading toward the peer's ack.
func (s *Session) awaitCloseAck(conn Connection) {
	deadline := time.Now().Add(s.DisconnectTimeout)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		closed := s.status == StatusDisconnected
		s.mu.Unlock()
		if closed {
			return
		}
		time.Sleep(s.DisconnectPollInterval)
	}

	// Capture the listener before closing: once the connection is closed
	// the receive loop clears it, and the timeout error must still reach
	// the listener ahead of its OnClose.
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener.OnError != nil {
		listener.OnError(&Error{Kind: ErrorKindDisconnectTimeout, Message: "peer did not close within timeout"})
	}

	s.closeConn(conn)
}

func (s *Session) closeConn(conn Connection) {
	if s.hooks.CloseCode != nil {
		if closer, ok := conn.(codedCloser); ok {
			_ = closer.CloseWithCode(s.hooks.CloseCode())
			return
		}
	}
	_ = conn.Close()
}

// SendText sends a text frame; it is a no-op returning false unless the
// session is Open. There is no internal buffering.
func (s *Session) SendText(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusOpen || s.conn == nil {
		return false
	}
	return s.conn.SendText(text) == nil
}

// SendBinary sends a binary frame under the same Open-only policy as
// SendText.
func (s *Session) SendBinary(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusOpen || s.conn == nil {
		return false
	}
	return s.conn.SendBinary(data) == nil
}
