package transcription

import (
	"encoding/binary"
	"sync"

	"speechcore/internal/metrics"
	"speechcore/recorder"
	"speechcore/stream"
	"speechcore/transcribe"
)

// Listener is the observer surface this plugin exposes to the embedding
// application, distinct from the recorder's own callback channels.
type Listener struct {
	OnStreamConnecting func()
	OnStreamStarted    func()
	OnStreamUpdated    func(transcribe.TranscribeStream)
	OnStreamCompleted  func(transcribe.TranscribeStream, error)
}

// Plugin wires an AsyncSession, a MessageDecoder, and a TranscribeStream
// into the recorder lifecycle: it opens a streaming connection from its
// before_start callback, forwards PCM frames while the connection is
// open, and closes gracefully from its before_stop callback.
type Plugin struct {
	recorder.BasePlugin

	newSession func() *stream.Session
	decoder    transcribe.MessageDecoder
	listener   Listener
	metrics    *metrics.Metrics

	model *recorder.Model

	beforeStartHandle recorder.Handle
	audioFrameHandle  recorder.Handle
	beforeStopHandle  recorder.Handle

	mu           sync.Mutex
	session      *stream.Session
	streamState  transcribe.TranscribeStream
	isOpen       bool
	isConnecting bool
	isClosing    bool
	streamErr    error
}

// NewPlugin builds a transcription plugin. newSession must return a
// fresh *stream.Session each call: a Session connects only once per
// instance lifetime, so a new one is required for every recording cycle.
func NewPlugin(newSession func() *stream.Session, listener Listener) *Plugin {
	return &Plugin{newSession: newSession, decoder: transcribe.NewMessageDecoder(), listener: listener}
}

// WithMetrics attaches a metrics collector; a nil argument disables
// instrumentation, which is also the default.
func (p *Plugin) WithMetrics(m *metrics.Metrics) *Plugin {
	p.metrics = m
	return p
}

// Stream returns a snapshot of the current transcription document.
func (p *Plugin) Stream() transcribe.TranscribeStream {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.streamState
}

func (p *Plugin) Activate(model *recorder.Model) {
	p.model = model
	p.beforeStartHandle = model.OnBeforeStart(p.onStartRecording)
	p.audioFrameHandle = model.OnAudioFrame(p.onAudioFrame)
	p.beforeStopHandle = model.OnBeforeStop(p.onBeforeStopRecording)
}

func (p *Plugin) Deactivate(model *recorder.Model) {
	model.Deregister("before_start", p.beforeStartHandle)
	model.Deregister("audio_frame", p.audioFrameHandle)
	model.Deregister("before_stop", p.beforeStopHandle)
}

func (p *Plugin) onStartRecording() {
	p.mu.Lock()
	if p.isConnecting {
		p.mu.Unlock()
		return
	}
	p.isConnecting = true
	p.isOpen = false
	p.isClosing = false
	p.streamErr = nil
	p.streamState = transcribe.NewTranscribeStream()
	session := p.newSession()
	p.session = session
	p.mu.Unlock()

	if p.listener.OnStreamConnecting != nil {
		p.listener.OnStreamConnecting()
	}

	session.Connect(stream.Listener{
		OnOpen:    p.onOpen,
		OnMessage: p.onMessage,
		OnError:   p.onError,
		OnClose:   p.onClose,
	})
}

func (p *Plugin) onAudioFrame(frame recorder.AudioFrame) {
	p.mu.Lock()
	open := p.isOpen
	session := p.session
	p.mu.Unlock()
	if !open || session == nil {
		return
	}
	session.SendBinary(encodeLittleEndianPCM(frame.Samples))
}

func (p *Plugin) onBeforeStopRecording() {
	p.mu.Lock()
	if p.isClosing {
		p.mu.Unlock()
		return
	}
	p.isClosing = true
	session := p.session
	p.mu.Unlock()

	if session != nil {
		session.Disconnect()
	}
}

func (p *Plugin) onOpen() {
	p.mu.Lock()
	p.isOpen = true
	p.mu.Unlock()

	if p.listener.OnStreamStarted != nil {
		p.listener.OnStreamStarted()
	}
}

func (p *Plugin) onMessage(text string) {
	actions, err := p.decoder.Decode(text)
	if err != nil {
		if p.metrics != nil {
			p.metrics.DecodeErrors.Inc()
		}
		p.forceStopAndClose(err)
		return
	}

	p.mu.Lock()
	next, err := p.streamState.ReceiveActions(actions)
	if err != nil {
		p.mu.Unlock()
		p.forceStopAndClose(err)
		return
	}
	p.streamState = next
	current := p.streamState
	p.mu.Unlock()

	if p.listener.OnStreamUpdated != nil {
		p.listener.OnStreamUpdated(current)
	}
}

// onError records the failure and force-stops the recorder; it does not
// close the session itself — the session is reporting its own transport
// failure and is already on its way to onClose without help.
func (p *Plugin) onError(err *stream.Error) {
	p.forceStop(err)
}

// forceStop records the failure and stops the recorder. It does not
// itself emit on_stream_completed: that always happens from onClose,
// once, after the session's receive loop unwinds.
func (p *Plugin) forceStop(err error) {
	p.mu.Lock()
	if p.streamErr == nil {
		p.streamErr = err
	}
	p.mu.Unlock()

	if p.model != nil && p.model.Stop != nil {
		p.model.Stop()
	}
}

// forceStopAndClose is forceStop plus an explicit session close, used on
// decode/document failures where the stream itself is no longer usable.
// Disconnect is safe to call here even though onMessage runs on the
// session's own receive-loop goroutine: its close-ack wait runs on a
// separate goroutine, so it never blocks behind the loop iteration that
// would otherwise complete it.
func (p *Plugin) forceStopAndClose(err error) {
	p.forceStop(err)

	p.mu.Lock()
	session := p.session
	p.mu.Unlock()
	if session != nil {
		session.Disconnect()
	}
}

func (p *Plugin) onClose() {
	p.mu.Lock()
	wasConnecting := p.isConnecting
	p.isConnecting = false
	p.isOpen = false
	streamErr := p.streamErr
	finalState := p.streamState
	p.mu.Unlock()

	if wasConnecting && p.listener.OnStreamCompleted != nil {
		p.listener.OnStreamCompleted(finalState, streamErr)
	}
}

func encodeLittleEndianPCM(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}
