package recorder

import "sync"

// Model holds recorder state, the lifecycle callback registry, and a
// published stream of state changes. It has no lifecycle logic of its
// own; RecorderCore drives transitions and calls the invoke_* methods.
type Model struct {
	mu    sync.Mutex
	state State

	stateUpdate *callbackChannel[State]
	beforeStart *callbackChannel[struct{}]
	start       *callbackChannel[struct{}]
	beforeStop  *callbackChannel[struct{}]
	stop        *callbackChannel[struct{}]
	errorCh     *callbackChannel[error]
	audioFrame  *callbackChannel[AudioFrame]

	subMu       sync.Mutex
	nextSub     uint64
	subscribers map[uint64]chan State

	// Start and Stop are optional imperative forwarders installed by the
	// embedding RecorderCore; unset until the core wires itself in.
	Start func()
	Stop  func()
}

// NewModel returns a Model in State Idle with empty callback channels.
func NewModel() *Model {
	return &Model{
		state:       StateIdle,
		stateUpdate: newCallbackChannel[State](),
		beforeStart: newCallbackChannel[struct{}](),
		start:       newCallbackChannel[struct{}](),
		beforeStop:  newCallbackChannel[struct{}](),
		stop:        newCallbackChannel[struct{}](),
		errorCh:     newCallbackChannel[error](),
		audioFrame:  newCallbackChannel[AudioFrame](),
		subscribers: make(map[uint64]chan State),
	}
}

// State returns the current recorder state.
func (m *Model) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers for published state changes. The returned cancel
// func unregisters the subscription; callers must call it to avoid
// leaking the channel.
func (m *Model) Subscribe() (<-chan State, func()) {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	ch := make(chan State, 8)
	m.subscribers[id] = ch
	m.subMu.Unlock()

	cancel := func() {
		m.subMu.Lock()
		delete(m.subscribers, id)
		m.subMu.Unlock()
	}
	return ch, cancel
}

func (m *Model) publish(state State) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for _, ch := range m.subscribers {
		select {
		case ch <- state:
		default:
		}
	}
}

// UpdateState stores the new state and dispatches state_update callbacks.
// Callers must serialize calls to UpdateState themselves; RecorderCore
// does this via its lifecycle mutex.
func (m *Model) UpdateState(state State) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()

	m.publish(state)
	m.stateUpdate.dispatch(state)
}

func (m *Model) OnStateUpdate(cb func(State)) Handle    { return m.stateUpdate.register(cb) }
func (m *Model) OnBeforeStart(cb func()) Handle         { return m.beforeStart.register(func(struct{}) { cb() }) }
func (m *Model) OnStart(cb func()) Handle               { return m.start.register(func(struct{}) { cb() }) }
func (m *Model) OnBeforeStop(cb func()) Handle          { return m.beforeStop.register(func(struct{}) { cb() }) }
func (m *Model) OnStop(cb func()) Handle                { return m.stop.register(func(struct{}) { cb() }) }
func (m *Model) OnError(cb func(error)) Handle          { return m.errorCh.register(cb) }
func (m *Model) OnAudioFrame(cb func(AudioFrame)) Handle { return m.audioFrame.register(cb) }

func (m *Model) Deregister(event string, h Handle) {
	switch event {
	case "state_update":
		m.stateUpdate.deregister(h)
	case "before_start":
		m.beforeStart.deregister(h)
	case "start":
		m.start.deregister(h)
	case "before_stop":
		m.beforeStop.deregister(h)
	case "stop":
		m.stop.deregister(h)
	case "error":
		m.errorCh.deregister(h)
	case "audio_frame":
		m.audioFrame.deregister(h)
	}
}

func (m *Model) invokeBeforeStart() { m.beforeStart.dispatch(struct{}{}) }
func (m *Model) invokeStart()       { m.start.dispatch(struct{}{}) }
func (m *Model) invokeBeforeStop()  { m.beforeStop.dispatch(struct{}{}) }
func (m *Model) invokeStop()        { m.stop.dispatch(struct{}{}) }
func (m *Model) invokeAudioFrame(f AudioFrame) { m.audioFrame.dispatch(f) }

// invokeError dispatches to the error channel, filtering the cancellation
// sentinel: a cancelled delayed task is never reported as an error.
func (m *Model) invokeError(err error) {
	if err == nil || err == ErrCancelled {
		return
	}
	m.errorCh.dispatch(err)
}
