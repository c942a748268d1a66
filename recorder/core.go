package recorder

import (
	"context"
	"sync"
	"time"
)

// Core drives the recorder lifecycle state machine. A single mutex
// serializes Start, Stop, Release, and SetPlugins: the OS audio session
// is a global resource and parallel transitions would desynchronize the
// state machine from it.
type Core struct {
	mu    sync.Mutex
	model *Model
	audio AudioRecorder

	plugins  []Plugin
	started  bool
	released bool

	taskCancel context.CancelFunc
}

// NewCore builds a Core in State Idle, wired to model.Start/model.Stop so
// plugins that hold only the model can still drive the lifecycle.
func NewCore(audio AudioRecorder) *Core {
	c := &Core{model: NewModel(), audio: audio}
	c.model.Start = func() { c.Start(0) }
	c.model.Stop = func() { c.Stop(0) }
	return c
}

// Model returns the underlying RecorderModel.
func (c *Core) Model() *Model { return c.model }

// State returns the current recorder state.
func (c *Core) State() State { return c.model.State() }

// SetPlugins atomically deactivates the previous plugin set in reverse
// registration order, then activates the new set in order.
func (c *Core) SetPlugins(plugins []Plugin) {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous := c.plugins
	for i := len(previous) - 1; i >= 0; i-- {
		previous[i].Deactivate(c.model)
	}
	for _, p := range plugins {
		p.Activate(c.model)
	}
	c.plugins = plugins
}

// Start transitions Idle -> Loading, dispatches before_start, and
// schedules a delayed task that starts the AudioSource and transitions
// Loading -> Recording. A no-op if already started or released.
func (c *Core) Start(delayMs int) {
	c.mu.Lock()
	if c.released || c.started {
		c.mu.Unlock()
		return
	}
	c.started = true

	ctx, cancel := context.WithCancel(context.Background())
	c.taskCancel = cancel

	c.model.UpdateState(StateLoading)
	c.model.invokeBeforeStart()
	c.mu.Unlock()

	go c.runDelayedStart(ctx, delayMs)
}

func (c *Core) runDelayedStart(ctx context.Context, delayMs int) {
	if delayMs > 0 {
		timer := time.NewTimer(time.Duration(delayMs) * time.Millisecond)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-ctx.Done():
		return
	default:
	}

	err := c.audio.StartRecording(ctx, DefaultRecordingConfig(), func(frame AudioFrame) {
		c.model.invokeAudioFrame(frame)
	})
	if err != nil {
		c.started = false
		c.model.UpdateState(StateIdle)
		c.model.invokeError(err)
		return
	}

	c.model.UpdateState(StateRecording)
	c.model.invokeStart()
}

// Stop transitions Recording -> Processing, dispatches before_stop,
// waits delayMs, stops the AudioSource, cancels any still-pending
// delayed-start task, dispatches stop, and transitions Processing ->
// Idle. A no-op if not started or released.
func (c *Core) Stop(delayMs int) {
	c.mu.Lock()
	if c.released || !c.started {
		c.mu.Unlock()
		return
	}

	c.model.UpdateState(StateProcessing)
	c.model.invokeBeforeStop()
	cancel := c.taskCancel
	c.mu.Unlock()

	if delayMs > 0 {
		time.Sleep(time.Duration(delayMs) * time.Millisecond)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return
	}

	c.audio.StopRecording()
	if cancel != nil {
		cancel()
	}
	c.started = false
	c.model.invokeStop()
	c.model.UpdateState(StateIdle)
}

// Release deactivates plugins in reverse order, cancels any pending
// task, stops the audio source, and marks the core released. Idempotent.
func (c *Core) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return
	}

	previous := c.plugins
	for i := len(previous) - 1; i >= 0; i-- {
		previous[i].Deactivate(c.model)
	}
	c.plugins = nil

	if c.taskCancel != nil {
		c.taskCancel()
	}
	c.audio.StopRecording()
	c.started = false
	c.released = true
	c.model.UpdateState(StateIdle)
}
