package recorder

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeAudioRecorder struct {
	mu        sync.Mutex
	recording bool
	startErr  error
	frames    []AudioFrame
	onAudio   func(AudioFrame)
}

func (f *fakeAudioRecorder) IsRecording() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recording
}

func (f *fakeAudioRecorder) StartRecording(ctx context.Context, cfg RecordingConfig, onAudio func(AudioFrame)) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.mu.Lock()
	f.recording = true
	f.onAudio = onAudio
	f.mu.Unlock()
	for _, frame := range f.frames {
		onAudio(frame)
	}
	return nil
}

func (f *fakeAudioRecorder) StopRecording() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recording = false
}

func waitForState(t *testing.T, core *Core, want State) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if core.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for state %s, got %s", want, core.State())
}

func TestStartStopLifecycleOrdering(t *testing.T) {
	t.Parallel()

	audio := &fakeAudioRecorder{}
	core := NewCore(audio)

	var mu sync.Mutex
	var events []string
	record := func(name string) { mu.Lock(); events = append(events, name); mu.Unlock() }

	core.Model().OnBeforeStart(func() { record("before_start") })
	core.Model().OnStart(func() { record("start") })
	core.Model().OnBeforeStop(func() { record("before_stop") })
	core.Model().OnStop(func() { record("stop") })

	core.Start(0)
	waitForState(t, core, StateRecording)
	core.Stop(0)
	waitForState(t, core, StateIdle)

	mu.Lock()
	got := append([]string(nil), events...)
	mu.Unlock()

	want := []string{"before_start", "start", "before_stop", "stop"}
	if len(got) != len(want) {
		t.Fatalf("unexpected event sequence: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected event sequence: %v", got)
		}
	}
}

func TestStartFailurePermissionDenied(t *testing.T) {
	// Scenario 4 from spec §8.
	t.Parallel()

	audio := &fakeAudioRecorder{startErr: ErrPermissionDenied}
	core := NewCore(audio)

	var mu sync.Mutex
	var events []string
	record := func(name string) { mu.Lock(); events = append(events, name); mu.Unlock() }

	core.Model().OnBeforeStart(func() { record("before_start") })
	core.Model().OnStart(func() { record("start") })
	core.Model().OnStop(func() { record("stop") })

	var gotErr error
	errDone := make(chan struct{})
	core.Model().OnError(func(err error) {
		gotErr = err
		close(errDone)
	})

	core.Start(0)

	select {
	case <-errDone:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for error callback")
	}

	waitForState(t, core, StateIdle)

	if gotErr != ErrPermissionDenied {
		t.Fatalf("expected ErrPermissionDenied, got %v", gotErr)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 || events[0] != "before_start" {
		t.Fatalf("expected only before_start to fire, got %v", events)
	}
}

func TestAudioFramesDeliveredInOrder(t *testing.T) {
	t.Parallel()

	frames := []AudioFrame{
		{Samples: []int16{1}},
		{Samples: []int16{2}},
		{Samples: []int16{3}},
	}
	audio := &fakeAudioRecorder{frames: frames}
	core := NewCore(audio)

	var mu sync.Mutex
	var got []int16
	core.Model().OnAudioFrame(func(f AudioFrame) {
		mu.Lock()
		got = append(got, f.Samples[0])
		mu.Unlock()
	})

	core.Start(0)
	waitForState(t, core, StateRecording)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("frames delivered out of order: %v", got)
	}
}

func TestReleaseIsIdempotentAndCancelsPendingStart(t *testing.T) {
	t.Parallel()

	audio := &fakeAudioRecorder{}
	core := NewCore(audio)

	var sawError bool
	core.Model().OnError(func(error) { sawError = true })

	core.Start(500)
	core.Release()
	core.Release()

	time.Sleep(50 * time.Millisecond)
	if sawError {
		t.Fatalf("cancellation must not surface as an error")
	}
	if core.State() != StateIdle {
		t.Fatalf("expected Idle after release, got %s", core.State())
	}
}

func TestSetPluginsActivatesAndDeactivatesInOrder(t *testing.T) {
	t.Parallel()

	core := NewCore(&fakeAudioRecorder{})

	var mu sync.Mutex
	var events []string
	record := func(name string) { mu.Lock(); events = append(events, name); mu.Unlock() }

	first := &orderTrackingPlugin{name: "first", record: record}
	second := &orderTrackingPlugin{name: "second", record: record}

	core.SetPlugins([]Plugin{first, second})
	core.SetPlugins(nil)

	mu.Lock()
	defer mu.Unlock()
	want := []string{"activate:first", "activate:second", "deactivate:second", "deactivate:first"}
	if len(events) != len(want) {
		t.Fatalf("unexpected plugin event sequence: %v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("unexpected plugin event sequence: %v", events)
		}
	}
}

type orderTrackingPlugin struct {
	BasePlugin
	name   string
	record func(string)
}

func (p *orderTrackingPlugin) Activate(*Model)   { p.record("activate:" + p.name) }
func (p *orderTrackingPlugin) Deactivate(*Model) { p.record("deactivate:" + p.name) }

func TestStartStopNoOpWhenAlreadyInThatPhase(t *testing.T) {
	t.Parallel()

	core := NewCore(&fakeAudioRecorder{})

	core.Stop(0) // not started: no-op
	if core.State() != StateIdle {
		t.Fatalf("expected Idle, got %s", core.State())
	}

	core.Start(0)
	waitForState(t, core, StateRecording)

	core.Start(0) // already started: no-op
	if core.State() != StateRecording {
		t.Fatalf("expected Recording, got %s", core.State())
	}
}
