package bootstrap

import (
	"context"
	"sync"
	"testing"

	"speechcore/internal/config"
	"speechcore/recorder"
)

type fakeAudioRecorder struct {
	mu        sync.Mutex
	recording bool
}

func (f *fakeAudioRecorder) IsRecording() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recording
}

func (f *fakeAudioRecorder) StartRecording(ctx context.Context, cfg recorder.RecordingConfig, onAudio func(recorder.AudioFrame)) error {
	f.mu.Lock()
	f.recording = true
	f.mu.Unlock()
	return nil
}

func (f *fakeAudioRecorder) StopRecording() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recording = false
}

func TestBuildAssemblesReadyCore(t *testing.T) {
	t.Parallel()

	sdk := Build(Options{
		Config:        config.DefaultConfig(),
		AudioRecorder: &fakeAudioRecorder{},
	})

	if sdk.Core == nil {
		t.Fatal("expected a recorder core")
	}
	if sdk.Core.State() != recorder.StateIdle {
		t.Fatalf("expected Idle, got %v", sdk.Core.State())
	}
	if sdk.Plugin == nil {
		t.Fatal("expected the streaming transcription plugin to be wired")
	}
	if sdk.Transcribe == nil {
		t.Fatal("expected the synchronous transcribe service to be wired")
	}
	if sdk.Metrics == nil {
		t.Fatal("expected metrics instruments to be built")
	}
}

func TestBuildDefaultsConfigWhenNil(t *testing.T) {
	t.Parallel()

	sdk := Build(Options{AudioRecorder: &fakeAudioRecorder{}})
	if sdk.Config == nil {
		t.Fatal("expected a default config")
	}
	if sdk.Config.Stream.RetryCount != config.DefaultConfig().Stream.RetryCount {
		t.Fatalf("expected default retry count, got %d", sdk.Config.Stream.RetryCount)
	}
}
