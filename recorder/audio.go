package recorder

import (
	"context"
	"math"
)

// AudioFrame is a finite, ordered, immutable sequence of signed 16-bit
// mono PCM samples captured at SampleRate.
type AudioFrame struct {
	Samples    []int16
	SampleRate int
}

// RMS is the root-mean-square volume of the frame, 0.0 for an empty frame.
func (f AudioFrame) RMS() float64 {
	if len(f.Samples) == 0 {
		return 0.0
	}
	var sumSquares float64
	for _, s := range f.Samples {
		v := float64(s)
		sumSquares += v * v
	}
	return math.Sqrt(sumSquares / float64(len(f.Samples)))
}

// RecordingConfig describes the capture format requested of an
// AudioRecorder. Only one combination is supported by this core; any
// other is rejected with UnsupportedAudioFormatError.
type RecordingConfig struct {
	SampleRate  int
	Channels    int
	Interleaved bool
}

// DefaultRecordingConfig is the only config this core accepts: 16 kHz,
// mono, PCM s16, non-interleaved.
func DefaultRecordingConfig() RecordingConfig {
	return RecordingConfig{SampleRate: 16000, Channels: 1, Interleaved: false}
}

// Validate reports an UnsupportedAudioFormatError unless c matches
// DefaultRecordingConfig exactly. AudioRecorder implementations are
// expected to call this before starting capture.
func (c RecordingConfig) Validate() error {
	want := DefaultRecordingConfig()
	if c.SampleRate != want.SampleRate || c.Channels != want.Channels || c.Interleaved != want.Interleaved {
		return &UnsupportedAudioFormatError{Message: "only 16kHz mono non-interleaved PCM s16 is supported"}
	}
	return nil
}

// AudioRecorder is the audio-capture capability consumed by RecorderCore.
// It abstracts the OS audio session and microphone permission APIs.
type AudioRecorder interface {
	IsRecording() bool
	// StartRecording begins capture. onAudio is invoked once per frame, in
	// capture order, drained serially; it must not be called concurrently
	// with itself. May fail with ErrAlreadyRecording, ErrPermissionDenied,
	// or *UnsupportedAudioFormatError.
	StartRecording(ctx context.Context, cfg RecordingConfig, onAudio func(AudioFrame)) error
	// StopRecording is infallible and idempotent.
	StopRecording()
}
