package recorder

import (
	"errors"
	"fmt"
)

// ErrPermissionDenied is raised by an AudioRecorder when the host OS has
// not granted microphone access.
var ErrPermissionDenied = errors.New("recorder: permission denied")

// ErrAlreadyRecording is raised when the OS audio session is already held
// by another recorder in the process.
var ErrAlreadyRecording = errors.New("recorder: already recording")

// ErrCancelled is the sentinel for a delayed start/stop task that was
// cancelled by a subsequent release or transition. It is never delivered
// to an error callback; the error channel must filter it out.
var ErrCancelled = errors.New("recorder: cancelled")

// UnsupportedAudioFormatError is raised when a RecordingConfig does not
// match the single supported capture format.
type UnsupportedAudioFormatError struct {
	Message string
}

func (e *UnsupportedAudioFormatError) Error() string {
	return fmt.Sprintf("recorder: unsupported audio format: %s", e.Message)
}
