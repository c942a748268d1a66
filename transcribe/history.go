package transcribe

// TranscribeStream is the versioned transcript document: the current
// DocumentState plus an operation-history stack (for undo) and an
// undone stack (for redo). The invariant "applying History from an
// empty state in order yields State" holds after every operation below.
type TranscribeStream struct {
	State   DocumentState
	History []UndoableAction
	Undone  []UndoableAction
}

// NewTranscribeStream returns the initial empty stream.
func NewTranscribeStream() TranscribeStream {
	return TranscribeStream{}
}

// ReceiveActions applies actions to the current state and extends the
// history with their computed inverses. A non-empty batch always clears
// Undone — a fresh batch of server-authored actions invalidates any
// previously undone redo tail; an empty batch returns the stream
// unchanged, Undone included. The whole batch is atomic: if either the
// document application or the inverse mapping fails, the stream is
// returned unchanged along with the error of the first action that
// failed.
func (ts TranscribeStream) ReceiveActions(actions []Action) (TranscribeStream, error) {
	if len(actions) == 0 {
		return ts, nil
	}

	newState, err := Apply(ts.State, actions)
	if err != nil {
		return ts, err
	}

	undoables, err := Map(ts.State, actions)
	if err != nil {
		return ts, err
	}

	history := make([]UndoableAction, 0, len(ts.History)+len(undoables))
	history = append(history, ts.History...)
	history = append(history, undoables...)

	return TranscribeStream{State: newState, History: history, Undone: nil}, nil
}

// Undo pops up to n entries from History (clamped to len(History)),
// applies their inverses with the most recently applied action undone
// first, and pushes the popped entries onto Undone in recency order (the
// most recently undone action is at the front of Undone). Each
// individual inverse list is applied in its own stored order — that
// order already reproduces the correct pre-image for its action (see
// the Inverse correctness invariant); only the order across actions is
// reversed.
func (ts TranscribeStream) Undo(n int) TranscribeStream {
	if n <= 0 {
		return ts
	}
	if n > len(ts.History) {
		n = len(ts.History)
	}
	if n == 0 {
		return ts
	}

	split := len(ts.History) - n
	popped := ts.History[split:]
	remaining := ts.History[:split]

	state := ts.State
	for i := len(popped) - 1; i >= 0; i-- {
		for _, inverseAction := range popped[i].Inverse {
			next, err := Apply(state, []Action{inverseAction})
			if err != nil {
				// The inverse was computed against a state this stream
				// actually passed through; a failure here means the
				// stream was constructed inconsistently by the caller.
				// Leave state as-is rather than corrupt it further.
				continue
			}
			state = next
		}
	}

	undone := make([]UndoableAction, n, n+len(ts.Undone))
	for i, j := 0, len(popped)-1; j >= 0; i, j = i+1, j-1 {
		undone[i] = popped[j]
	}
	undone = append(undone, ts.Undone...)

	historyCopy := make([]UndoableAction, len(remaining))
	copy(historyCopy, remaining)

	return TranscribeStream{State: state, History: historyCopy, Undone: undone}
}

// Redo pops up to n entries from the front of Undone (clamped), replays
// their original actions in chronological order (the order they were
// originally received in, which is the reverse of Undone's recency
// order), and pushes them back onto History.
func (ts TranscribeStream) Redo(n int) TranscribeStream {
	if n <= 0 {
		return ts
	}
	if n > len(ts.Undone) {
		n = len(ts.Undone)
	}
	if n == 0 {
		return ts
	}

	popped := ts.Undone[:n]
	remainingUndone := ts.Undone[n:]

	chronological := make([]UndoableAction, n)
	for i, j := 0, n-1; j >= 0; i, j = i+1, j-1 {
		chronological[i] = popped[j]
	}

	state := ts.State
	for _, ua := range chronological {
		next, err := Apply(state, []Action{ua.Original})
		if err != nil {
			continue
		}
		state = next
	}

	history := make([]UndoableAction, 0, len(ts.History)+len(chronological))
	history = append(history, ts.History...)
	history = append(history, chronological...)

	undoneCopy := make([]UndoableAction, len(remainingUndone))
	copy(undoneCopy, remainingUndone)

	return TranscribeStream{State: state, History: history, Undone: undoneCopy}
}
