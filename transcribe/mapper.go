package transcribe

import "fmt"

// AnnotationNotFoundError is returned by Map when an UpdateAnnotation or
// RemoveAnnotation action targets an id that does not exist in the
// pre-image state.
type AnnotationNotFoundError struct {
	Op           string // "update" or "remove"
	AnnotationID string
}

func (e *AnnotationNotFoundError) Error() string {
	return fmt.Sprintf("transcribe: annotation not found for %s: %s", e.Op, e.AnnotationID)
}

// UndoableAction pairs an original action with the ordered list of
// actions that, applied in order against the state that existed
// immediately after Original, reproduce the state that existed
// immediately before it.
type UndoableAction struct {
	Original Action
	Inverse  []Action
}

// Map computes the UndoableAction for each action in actions, evaluated
// against the incrementally-updated pre-image state (i.e. action i's
// inverse is computed against the state produced by actions[:i], not
// against the original pre-state passed in). It fails fast: the first
// action that cannot be mapped aborts the whole batch, matching Apply's
// error-aborts-the-batch behavior in TranscribeStream.receive_actions.
func Map(pre DocumentState, actions []Action) ([]UndoableAction, error) {
	result := make([]UndoableAction, 0, len(actions))
	state := pre

	for _, action := range actions {
		undoable, next, err := mapOne(state, action)
		if err != nil {
			return nil, err
		}
		result = append(result, undoable)
		state = next
	}

	return result, nil
}

func mapOne(state DocumentState, action Action) (UndoableAction, DocumentState, error) {
	switch action.Type {
	case ActionReplaceText:
		return mapReplaceText(state, action)
	case ActionAddAnnotation:
		return mapAddAnnotation(state, action)
	case ActionRemoveAnnotation:
		return mapRemoveAnnotation(state, action)
	case ActionUpdateAnnotation:
		return mapUpdateAnnotation(state, action)
	default:
		return UndoableAction{}, DocumentState{}, fmt.Errorf("transcribe: unknown action type %q", action.Type)
	}
}

func mapReplaceText(state DocumentState, action Action) (UndoableAction, DocumentState, error) {
	next, err := applyReplaceText(state, action)
	if err != nil {
		return UndoableAction{}, DocumentState{}, err
	}

	text := state.runes()
	originalSlice := string(text[action.Start:action.End])
	inverse := Action{
		ID:    action.ID,
		Index: action.Index,
		Type:  ActionReplaceText,
		Start: action.Start,
		End:   action.Start + len([]rune(action.Text)),
		Text:  originalSlice,
	}

	return UndoableAction{Original: action, Inverse: []Action{inverse}}, next, nil
}

func mapAddAnnotation(state DocumentState, action Action) (UndoableAction, DocumentState, error) {
	next, err := applyAddAnnotation(state, action)
	if err != nil {
		return UndoableAction{}, DocumentState{}, err
	}

	inverse := Action{
		ID:           action.ID,
		Index:        action.Index,
		Type:         ActionRemoveAnnotation,
		AnnotationID: action.Annotation.ID,
	}
	return UndoableAction{Original: action, Inverse: []Action{inverse}}, next, nil
}

func mapRemoveAnnotation(state DocumentState, action Action) (UndoableAction, DocumentState, error) {
	found, ok := firstAnnotation(state.Annotations, action.AnnotationID)
	if !ok {
		return UndoableAction{}, DocumentState{}, &AnnotationNotFoundError{Op: "remove", AnnotationID: action.AnnotationID}
	}

	next, err := applyRemoveAnnotation(state, action)
	if err != nil {
		return UndoableAction{}, DocumentState{}, err
	}

	inverse := Action{
		ID:         action.ID,
		Index:      action.Index,
		Type:       ActionAddAnnotation,
		Annotation: found,
	}
	return UndoableAction{Original: action, Inverse: []Action{inverse}}, next, nil
}

func mapUpdateAnnotation(state DocumentState, action Action) (UndoableAction, DocumentState, error) {
	prior, ok := firstAnnotation(state.Annotations, action.Annotation.ID)
	if !ok {
		return UndoableAction{}, DocumentState{}, &AnnotationNotFoundError{Op: "update", AnnotationID: action.Annotation.ID}
	}

	next, err := applyUpdateAnnotation(state, action)
	if err != nil {
		return UndoableAction{}, DocumentState{}, err
	}

	inverse := []Action{
		{ID: action.ID, Index: action.Index, Type: ActionRemoveAnnotation, AnnotationID: action.Annotation.ID},
		{ID: action.ID, Index: action.Index, Type: ActionAddAnnotation, Annotation: prior},
	}
	return UndoableAction{Original: action, Inverse: inverse}, next, nil
}
