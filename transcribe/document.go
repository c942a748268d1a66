package transcribe

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfBounds is returned by Apply when a ReplaceText action's
// range is not a valid half-open range over the current text.
var ErrIndexOutOfBounds = errors.New("transcribe: index out of bounds")

// DocumentState is the immutable snapshot of transcript text and its
// annotations. Annotations are kept in insertion order; ids are not
// required to be globally unique — mutating operations target the first
// match.
type DocumentState struct {
	Text        string
	Annotations []Annotation
}

// runes returns the text as a rune slice so that Start/End can be
// interpreted as Unicode scalar value offsets rather than byte offsets.
func (s DocumentState) runes() []rune {
	return []rune(s.Text)
}

// Apply returns the state produced by applying actions in order to s.
// Annotations are never implicitly re-indexed by a ReplaceText action —
// the document relies on the server to send matching annotation updates
// for any span whose bounds move. This is a documented, intentional
// design decision (see spec Open Questions), not an
// oversight.
func Apply(s DocumentState, actions []Action) (DocumentState, error) {
	for _, action := range actions {
		var err error
		s, err = applyOne(s, action)
		if err != nil {
			return DocumentState{}, err
		}
	}
	return s, nil
}

func applyOne(s DocumentState, action Action) (DocumentState, error) {
	switch action.Type {
	case ActionReplaceText:
		return applyReplaceText(s, action)
	case ActionAddAnnotation:
		return applyAddAnnotation(s, action)
	case ActionUpdateAnnotation:
		return applyUpdateAnnotation(s, action)
	case ActionRemoveAnnotation:
		return applyRemoveAnnotation(s, action)
	default:
		return DocumentState{}, fmt.Errorf("transcribe: unknown action type %q", action.Type)
	}
}

func applyReplaceText(s DocumentState, action Action) (DocumentState, error) {
	start, end := action.Start, action.End
	text := s.runes()
	if start > end || end > len(text) || start < 0 {
		return DocumentState{}, fmt.Errorf("%w: replace_text[%d,%d) against text of length %d", ErrIndexOutOfBounds, start, end, len(text))
	}

	replacement := []rune(action.Text)
	next := make([]rune, 0, len(text)-(end-start)+len(replacement))
	next = append(next, text[:start]...)
	next = append(next, replacement...)
	next = append(next, text[end:]...)

	return DocumentState{Text: string(next), Annotations: s.Annotations}, nil
}

func applyAddAnnotation(s DocumentState, action Action) (DocumentState, error) {
	annotations := make([]Annotation, len(s.Annotations)+1)
	copy(annotations, s.Annotations)
	annotations[len(s.Annotations)] = action.Annotation
	return DocumentState{Text: s.Text, Annotations: annotations}, nil
}

func applyUpdateAnnotation(s DocumentState, action Action) (DocumentState, error) {
	idx := indexOfAnnotation(s.Annotations, action.Annotation.ID)
	if idx < 0 {
		// No-op on state; UndoableMapper is responsible for surfacing
		// AnnotationNotFound for this case (spec §4.6).
		return s, nil
	}
	annotations := make([]Annotation, len(s.Annotations))
	copy(annotations, s.Annotations)
	annotations[idx] = action.Annotation
	return DocumentState{Text: s.Text, Annotations: annotations}, nil
}

func applyRemoveAnnotation(s DocumentState, action Action) (DocumentState, error) {
	annotations := make([]Annotation, 0, len(s.Annotations))
	for _, a := range s.Annotations {
		if a.ID == action.AnnotationID {
			continue
		}
		annotations = append(annotations, a)
	}
	return DocumentState{Text: s.Text, Annotations: annotations}, nil
}

func indexOfAnnotation(annotations []Annotation, id string) int {
	for i, a := range annotations {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func firstAnnotation(annotations []Annotation, id string) (Annotation, bool) {
	idx := indexOfAnnotation(annotations, id)
	if idx < 0 {
		return Annotation{}, false
	}
	return annotations[idx], true
}
