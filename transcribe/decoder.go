package transcribe

import (
	"encoding/json"
	"fmt"
)

// DecodeError reports why a server message could not be turned into an
// Action. It is always fatal for the message that produced it — the
// decoder never silently drops an action it does not understand.
type DecodeError struct {
	Path   string
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("transcribe: decode error: %s", e.Reason)
	}
	return fmt.Sprintf("transcribe: decode error at %s: %s", e.Path, e.Reason)
}

func missingField(path string) *DecodeError {
	return &DecodeError{Path: path, Reason: "missing required field"}
}

// wireEnvelope mirrors the server protocol: {actions: [...]}.
type wireEnvelope struct {
	Actions []wireAction `json:"actions"`
}

type wireAction struct {
	ID         string          `json:"id"`
	Index      int             `json:"index"`
	Type       string          `json:"type"`
	Parameters json.RawMessage `json:"parameters"`
}

type wireReplaceTextParams struct {
	Start *int    `json:"start"`
	End   *int    `json:"end"`
	Text  *string `json:"text"`
}

type wireAnnotationParams struct {
	ID         *string `json:"id"`
	Start      *int    `json:"start"`
	End        *int    `json:"end"`
	Kind       *string `json:"kind"`
	Status     *string `json:"status"`
	EntityType *string `json:"entity_type"`
	Text       *string `json:"text"`
}

type wireRemoveAnnotationParams struct {
	AnnotationID *string `json:"annotation_id"`
}

// MessageDecoder is a pure, synchronous decoder from server message text
// to a sequence of Action values. It is hand-written against the small
// tagged-union wire model above rather than derived from a schema
// generator, so that decoding behavior stays stable and identical across
// every implementation of this SDK core.
type MessageDecoder struct{}

// NewMessageDecoder returns a MessageDecoder. It carries no state.
func NewMessageDecoder() MessageDecoder {
	return MessageDecoder{}
}

// Decode parses a server message into the Actions it carries, preserving
// the order they appeared in within the message.
func (MessageDecoder) Decode(text string) ([]Action, error) {
	var envelope wireEnvelope
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		return nil, &DecodeError{Reason: fmt.Sprintf("invalid message envelope: %v", err)}
	}

	actions := make([]Action, 0, len(envelope.Actions))
	for i, wa := range envelope.Actions {
		action, err := decodeOne(i, wa)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, nil
}

func decodeOne(index int, wa wireAction) (Action, error) {
	path := fmt.Sprintf("actions[%d]", index)

	switch wa.Type {
	case "replace_text":
		return decodeReplaceText(path, wa)
	case "add_annotation":
		return decodeAnnotationAction(path, wa, ActionAddAnnotation)
	case "update_annotation":
		return decodeAnnotationAction(path, wa, ActionUpdateAnnotation)
	case "remove_annotation":
		return decodeRemoveAnnotation(path, wa)
	default:
		return Action{}, &DecodeError{Path: path + ".type", Reason: fmt.Sprintf("unknown action type %q", wa.Type)}
	}
}

func decodeReplaceText(path string, wa wireAction) (Action, error) {
	var params wireReplaceTextParams
	if err := json.Unmarshal(wa.Parameters, &params); err != nil {
		return Action{}, &DecodeError{Path: path + ".parameters", Reason: err.Error()}
	}
	if params.Start == nil {
		return Action{}, missingField(path + ".parameters.start")
	}
	if params.End == nil {
		return Action{}, missingField(path + ".parameters.end")
	}
	if params.Text == nil {
		return Action{}, missingField(path + ".parameters.text")
	}

	return Action{
		ID:    wa.ID,
		Index: wa.Index,
		Type:  ActionReplaceText,
		Start: *params.Start,
		End:   *params.End,
		Text:  *params.Text,
	}, nil
}

func decodeAnnotationAction(path string, wa wireAction, actionType ActionType) (Action, error) {
	var params wireAnnotationParams
	if err := json.Unmarshal(wa.Parameters, &params); err != nil {
		return Action{}, &DecodeError{Path: path + ".parameters", Reason: err.Error()}
	}
	if params.ID == nil {
		return Action{}, missingField(path + ".parameters.id")
	}
	if params.Start == nil {
		return Action{}, missingField(path + ".parameters.start")
	}
	if params.End == nil {
		return Action{}, missingField(path + ".parameters.end")
	}
	if params.Kind == nil {
		return Action{}, missingField(path + ".parameters.kind")
	}

	annotation := Annotation{
		ID:    *params.ID,
		Start: *params.Start,
		End:   *params.End,
	}

	switch *params.Kind {
	case "transcription_tentative":
		annotation.Kind = AnnotationKindTranscriptionTentative
	case "intent":
		if params.Status == nil {
			return Action{}, missingField(path + ".parameters.status")
		}
		status, err := decodeIntentStatus(*params.Status)
		if err != nil {
			return Action{}, &DecodeError{Path: path + ".parameters.status", Reason: err.Error()}
		}
		annotation.Kind = AnnotationKindIntent
		annotation.IntentStatus = status
	case "entity":
		if params.EntityType == nil {
			return Action{}, missingField(path + ".parameters.entity_type")
		}
		if params.Text == nil {
			return Action{}, missingField(path + ".parameters.text")
		}
		annotation.Kind = AnnotationKindEntity
		annotation.EntityType = EntityType(*params.EntityType)
		annotation.EntityText = *params.Text
	default:
		return Action{}, &DecodeError{Path: path + ".parameters.kind", Reason: fmt.Sprintf("unknown annotation kind %q", *params.Kind)}
	}

	return Action{
		ID:         wa.ID,
		Index:      wa.Index,
		Type:       actionType,
		Annotation: annotation,
	}, nil
}

func decodeIntentStatus(raw string) (IntentStatus, error) {
	switch raw {
	case "pending":
		return IntentStatusPending, nil
	case "recognized":
		return IntentStatusRecognized, nil
	default:
		return "", fmt.Errorf("unknown intent status %q", raw)
	}
}

func decodeRemoveAnnotation(path string, wa wireAction) (Action, error) {
	var params wireRemoveAnnotationParams
	if err := json.Unmarshal(wa.Parameters, &params); err != nil {
		return Action{}, &DecodeError{Path: path + ".parameters", Reason: err.Error()}
	}
	if params.AnnotationID == nil {
		return Action{}, missingField(path + ".parameters.annotation_id")
	}

	return Action{
		ID:           wa.ID,
		Index:        wa.Index,
		Type:         ActionRemoveAnnotation,
		AnnotationID: *params.AnnotationID,
	}, nil
}
