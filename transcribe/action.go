// Package transcribe implements the annotated transcript document: a
// stream of server-authored actions is applied to produce new document
// state, and an inverse is computed for every action so that arbitrary
// depth undo/redo is possible without replaying history from scratch.
package transcribe

// ActionType tags the kind of mutation an Action performs.
type ActionType string

const (
	ActionReplaceText      ActionType = "replace_text"
	ActionAddAnnotation    ActionType = "add_annotation"
	ActionUpdateAnnotation ActionType = "update_annotation"
	ActionRemoveAnnotation ActionType = "remove_annotation"
)

// AnnotationKind tags the schema of an Annotation's payload. The schema is
// extensible: a decoder that encounters an unrecognized kind must reject
// the message (see DecodeError) rather than silently dropping it.
type AnnotationKind string

const (
	AnnotationKindTranscriptionTentative AnnotationKind = "transcription_tentative"
	AnnotationKindIntent                 AnnotationKind = "intent"
	AnnotationKindEntity                 AnnotationKind = "entity"
)

// IntentStatus is the payload for an AnnotationKindIntent annotation.
type IntentStatus string

const (
	IntentStatusPending    IntentStatus = "pending"
	IntentStatusRecognized IntentStatus = "recognized"
)

// EntityType is the payload for an AnnotationKindEntity annotation. The
// set is open-ended in the protocol; "name" is the only value spec.md
// names explicitly.
type EntityType string

const (
	EntityTypeName EntityType = "name"
)

// Annotation is a typed span [Start, End) over the document text.
// Start/End count Unicode scalar values (runes), not bytes, matching the
// server's counting convention.
type Annotation struct {
	ID    string
	Start int
	End   int
	Kind  AnnotationKind

	// IntentStatus is set when Kind == AnnotationKindIntent.
	IntentStatus IntentStatus
	// EntityType and EntityText are set when Kind == AnnotationKindEntity.
	EntityType EntityType
	EntityText string
}

// Action is the tagged sum of document mutations a server can send. Only
// the fields relevant to Type are meaningful; the zero value of the
// others is ignored.
type Action struct {
	// ID is the server-assigned action id; Index is its monotonic
	// position in the action stream.
	ID    string
	Index int
	Type  ActionType

	// ReplaceText fields.
	Start int
	End   int
	Text  string

	// AddAnnotation / UpdateAnnotation fields.
	Annotation Annotation

	// RemoveAnnotation field.
	AnnotationID string
}
