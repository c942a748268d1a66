package transcription

import "encoding/json"

// OpenMessageOptions configures the ClientConfiguration handshake sent
// immediately after a streaming connection opens.
type OpenMessageOptions struct {
	Model               string
	ReportID            string
	VoiceEditingEnabled bool
}

type openMessageWire struct {
	Type     string               `json:"type"`
	Model    string               `json:"model,omitempty"`
	ReportID string               `json:"reportId,omitempty"`
	Features *openMessageFeatures `json:"features,omitempty"`
}

type openMessageFeatures struct {
	VoiceEditing openMessageVoiceEditing `json:"voiceEditing"`
}

type openMessageVoiceEditing struct {
	IsEnabled bool `json:"isEnabled"`
}

// BuildOpenMessage renders the client -> server ClientConfiguration
// message sent right after a streaming connection opens.
func BuildOpenMessage(opts OpenMessageOptions) string {
	wire := openMessageWire{
		Type:     "ClientConfiguration",
		Model:    opts.Model,
		ReportID: opts.ReportID,
		Features: &openMessageFeatures{VoiceEditing: openMessageVoiceEditing{IsEnabled: opts.VoiceEditingEnabled}},
	}
	data, _ := json.Marshal(wire)
	return string(data)
}

// CloseMessageOptions configures the end-of-stream message sent when a
// session begins a graceful close.
type CloseMessageOptions struct {
	ReportID string
}

type closeMessageWire struct {
	Type     string `json:"type"`
	ReportID string `json:"reportId,omitempty"`
}

// BuildCloseMessage renders the client -> server CloseStream message
// sent when disconnect begins; the server is expected to ack by closing
// its end of the socket.
func BuildCloseMessage(opts CloseMessageOptions) string {
	wire := closeMessageWire{Type: "CloseStream", ReportID: opts.ReportID}
	data, _ := json.Marshal(wire)
	return string(data)
}
