package core

import "github.com/book-expert/events"

// VoiceCloneRequestedEvent asks the service to clone a voice from an audio
// sample previously uploaded to the sample object store.
type VoiceCloneRequestedEvent struct {
	Header events.EventHeader `json:"header"`

	// SampleKey is the object-store key of the raw audio sample.
	SampleKey string `json:"sample_key"`

	// VoiceName is the display label for the new voice.
	VoiceName string `json:"voice_name"`

	// PreviewText, when non-empty, is synthesized with the new voice and
	// the resulting audio is uploaded to the preview object store.
	PreviewText string `json:"preview_text,omitempty"`
}

// VoiceClonedEvent is the reply published for every clone request,
// successful or not. Failures travel in Status/ErrorDetail instead of
// being redelivered forever.
type VoiceClonedEvent struct {
	Header events.EventHeader `json:"header"`

	Status           CloneStatus `json:"status"`
	VoiceID          string      `json:"voice_id,omitempty"`
	PreviewKey       string      `json:"preview_key,omitempty"`
	Message          string      `json:"message"`
	CleanupPerformed bool        `json:"cleanup_performed"`
	ErrorDetail      string      `json:"error_detail,omitempty"`
}
