// Package core defines the domain types and interfaces for the voice service.
package core

import "context"

// ObjectStore defines the interface for interacting with a key-value blob store.
// Audio samples arrive through it and synthesized previews leave through it.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// VoiceLister fetches the provider's full voice inventory.
type VoiceLister interface {
	ListVoices(ctx context.Context) ([]Voice, error)
}

// VoiceCloner creates a new custom voice from a raw audio sample.
// On success it returns the provider-assigned voice id.
type VoiceCloner interface {
	AddVoice(ctx context.Context, name string, sample []byte) (string, error)
}

// VoiceDeleter removes a single voice from the provider account.
type VoiceDeleter interface {
	DeleteVoice(ctx context.Context, voiceID string) error
}

// SpeechSynthesizer converts text to audio using an existing voice.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, voiceID, text string) ([]byte, error)
}

// VoiceProvider is the full surface the service needs from the remote
// voice API. Components depend on the narrow interfaces above; this
// composition exists for wiring at the boundary.
type VoiceProvider interface {
	VoiceLister
	VoiceCloner
	VoiceDeleter
	SpeechSynthesizer
}

// CloneVoiceService is the single operation the worker needs from the
// clone coordinator. All provider and quota failures are reported inside
// the returned CloneOutcome, never as an error.
type CloneVoiceService interface {
	CloneVoice(ctx context.Context, audio []byte, voiceName string) CloneOutcome
}
