// Package config provides the configuration structure for the voice-service.
package config

import (
	"fmt"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// NATSConfig holds the configuration for NATS.
type NATSConfig struct {
	URL                        string `toml:"url"`
	CloneStreamName            string `toml:"clone_stream_name"`
	CloneConsumerName          string `toml:"clone_consumer_name"`
	VoiceCloneRequestedSubject string `toml:"voice_clone_requested_subject"`
	VoiceClonedSubject         string `toml:"voice_cloned_subject"`
	SampleObjectStoreBucket    string `toml:"sample_object_store_bucket"`
	PreviewObjectStoreBucket   string `toml:"preview_object_store_bucket"`
}

// ElevenLabsConfig holds the provider connection settings. The API key
// itself comes from the environment at startup, never from the file.
type ElevenLabsConfig struct {
	BaseURL        string `toml:"base_url"`
	ModelID        string `toml:"model_id"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// QuotaConfig holds the voice-quota lifecycle knobs.
type QuotaConfig struct {
	// MaxCustomVoices is the provider ceiling on custom voices; 30 on
	// the standard plan.
	MaxCustomVoices int `toml:"max_custom_voices"`

	// KeepCount is the eviction target after a quota hit, kept below
	// the ceiling to leave headroom for subsequent clones.
	KeepCount int `toml:"keep_count"`

	// MinSampleBytes is the provider-side minimum audio sample size.
	MinSampleBytes int `toml:"min_sample_bytes"`

	// MaxAttempts and BackoffCapSeconds bound transient-error retries
	// of the clone call.
	MaxAttempts       int `toml:"max_attempts"`
	BackoffCapSeconds int `toml:"backoff_cap_seconds"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// Config is the root configuration structure.
type Config struct {
	NATS       NATSConfig       `toml:"nats"`
	ElevenLabs ElevenLabsConfig `toml:"elevenlabs"`
	Quota      QuotaConfig      `toml:"quota"`
	Paths      PathsConfig      `toml:"paths"`
}

// Load loads the configuration for the voice-service.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	return &cfg, nil
}
