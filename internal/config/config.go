package config

import (
	"time"
)

// Config is the host-application-facing configuration for a speechcore
// SDK instance: the streaming endpoint, retry/handshake policy, and the
// synchronous transcribe collaborator. It has no bearing on the recorder
// or document state machines, which take no configuration of their own.
type Config struct {
	Stream     StreamConfig     `toml:"stream"`
	ClientInfo ClientInfoConfig `toml:"client_info"`
	Transcribe TranscribeConfig `toml:"transcribe"`
}

// StreamConfig controls AsyncSession's connect-retry and graceful-close
// policy.
type StreamConfig struct {
	URL                    string        `toml:"url"`
	RetryCount             int           `toml:"retry_count"`
	DisconnectTimeout      time.Duration `toml:"disconnect_timeout"`
	DisconnectPollInterval time.Duration `toml:"disconnect_poll_interval"`
}

// ClientInfoConfig fills the ClientConfiguration handshake message sent
// immediately after a streaming connection opens.
type ClientInfoConfig struct {
	Model               string `toml:"model"`
	VoiceEditingEnabled bool   `toml:"voice_editing_enabled"`
}

// TranscribeConfig controls the synchronous transcribeservice collaborator.
type TranscribeConfig struct {
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	MaxUploadBytes int    `toml:"max_upload_bytes"`
}

// DefaultConfig returns the configuration used when no config file is
// present: a 5 retry streaming policy against no endpoint (the caller
// must set Stream.URL) and OpenAI's documented 25 MiB upload ceiling for
// synchronous transcription.
func DefaultConfig() *Config {
	return &Config{
		Stream: StreamConfig{
			RetryCount:             5,
			DisconnectTimeout:      5000 * time.Millisecond,
			DisconnectPollInterval: 50 * time.Millisecond,
		},
		ClientInfo: ClientInfoConfig{
			VoiceEditingEnabled: true,
		},
		Transcribe: TranscribeConfig{
			Model:          "whisper-1",
			MaxUploadBytes: 25 * 1024 * 1024,
		},
	}
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Stream.RetryCount == 0 {
		c.Stream.RetryCount = defaults.Stream.RetryCount
	}
	if c.Stream.DisconnectTimeout == 0 {
		c.Stream.DisconnectTimeout = defaults.Stream.DisconnectTimeout
	}
	if c.Stream.DisconnectPollInterval == 0 {
		c.Stream.DisconnectPollInterval = defaults.Stream.DisconnectPollInterval
	}
	if c.Transcribe.Model == "" {
		c.Transcribe.Model = defaults.Transcribe.Model
	}
	if c.Transcribe.MaxUploadBytes == 0 {
		c.Transcribe.MaxUploadBytes = defaults.Transcribe.MaxUploadBytes
	}
}
