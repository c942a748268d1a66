// Package bootstrap wires an SDK instance together: config, logging,
// metrics, the recorder core, the streaming transcription plugin, and
// the synchronous transcribe collaborator. It is the one place that
// knows about every package in this module at once; everything else
// only depends on the interfaces it needs.
package bootstrap

import (
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"speechcore/internal/config"
	"speechcore/internal/logging"
	"speechcore/internal/metrics"
	"speechcore/plugins/transcription"
	"speechcore/recorder"
	"speechcore/stream"
	"speechcore/transcribeservice"
)

// SDK is the assembled runtime graph an embedding application holds
// onto for the lifetime of a capture session.
type SDK struct {
	Core       *recorder.Core
	Plugin     *transcription.Plugin
	Transcribe *transcribeservice.Service
	Config     *config.Config
	Metrics    *metrics.Metrics
	Log        zerolog.Logger
}

// Options configures Build. AudioRecorder is required: there is no
// sensible cross-platform default the SDK core can assume.
type Options struct {
	Config        *config.Config
	AudioRecorder recorder.AudioRecorder
	Registerer    prometheus.Registerer
	Listener      transcription.Listener
	LogLevel      zerolog.Level
}

// Build assembles an SDK instance per Options. The returned Core starts
// in State Idle with the streaming transcription plugin already
// attached; Transcribe is ready for one-shot synchronous calls.
func Build(opts Options) *SDK {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	log := logging.New(opts.LogLevel)
	m := metrics.New(opts.Registerer)

	core := recorder.NewCore(opts.AudioRecorder)

	plugin := transcription.NewPlugin(
		func() *stream.Session {
			session := stream.NewSession(stream.NewWebSocketTransport(), streamHooks(cfg))
			session.DisconnectTimeout = cfg.Stream.DisconnectTimeout
			session.DisconnectPollInterval = cfg.Stream.DisconnectPollInterval
			session.Metrics = m
			return session
		},
		opts.Listener,
	).WithMetrics(m)

	core.SetPlugins([]recorder.Plugin{plugin})

	svc := transcribeservice.New(transcribeservice.Config{
		APIKey:         cfg.Transcribe.APIKey,
		Model:          cfg.Transcribe.Model,
		MaxUploadBytes: cfg.Transcribe.MaxUploadBytes,
	})

	return &SDK{
		Core:       core,
		Plugin:     plugin,
		Transcribe: svc,
		Config:     cfg,
		Metrics:    m,
		Log:        log,
	}
}

func streamHooks(cfg *config.Config) stream.Hooks {
	reportID := uuid.NewString()
	return stream.Hooks{
		CreateRequest: func(attempt int) stream.Request {
			return stream.Request{URL: cfg.Stream.URL}
		},
		RetryCount: cfg.Stream.RetryCount,
		OpenMessage: func() (string, bool) {
			return transcription.BuildOpenMessage(transcription.OpenMessageOptions{
				Model:               cfg.ClientInfo.Model,
				ReportID:            reportID,
				VoiceEditingEnabled: cfg.ClientInfo.VoiceEditingEnabled,
			}), true
		},
		CloseMessage: func() (string, bool) {
			return transcription.BuildCloseMessage(transcription.CloseMessageOptions{
				ReportID: reportID,
			}), true
		},
	}
}
