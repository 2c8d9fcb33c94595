// main package for the voice-service
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"

	"github.com/vocalbrand/voice-service/internal/config"
	"github.com/vocalbrand/voice-service/internal/elevenlabs"
	"github.com/vocalbrand/voice-service/internal/objectstore"
	"github.com/vocalbrand/voice-service/internal/voicequota"
	"github.com/vocalbrand/voice-service/internal/worker"
)

// envElevenLabsAPIKey names the environment variable carrying the
// provider API key. The key never lives in the config file.
const envElevenLabsAPIKey = "ELEVENLABS_API_KEY"

// ErrAPIKeyNotSet indicates the provider API key is missing from the environment.
var ErrAPIKeyNotSet = errors.New("ELEVENLABS_API_KEY environment variable not set")

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, "voice-service-bootstrap.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create bootstrap logger: %w", err)
	}

	return log, nil
}

func run() error {
	// 1. Create a temporary logger for the bootstrap process
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	bootstrapLog.Info("Bootstrap logger created.")

	// 2. Load configuration using the central configurator
	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	bootstrapLog.Info("Configuration loaded successfully.")

	// 3. Initialize the final logger based on the loaded configuration
	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	return serve(cfg, finalLog)
}

// serve wires the provider client, the quota lifecycle components and the
// NATS worker, then runs until interrupted.
func serve(cfg *config.Config, log *logger.Logger) error {
	apiKey := os.Getenv(envElevenLabsAPIKey)
	if apiKey == "" {
		log.Error("Provider API key not set, refusing to start.")

		return ErrAPIKeyNotSet
	}

	provider := elevenlabs.New(
		cfg.ElevenLabs.BaseURL,
		apiKey,
		time.Duration(cfg.ElevenLabs.TimeoutSeconds)*time.Second,
		elevenlabs.WithModelID(cfg.ElevenLabs.ModelID),
		elevenlabs.WithLogger(log),
	)

	natsConnection, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	samples, err := objectstore.New(jetstreamContext, cfg.NATS.SampleObjectStoreBucket)
	if err != nil {
		return fmt.Errorf("failed to open sample bucket: %w", err)
	}

	previews, err := objectstore.New(jetstreamContext, cfg.NATS.PreviewObjectStoreBucket)
	if err != nil {
		return fmt.Errorf("failed to open preview bucket: %w", err)
	}

	directory := voicequota.NewDirectory(provider, log)
	guard := voicequota.NewGuard(directory, cfg.Quota.MaxCustomVoices, log)
	evictor := voicequota.NewEvictor(directory, provider, log)
	coordinator := voicequota.NewCoordinator(provider, guard, evictor, voicequota.Policy{
		KeepCount:      cfg.Quota.KeepCount,
		MinSampleBytes: cfg.Quota.MinSampleBytes,
		MaxAttempts:    cfg.Quota.MaxAttempts,
		InitialBackoff: 0,
		BackoffCap:     time.Duration(cfg.Quota.BackoffCapSeconds) * time.Second,
	}, log)

	cloneWorker, err := worker.NewNatsWorker(
		natsConnection,
		cfg.NATS.VoiceCloneRequestedSubject,
		samples,
		previews,
		coordinator,
		provider,
		log,
	)
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.System(
		"Voice service initialized. Listening for clone jobs on subject: %s",
		cfg.NATS.VoiceCloneRequestedSubject,
	)

	runErr := cloneWorker.Run(ctx)
	if runErr != nil {
		return fmt.Errorf("worker stopped with error: %w", runErr)
	}

	return nil
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
