// Package worker provides a NATS worker that processes voice-clone jobs.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/vocalbrand/voice-service/internal/core"
)

// handleMessageTimeout bounds one clone job end to end: the add-voice
// attempts, an optional list+delete eviction pass, the single retry, and
// the preview synthesis are each bounded by the provider HTTP timeout.
const handleMessageTimeout = 120 * time.Second

// previewKeySuffix is appended to generated preview object keys.
const previewKeySuffix = ".mp3"

var (
	// ErrSampleKeyEmpty indicates the clone request carries no sample key.
	ErrSampleKeyEmpty = errors.New("sample key cannot be empty")
	// ErrVoiceNameEmpty indicates the clone request carries no voice name.
	ErrVoiceNameEmpty = errors.New("voice name cannot be empty")
)

// NatsWorker listens for voice-clone jobs on a NATS subject and runs them
// through the clone coordinator. Failures travel back to the requester in
// the reply event instead of being redelivered forever.
type NatsWorker struct {
	natsConnection *nats.Conn
	subject        string
	samples        core.ObjectStore
	previews       core.ObjectStore
	cloner         core.CloneVoiceService
	synthesizer    core.SpeechSynthesizer
	log            *logger.Logger
	ready          chan struct{}
}

// NewNatsWorker creates a new instance of a NATS worker.
func NewNatsWorker(
	natsConnection *nats.Conn,
	subject string,
	samples core.ObjectStore,
	previews core.ObjectStore,
	cloner core.CloneVoiceService,
	synthesizer core.SpeechSynthesizer,
	log *logger.Logger,
) (*NatsWorker, error) {
	return &NatsWorker{
		natsConnection: natsConnection,
		subject:        subject,
		samples:        samples,
		previews:       previews,
		cloner:         cloner,
		synthesizer:    synthesizer,
		log:            log,
		ready:          make(chan struct{}),
	}, nil
}

// Ready is closed once the subscription has been registered with the
// server. Request-reply callers must wait on it before publishing, or
// their requests can arrive before the worker is listening.
func (w *NatsWorker) Ready() <-chan struct{} {
	return w.ready
}

// Run starts the worker and begins listening for messages. It may be
// called at most once.
func (w *NatsWorker) Run(ctx context.Context) error {
	sub, err := w.natsConnection.Subscribe(w.subject, w.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.subject, err)
	}

	err = w.natsConnection.Flush()
	if err != nil {
		return fmt.Errorf("failed to flush subscription to subject %s: %w", w.subject, err)
	}

	close(w.ready)

	<-ctx.Done()

	drainErr := sub.Drain()
	if drainErr != nil {
		return fmt.Errorf("failed to drain subscription: %w", drainErr)
	}

	return nil
}

func (w *NatsWorker) handleMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), handleMessageTimeout)
	defer cancel()

	event, err := w.parseAndValidateEvent(msg)
	if err != nil {
		w.log.Error("Failed to parse and validate clone request: %v", err)

		return
	}

	reply := w.processCloneJob(ctx, event)

	err = w.publishReplyEvent(msg, reply)
	if err != nil {
		w.log.Error(
			"Failed to publish reply event for workflow %s: %v",
			event.Header.WorkflowID, err,
		)
	}
}

// processCloneJob downloads the audio sample, runs the clone coordinator,
// and on success synthesizes an optional preview and removes the consumed
// sample. Every path yields a reply event.
func (w *NatsWorker) processCloneJob(
	ctx context.Context,
	event *core.VoiceCloneRequestedEvent,
) *core.VoiceClonedEvent {
	sample, err := w.samples.Download(ctx, event.SampleKey)
	if err != nil {
		w.log.Error(
			"Failed to download sample '%s' for workflow %s: %v",
			event.SampleKey, event.Header.WorkflowID, err,
		)

		return &core.VoiceClonedEvent{
			Header:           event.Header,
			Status:           core.StatusProviderError,
			VoiceID:          "",
			PreviewKey:       "",
			Message:          "failed to load audio sample",
			CleanupPerformed: false,
			ErrorDetail:      err.Error(),
		}
	}

	outcome := w.cloner.CloneVoice(ctx, sample, event.VoiceName)

	reply := &core.VoiceClonedEvent{
		Header:           event.Header,
		Status:           outcome.Status,
		VoiceID:          outcome.VoiceID,
		PreviewKey:       "",
		Message:          outcome.Message,
		CleanupPerformed: outcome.CleanupPerformed,
		ErrorDetail:      outcome.ErrorDetail,
	}

	if !outcome.Cloned() {
		return reply
	}

	reply.PreviewKey = w.synthesizePreview(ctx, outcome.VoiceID, event.PreviewText)

	// The sample was consumed; keeping it would only accumulate stale
	// audio in the bucket. Best effort.
	deleteErr := w.samples.Delete(ctx, event.SampleKey)
	if deleteErr != nil {
		w.log.Warn(
			"Failed to remove consumed sample '%s': %v",
			event.SampleKey, deleteErr,
		)
	}

	return reply
}

// synthesizePreview generates a short preview clip with the new voice and
// uploads it. Previews are best effort: a failure is logged and the clone
// result stands.
func (w *NatsWorker) synthesizePreview(ctx context.Context, voiceID, text string) string {
	if text == "" {
		return ""
	}

	audio, err := w.synthesizer.Synthesize(ctx, voiceID, text)
	if err != nil {
		w.log.Warn("Preview synthesis for voice %s failed: %v", voiceID, err)

		return ""
	}

	previewKey := uuid.NewString() + previewKeySuffix

	err = w.previews.Upload(ctx, previewKey, audio)
	if err != nil {
		w.log.Warn("Failed to upload preview '%s': %v", previewKey, err)

		return ""
	}

	return previewKey
}

// publishReplyEvent marshals and responds with the VoiceClonedEvent.
func (w *NatsWorker) publishReplyEvent(msg *nats.Msg, reply *core.VoiceClonedEvent) error {
	replyData, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("failed to marshal reply event: %w", err)
	}

	err = msg.Respond(replyData)
	if err != nil {
		return fmt.Errorf("failed to publish reply event: %w", err)
	}

	return nil
}

func (w *NatsWorker) parseAndValidateEvent(msg *nats.Msg) (*core.VoiceCloneRequestedEvent, error) {
	var event core.VoiceCloneRequestedEvent

	err := json.Unmarshal(msg.Data, &event)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if event.SampleKey == "" {
		return nil, ErrSampleKeyEmpty
	}

	if event.VoiceName == "" {
		return nil, ErrVoiceNameEmpty
	}

	return &event, nil
}
