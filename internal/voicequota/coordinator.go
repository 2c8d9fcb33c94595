package voicequota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/book-expert/logger"

	"github.com/vocalbrand/voice-service/internal/core"
)

// Defaults for the clone policy. The keep count sits below the ceiling
// so one cleanup pass leaves slack for several subsequent clones.
const (
	DefaultKeepCount      = 25
	DefaultMinSampleBytes = 4000
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = 2 * time.Second
	DefaultBackoffCap     = 8 * time.Second
)

// ErrAttemptsExhausted wraps the last transient provider error once the
// configured attempt budget is spent.
var ErrAttemptsExhausted = errors.New("clone attempts exhausted")

// Outcome messages.
const (
	msgClonedDirect     = "voice cloned"
	msgClonedAfterClean = "voice cloned after quota cleanup"
	msgQuotaExceeded    = "voice quota still exceeded after cleanup"
	msgRejectedInput    = "audio sample too short or unreadable"
	msgRejectedName     = "voice name cannot be empty"
	msgProviderError    = "voice provider rejected the request"
	msgRetriesExhausted = "voice provider unavailable, attempts exhausted"
)

// Policy holds the caller-supplied knobs of the clone flow. Zero fields
// fall back to the package defaults, keeping callers independent of
// global state.
type Policy struct {
	// KeepCount is the eviction target after a quota hit.
	KeepCount int

	// MinSampleBytes is the provider-side minimum sample size; smaller
	// payloads are rejected before any network call.
	MinSampleBytes int

	// MaxAttempts bounds the transient-error retries of the first
	// add-voice call. It does not apply to the post-cleanup retry,
	// which always happens exactly once.
	MaxAttempts int

	// InitialBackoff and BackoffCap shape the exponential wait between
	// transient retries.
	InitialBackoff time.Duration
	BackoffCap     time.Duration
}

func (p Policy) withDefaults() Policy {
	if p.KeepCount <= 0 {
		p.KeepCount = DefaultKeepCount
	}

	if p.MinSampleBytes <= 0 {
		p.MinSampleBytes = DefaultMinSampleBytes
	}

	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}

	if p.InitialBackoff <= 0 {
		p.InitialBackoff = DefaultInitialBackoff
	}

	if p.BackoffCap <= 0 {
		p.BackoffCap = DefaultBackoffCap
	}

	return p
}

// Coordinator runs the clone-voice state machine: attempt the clone, on
// a capacity error check headroom, evict if needed, retry exactly once,
// and report a structured outcome. It never raises provider failures to
// its caller.
type Coordinator struct {
	cloner  core.VoiceCloner
	guard   *Guard
	evictor *Evictor
	policy  Policy
	log     *logger.Logger
}

// NewCoordinator wires the clone flow together. The policy's zero fields
// take the package defaults.
func NewCoordinator(
	cloner core.VoiceCloner,
	guard *Guard,
	evictor *Evictor,
	policy Policy,
	log *logger.Logger,
) *Coordinator {
	return &Coordinator{
		cloner:  cloner,
		guard:   guard,
		evictor: evictor,
		policy:  policy.withDefaults(),
		log:     log,
	}
}

// CloneVoice clones a voice from the raw audio sample. The returned
// outcome distinguishes direct success, success after quota cleanup, a
// still-exceeded quota, rejected input, and provider failures.
func (c *Coordinator) CloneVoice(
	ctx context.Context,
	audio []byte,
	voiceName string,
) core.CloneOutcome {
	if len(audio) < c.policy.MinSampleBytes {
		return rejectedOutcome(msgRejectedInput, fmt.Sprintf(
			"sample is %d bytes, provider minimum is %d",
			len(audio), c.policy.MinSampleBytes,
		))
	}

	if voiceName == "" {
		return rejectedOutcome(msgRejectedName, "")
	}

	voiceID, err := c.attemptClone(ctx, voiceName, audio)
	if err == nil {
		return core.CloneOutcome{
			Status:           core.StatusClonedDirect,
			VoiceID:          voiceID,
			Message:          msgClonedDirect,
			CleanupPerformed: false,
			ErrorDetail:      "",
		}
	}

	if !core.IsCapacityError(err) {
		return failureOutcome(err)
	}

	return c.cloneAfterCleanup(ctx, voiceName, audio, err)
}

// cloneAfterCleanup is the capacity branch: one headroom check, an
// eviction pass when there is no space, then exactly one retry. A second
// capacity error is terminal; looping eviction further would mask
// concurrent clones racing for the freed slots as latency.
func (c *Coordinator) cloneAfterCleanup(
	ctx context.Context,
	voiceName string,
	audio []byte,
	quotaErr error,
) core.CloneOutcome {
	c.log.Warn("Voice quota ceiling hit while cloning %q: %v", voiceName, quotaErr)

	snapshot := c.guard.Snapshot(ctx)

	if snapshot.HasSpace {
		// Something else freed space between the failed attempt and the
		// check; retry without deleting anything.
		c.log.Info(
			"Quota shows headroom again (%d/%d), retrying without eviction",
			snapshot.CustomCount, snapshot.MaxCustom,
		)
	} else {
		report := c.evictor.EvictTo(ctx, c.policy.KeepCount)
		c.log.Info(
			"Quota cleanup: deleted %d voices, %d failed (%s)",
			report.Deleted, report.Failed, report.Message,
		)
	}

	voiceID, err := c.cloner.AddVoice(ctx, voiceName, audio)
	if err == nil {
		return core.CloneOutcome{
			Status:           core.StatusClonedAfterCleanup,
			VoiceID:          voiceID,
			Message:          msgClonedAfterClean,
			CleanupPerformed: true,
			ErrorDetail:      "",
		}
	}

	if core.IsCapacityError(err) {
		return core.CloneOutcome{
			Status:           core.StatusQuotaExceeded,
			VoiceID:          "",
			Message:          msgQuotaExceeded,
			CleanupPerformed: false,
			ErrorDetail:      err.Error(),
		}
	}

	return failureOutcome(err)
}

// attemptClone performs the first add-voice call with bounded backoff
// for transient failures. Capacity and permanent provider errors return
// immediately; they are never retried here.
func (c *Coordinator) attemptClone(
	ctx context.Context,
	voiceName string,
	audio []byte,
) (string, error) {
	backoff := c.policy.InitialBackoff

	var lastErr error

	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		voiceID, err := c.cloner.AddVoice(ctx, voiceName, audio)
		if err == nil {
			return voiceID, nil
		}

		if core.IsCapacityError(err) || core.IsPermanentError(err) {
			return "", err
		}

		lastErr = err
		c.log.Warn(
			"Clone attempt %d/%d for %q failed: %v",
			attempt, c.policy.MaxAttempts, voiceName, err,
		)

		if attempt == c.policy.MaxAttempts {
			break
		}

		waitErr := sleepContext(ctx, backoff)
		if waitErr != nil {
			return "", waitErr
		}

		backoff *= 2
		if backoff > c.policy.BackoffCap {
			backoff = c.policy.BackoffCap
		}
	}

	return "", fmt.Errorf("%w after %d attempts: %w",
		ErrAttemptsExhausted, c.policy.MaxAttempts, lastErr)
}

func rejectedOutcome(message, detail string) core.CloneOutcome {
	return core.CloneOutcome{
		Status:           core.StatusRejectedInput,
		VoiceID:          "",
		Message:          message,
		CleanupPerformed: false,
		ErrorDetail:      detail,
	}
}

func failureOutcome(err error) core.CloneOutcome {
	status := core.StatusProviderError
	message := msgProviderError

	if errors.Is(err, ErrAttemptsExhausted) {
		status = core.StatusRetriesExhausted
		message = msgRetriesExhausted
	}

	return core.CloneOutcome{
		Status:           status,
		VoiceID:          "",
		Message:          message,
		CleanupPerformed: false,
		ErrorDetail:      err.Error(),
	}
}

// sleepContext waits for the backoff duration unless the context ends
// first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
