package core

// Voice categories as reported by the provider. Anything that is not
// premade (cloned, generated, professional) was created by a user and
// counts against the account's custom-voice ceiling.
const (
	CategoryPremade = "premade"
	CategoryCloned  = "cloned"
)

// Voice represents one entry in the provider's voice inventory.
type Voice struct {
	// ID is the opaque identifier assigned by the provider, stable once created.
	ID string `json:"voice_id"`

	// Name is the display label chosen by the cloning caller.
	Name string `json:"name"`

	// Category classifies the voice; see the category constants.
	Category string `json:"category"`

	// CreatedAt is the Unix timestamp (seconds) recorded by the provider
	// at creation time. It is the sole ordering key for eviction.
	CreatedAt int64 `json:"date_unix"`
}

// IsCustom reports whether the voice was user-created and is therefore
// an eviction candidate. Premade voices are never evicted.
func (v Voice) IsCustom() bool {
	return v.Category != CategoryPremade
}

// QuotaSnapshot is a point-in-time view of voice-quota headroom. It is
// computed fresh on every check and must not be cached: the provider's
// true state can change between check and act.
type QuotaSnapshot struct {
	CustomCount    int
	PremadeCount   int
	TotalCount     int
	MaxCustom      int
	SpaceRemaining int
	HasSpace       bool

	// FetchFailed is set when the inventory could not be read. The
	// snapshot then reports no space so callers prefer attempting
	// cleanup over silently overrunning the ceiling.
	FetchFailed bool
}

// CloneStatus enumerates the terminal states of a clone request.
type CloneStatus string

const (
	// StatusClonedDirect means the first add-voice call succeeded.
	StatusClonedDirect CloneStatus = "cloned_direct"

	// StatusClonedAfterCleanup means the clone succeeded on the single
	// retry that follows a quota cleanup pass.
	StatusClonedAfterCleanup CloneStatus = "cloned_after_cleanup"

	// StatusQuotaExceeded means the ceiling was still hit after cleanup
	// and one retry. Terminal; the caller may retry manually.
	StatusQuotaExceeded CloneStatus = "quota_exceeded"

	// StatusRejectedInput means the audio sample failed validation.
	// No provider call is made.
	StatusRejectedInput CloneStatus = "rejected_input"

	// StatusProviderError means the provider failed with a non-quota,
	// non-retryable error.
	StatusProviderError CloneStatus = "provider_error"

	// StatusRetriesExhausted means transient failures (timeouts, 5xx)
	// persisted through the whole attempt budget.
	StatusRetriesExhausted CloneStatus = "retries_exhausted"
)

// CloneOutcome is the structured result of a clone request. Every branch
// of the clone flow produces one; the coordinator never raises provider
// failures to its caller.
type CloneOutcome struct {
	Status  CloneStatus `json:"status"`
	VoiceID string      `json:"voice_id,omitempty"`
	Message string      `json:"message"`

	// CleanupPerformed is true only for cloned_after_cleanup.
	CleanupPerformed bool `json:"cleanup_performed"`

	// ErrorDetail carries the raw diagnostic for failure statuses.
	ErrorDetail string `json:"error_detail,omitempty"`
}

// Cloned reports whether the outcome carries a usable voice id.
func (o CloneOutcome) Cloned() bool {
	return o.Status == StatusClonedDirect || o.Status == StatusClonedAfterCleanup
}

// VoiceRef identifies a voice in an eviction report.
type VoiceRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EvictionReport summarizes one eviction pass. Deletions are independent
// best-effort remote calls, so the report records per-voice success and
// failure rather than a single verdict.
type EvictionReport struct {
	Deleted       int        `json:"deleted"`
	Failed        int        `json:"failed"`
	DeletedVoices []VoiceRef `json:"deleted_voices,omitempty"`
	FailedVoices  []VoiceRef `json:"failed_voices,omitempty"`
	Message       string     `json:"message"`
}
