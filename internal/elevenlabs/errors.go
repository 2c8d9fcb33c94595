package elevenlabs

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Capacity statuses the provider has used for the custom-voice ceiling.
// The schema has changed between API revisions, so classification matches
// against the whole set instead of one literal.
var capacityStatuses = map[string]struct{}{
	"voice_limit_reached":         {},
	"maximum_voice_count_reached": {},
	"voice_add_limit_exceeded":    {},
}

// Maximum number of raw body bytes preserved for diagnostics.
const maxErrorBodyBytes = 512

// APIError is a structured error response from the voice API. It carries
// the HTTP status code, the machine-readable status field from the error
// body when one was present, and a bounded raw-body snippet for
// diagnostics.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf(
			"voice API error (HTTP %d, status %q): %s",
			e.StatusCode, e.Status, e.Message,
		)
	}

	return fmt.Sprintf("voice API error (HTTP %d): %s", e.StatusCode, e.Message)
}

// CapacityError reports whether the error signals the custom-voice
// ceiling. Recognized by core.IsCapacityError.
func (e *APIError) CapacityError() bool {
	_, ok := capacityStatuses[e.Status]

	return ok
}

// Permanent reports whether the error must never be retried: any 4xx
// that is not the capacity signal. 5xx and transport failures stay
// retryable. Recognized by core.IsPermanentError.
func (e *APIError) Permanent() bool {
	if e.CapacityError() {
		return false
	}

	return e.StatusCode >= http.StatusBadRequest &&
		e.StatusCode < http.StatusInternalServerError
}

// errorBody mirrors the provider's error envelope. Detail is either an
// object with status/message fields or a bare string, depending on the
// endpoint and API revision.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type errorDetail struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// parseAPIError builds an APIError from a non-success response. It
// attempts the structured envelope first and falls back to the raw body
// so diagnostics are never lost.
func parseAPIError(resp *http.Response) *APIError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Status:     "",
		Message:    resp.Status,
		Body:       string(raw),
	}

	var envelope errorBody

	err := json.Unmarshal(raw, &envelope)
	if err != nil || len(envelope.Detail) == 0 {
		return apiErr
	}

	var detail errorDetail
	if json.Unmarshal(envelope.Detail, &detail) == nil && detail.Status != "" {
		apiErr.Status = detail.Status
		apiErr.Message = detail.Message

		return apiErr
	}

	var message string
	if json.Unmarshal(envelope.Detail, &message) == nil && message != "" {
		apiErr.Message = message
	}

	return apiErr
}
