package core

import "errors"

// capacityError is implemented by provider errors that signal the
// custom-voice ceiling. The provider has renamed the underlying status
// field across API revisions, so classification lives with the client
// that parses the response, not here.
type capacityError interface {
	CapacityError() bool
}

// permanentError is implemented by provider errors that must never be
// retried (4xx other than the capacity signal, e.g. a bad API key).
type permanentError interface {
	Permanent() bool
}

// IsCapacityError reports whether err signals the provider's
// custom-voice ceiling.
func IsCapacityError(err error) bool {
	var ce capacityError

	return errors.As(err, &ce) && ce.CapacityError()
}

// IsPermanentError reports whether err is a non-retryable provider
// rejection. Errors that are neither capacity nor permanent are treated
// as transient by callers.
func IsPermanentError(err error) bool {
	var pe permanentError

	return errors.As(err, &pe) && pe.Permanent()
}
