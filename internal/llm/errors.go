package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRateLimit indicates the vendor returned a quota or rate limit error.
// The fallback chain abandons the current model immediately on these.
type ErrRateLimit struct {
	Model string
	Err   error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited on %s: %v", e.Model, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrModelNotFound indicates the requested model ID does not exist or is
// not served to this API key.
type ErrModelNotFound struct {
	Model string
	Err   error
}

func (e *ErrModelNotFound) Error() string {
	return fmt.Sprintf("model %s not found: %v", e.Model, e.Err)
}

func (e *ErrModelNotFound) Unwrap() error { return e.Err }

// ErrUnavailable covers transport failures and 5xx responses; the chain
// sleeps briefly and retries the same model once.
type ErrUnavailable struct {
	Err error
}

func (e *ErrUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider unavailable: %v", e.Err)
	}
	return "provider unavailable"
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

var rateLimitMarkers = []string{"429", "quota", "rate limit", "rate-limit", "resource_exhausted", "resource exhausted", "too many requests"}

var notFoundMarkers = []string{"404", "not found", "not_found", "does not exist", "unknown model", "is not supported"}

// IsRateLimited reports whether err is a quota/rate-limit class error,
// either typed or recognizable from its message. Vendor SDKs do not
// always surface typed errors, so marker matching stays as the backstop.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var rl *ErrRateLimit
	if errors.As(err, &rl) {
		return true
	}
	return containsAny(err.Error(), rateLimitMarkers)
}

// IsModelNotFound reports whether err means the model ID should be
// skipped for the rest of the process.
func IsModelNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nf *ErrModelNotFound
	if errors.As(err, &nf) {
		return true
	}
	return containsAny(err.Error(), notFoundMarkers)
}

func containsAny(msg string, markers []string) bool {
	msg = strings.ToLower(msg)
	for _, m := range markers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
