package ocr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// FailureClass says how the fallback chain treats a provider failure.
type FailureClass int

const (
	// FailureTransient covers crashes, 5xx replies and timeouts. The next provider is tried
	// and this one stays in rotation.
	FailureTransient FailureClass = iota
	// FailureRateLimited pauses the provider until its Retry-After passes.
	FailureRateLimited
	// FailureMissing means the engine is not installed or the endpoint does not exist.
	FailureMissing
	// FailureRejected means the provider refused this particular image.
	FailureRejected
)

func (c FailureClass) String() string {
	switch c {
	case FailureRateLimited:
		return "rate limited"
	case FailureMissing:
		return "missing"
	case FailureRejected:
		return "rejected"
	default:
		return "transient"
	}
}

const (
	defaultRetryAfter = 60 * time.Second
	missingCooldown   = 5 * time.Minute
)

// ProviderError is a classified OCR provider failure.
type ProviderError struct {
	Provider   string
	Class      FailureClass
	RetryAfter time.Duration
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Class == FailureRateLimited {
		return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Class, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a rate-limit failure. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *ProviderError {
	retryAfter := defaultRetryAfter
	if retryAfterSecs > 0 {
		retryAfter = time.Duration(retryAfterSecs) * time.Second
	}
	return &ProviderError{Provider: provider, Class: FailureRateLimited, RetryAfter: retryAfter, Err: err}
}

// NewMissingError marks a provider as absent. The fallback chain skips it for a few minutes.
func NewMissingError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Class: FailureMissing, RetryAfter: missingCooldown, Err: err}
}

// NewRejectedError marks an image the provider will not read.
func NewRejectedError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Class: FailureRejected, Err: err}
}

// ClassOf reports the failure class of err. Unclassified errors are transient.
func ClassOf(err error) FailureClass {
	var pErr *ProviderError
	if errors.As(err, &pErr) {
		return pErr.Class
	}
	return FailureTransient
}

// RetryAfter returns how long the caller should wait before trying again, if err is a
// rate-limit failure.
func RetryAfter(err error) (time.Duration, bool) {
	var pErr *ProviderError
	if errors.As(err, &pErr) && pErr.Class == FailureRateLimited {
		return pErr.RetryAfter, true
	}
	return 0, false
}

// ClassifyStatus maps an OCR service HTTP status to a failure class.
func ClassifyStatus(status int) FailureClass {
	switch status {
	case http.StatusTooManyRequests:
		return FailureRateLimited
	case http.StatusNotFound, http.StatusNotImplemented, http.StatusUnauthorized, http.StatusForbidden:
		return FailureMissing
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType, http.StatusUnprocessableEntity:
		return FailureRejected
	default:
		return FailureTransient
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds. Both the
// delay-seconds and HTTP-date forms are accepted. Returns 0 if the value is unusable.
func ParseRetryAfterHeader(val string) int {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return secs
	}
	at, err := http.ParseTime(val)
	if err != nil {
		return 0
	}
	secs := int(time.Until(at).Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}

func isCanceled(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, ctx.Err())
}
