package types

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationMissing is returned before any network call when no API key is configured.
	ErrAuthenticationMissing = errors.New("api key is not configured")
	// ErrEmptyResponse means the model returned no text at all.
	ErrEmptyResponse = errors.New("empty response")
	// ErrMalformedResponse means the text was not valid JSON or broke the output contract.
	ErrMalformedResponse = errors.New("malformed response")
)

// CapabilityError wraps a failure raised by the model provider or the transport.
type CapabilityError struct {
	Engine string
	Op     string
	Err    error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Engine, e.Op, e.Err)
}

func (e *CapabilityError) Unwrap() error { return e.Err }

// Kind classifies gateway failures.
type Kind string

const (
	KindNone                  Kind = ""
	KindAuthenticationMissing Kind = "authentication_missing"
	KindEmptyResponse         Kind = "empty_response"
	KindMalformedResponse     Kind = "malformed_response"
	KindCapability            Kind = "capability_error"
	KindUnknown               Kind = "unknown"
)

// KindOf maps an error returned by the gateway to its Kind.
func KindOf(err error) Kind {
	var ce *CapabilityError
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrAuthenticationMissing):
		return KindAuthenticationMissing
	case errors.Is(err, ErrEmptyResponse):
		return KindEmptyResponse
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformedResponse
	case errors.As(err, &ce), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return KindCapability
	default:
		return KindUnknown
	}
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}
