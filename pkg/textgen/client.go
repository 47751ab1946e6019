// Package textgen wraps text-generation backends behind a single Client
// interface. The gateway performs no retries of its own: transient failures
// surface as typed errors and retry policy, if any, belongs to the caller.
package textgen

import (
	"context"
	"errors"
)

// Client generates a completion for a system/user prompt pair.
type Client interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ErrorKind discriminates gateway failures.
type ErrorKind int

const (
	// KindConnectionFailed means the backend was unreachable.
	KindConnectionFailed ErrorKind = iota + 1
	// KindTimeout means the call exceeded the configured time limit.
	KindTimeout
	// KindGenerationFailed means the backend answered but with a non-success
	// status or a malformed envelope.
	KindGenerationFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnectionFailed:
		return "connection_failed"
	case KindTimeout:
		return "timeout"
	case KindGenerationFailed:
		return "generation_failed"
	}
	return "unknown"
}

// Error is the typed gateway failure. Endpoint is always populated so error
// messages are actionable without consulting config.
type Error struct {
	Kind     ErrorKind
	Endpoint string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	msg := "textgen " + e.Kind.String() + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// IsKind reports whether err is a gateway Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ge *Error
	if !errors.As(err, &ge) {
		return false
	}
	return ge.Kind == kind
}
