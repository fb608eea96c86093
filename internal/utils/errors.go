package utils

import (
	"errors"
	"fmt"
)

// Kind classifies an AppError so transport layers can map it to a response
// without string matching.
type Kind int

const (
	// KindInternal covers unexpected computation failures.
	KindInternal Kind = iota
	// KindNotFound signals a missing incident record.
	KindNotFound
	// KindMalformedInput signals an incident record missing a structurally
	// required field.
	KindMalformedInput
	// KindConfiguration signals invalid or missing deployment configuration;
	// fatal at boot, never per-request.
	KindConfiguration
	// KindGeneration signals a failed call to the narrative backend. The
	// deterministic facts were computed; only generation failed.
	KindGeneration
	// KindRateLimited signals a rejected request that never reached the
	// pipeline.
	KindRateLimited
)

// AppError wraps an operation, a human-facing message, an error kind, and the
// underlying error.
type AppError struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError constructs an internal AppError.
func NewAppError(op, msg string, err error) error {
	return &AppError{Kind: KindInternal, Op: op, Msg: msg, Err: err}
}

// NewNotFoundError constructs a not-found AppError.
func NewNotFoundError(op, msg string) error {
	return &AppError{Kind: KindNotFound, Op: op, Msg: msg}
}

// NewMalformedInputError constructs a malformed-input AppError.
func NewMalformedInputError(op, msg string) error {
	return &AppError{Kind: KindMalformedInput, Op: op, Msg: msg}
}

// NewConfigurationError constructs a configuration AppError.
func NewConfigurationError(op, msg string) error {
	return &AppError{Kind: KindConfiguration, Op: op, Msg: msg}
}

// NewGenerationError constructs a generation-backend AppError.
func NewGenerationError(op, msg string, err error) error {
	return &AppError{Kind: KindGeneration, Op: op, Msg: msg, Err: err}
}

// NewRateLimitError constructs a rate-limited AppError.
func NewRateLimitError(op, msg string) error {
	return &AppError{Kind: KindRateLimited, Op: op, Msg: msg}
}

// KindOf extracts the Kind from an error chain, defaulting to KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
