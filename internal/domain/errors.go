package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies job failures for the scheduler's retry logic.
type ErrorKind int

const (
	// KindRetryable failures are retried with linear backoff.
	KindRetryable ErrorKind = iota
	// KindTerminal failures stop the job immediately.
	KindTerminal
)

// String names the kind for logs.
func (k ErrorKind) String() string {
	if k == KindTerminal {
		return "terminal"
	}
	return "retryable"
}

// ClassifiedError carries a retry classification decided at the throw site.
type ClassifiedError struct {
	Kind ErrorKind
	// MaxAttempts caps total attempts for this error; 0 means no per-error cap.
	// The scheduler applies its own global ceiling on top.
	MaxAttempts int
	Message     string
	Err         error
}

// Error formats the failure with its classification.
func (e *ClassifiedError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *ClassifiedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Terminal builds a non-retryable error.
func Terminal(message string, cause error) *ClassifiedError {
	return &ClassifiedError{Kind: KindTerminal, Message: message, Err: cause}
}

// Retryable builds a retryable error with an optional per-error attempt cap.
func Retryable(message string, cause error, maxAttempts int) *ClassifiedError {
	return &ClassifiedError{Kind: KindRetryable, MaxAttempts: maxAttempts, Message: message, Err: cause}
}

// Classify returns the retry classification of err.
// Unclassified errors are treated as retryable with no per-error cap.
func Classify(err error) (ErrorKind, int) {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Kind, classified.MaxAttempts
	}
	return KindRetryable, 0
}
