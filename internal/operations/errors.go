package operations

import (
	"errors"
	"fmt"
)

// ErrorType classifies a processing error.
type ErrorType string

const (
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeComputation ErrorType = "computation"
	ErrorTypeIO          ErrorType = "io"
	ErrorTypeFatal       ErrorType = "fatal"
)

// ProcessingError is a stage-tagged error for one recording. Stage names
// the pipeline step (load, quality, clean, features, export); Recording
// is the source file the failure belongs to.
type ProcessingError struct {
	Type      ErrorType `json:"type"`
	Stage     string    `json:"stage,omitempty"`
	Recording string    `json:"recording,omitempty"`
	Message   string    `json:"message"`
	Cause     error     `json:"-"`
}

// Error implements the error interface.
func (e *ProcessingError) Error() string {
	if e == nil {
		return "unknown processing error"
	}
	switch {
	case e.Stage != "" && e.Recording != "":
		return fmt.Sprintf("[%s] %s (%s): %s", e.Type, e.Stage, e.Recording, e.Message)
	case e.Stage != "":
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Stage, e.Message)
	default:
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
}

// Unwrap returns the underlying error.
func (e *ProcessingError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewNotFoundError reports a missing channel, marker, or file.
func NewNotFoundError(stage, recording, message string) *ProcessingError {
	return &ProcessingError{
		Type:      ErrorTypeNotFound,
		Stage:     stage,
		Recording: recording,
		Message:   message,
	}
}

// NewComputationError wraps a numerical failure in one stage.
func NewComputationError(stage, recording string, cause error) *ProcessingError {
	return &ProcessingError{
		Type:      ErrorTypeComputation,
		Stage:     stage,
		Recording: recording,
		Message:   "computation failed",
		Cause:     cause,
	}
}

// NewIOError wraps a read or write failure.
func NewIOError(stage, recording string, cause error) *ProcessingError {
	return &ProcessingError{
		Type:      ErrorTypeIO,
		Stage:     stage,
		Recording: recording,
		Message:   "i/o failed",
		Cause:     cause,
	}
}

// NewFatalError reports a failure that aborts the whole batch.
func NewFatalError(message string, cause error) *ProcessingError {
	return &ProcessingError{
		Type:    ErrorTypeFatal,
		Message: message,
		Cause:   cause,
	}
}

// WrapError tags err with stage and recording context, preserving an
// existing ProcessingError's classification.
func WrapError(err error, stage, recording string) *ProcessingError {
	if err == nil {
		return nil
	}
	var pErr *ProcessingError
	if errors.As(err, &pErr) {
		if pErr.Stage == "" {
			pErr.Stage = stage
		}
		if pErr.Recording == "" {
			pErr.Recording = recording
		}
		return pErr
	}
	return &ProcessingError{
		Type:      ErrorTypeComputation,
		Stage:     stage,
		Recording: recording,
		Message:   err.Error(),
		Cause:     err,
	}
}

// GetErrorType returns the classification of err, defaulting to
// computation for untyped errors.
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ""
	}
	var pErr *ProcessingError
	if errors.As(err, &pErr) {
		return pErr.Type
	}
	return ErrorTypeComputation
}

// IsFatal reports whether err should abort the batch rather than just
// skip the recording.
func IsFatal(err error) bool {
	return GetErrorType(err) == ErrorTypeFatal
}
