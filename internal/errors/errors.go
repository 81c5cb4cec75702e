package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// PathNotFound indicates no resolution stage produced a path, or a bookmark points nowhere
	PathNotFound ErrorCode = "PATH_NOT_FOUND"
	// AmbiguousMatch tags a result with more than one ranked candidate
	AmbiguousMatch ErrorCode = "AMBIGUOUS_MATCH"
	// Ignored indicates a visited path was filtered by an ignore pattern
	Ignored ErrorCode = "IGNORED"
	// PersistenceFailure indicates the database could not be read or written
	PersistenceFailure ErrorCode = "PERSISTENCE_FAILURE"
	// ConfigInvalid indicates a malformed configuration file
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InvalidArgument indicates bad user input (empty name, unknown format, ...)
	InvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditConfig suggests editing the configuration file
	EditConfig FixActionType = "edit-config"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
}

// XnavError represents an xnav error with code, message, and suggestions
type XnavError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// New creates a new XnavError. Suggested fixes default to the ones
// registered for the code in ErrorActions.
func New(code ErrorCode, message string, cause error) *XnavError {
	return &XnavError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Newf is New with a formatted message and no cause.
func Newf(code ErrorCode, format string, args ...interface{}) *XnavError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *XnavError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *XnavError) Unwrap() error {
	return e.cause
}

// Is matches another *XnavError by code, so errors.Is(err, &XnavError{Code: PathNotFound})
// works without comparing messages.
func (e *XnavError) Is(target error) bool {
	t, ok := target.(*XnavError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetails adds details to the error
func (e *XnavError) WithDetails(details interface{}) *XnavError {
	e.Details = details
	return e
}

// WithFix appends a suggested fix
func (e *XnavError) WithFix(fix FixAction) *XnavError {
	e.SuggestedFixes = append(append([]FixAction(nil), e.SuggestedFixes...), fix)
	return e
}

// CodeOf returns the code of the first XnavError in err's chain, or
// InternalError when there is none.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var xe *XnavError
	if stderrors.As(err, &xe) {
		return xe.Code
	}
	return InternalError
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// Persistence wraps a database error.
func Persistence(op string, cause error) *XnavError {
	return New(PersistenceFailure, op, cause)
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	PersistenceFailure: {
		{
			Type:        RunCommand,
			Command:     "xnav stats",
			Safe:        true,
			Description: "Check that the history database opens",
		},
	},
	ConfigInvalid: {
		{
			Type:        RunCommand,
			Command:     "xnav config reset",
			Description: "Replace the configuration with defaults",
		},
		{
			Type:        EditConfig,
			Description: "Fix the reported key in config.json",
		},
	},
	PathNotFound: {
		{
			Type:        RunCommand,
			Command:     "xnav clean",
			Safe:        true,
			Description: "List entries whose directories no longer exist",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
