package errors

import (
	"fmt"
)

// GranthaError carries a stable error code alongside the message, so
// callers can branch on Code while logs and users see the full text.
// Classification (category, severity, retryability) is derived from
// the code, never stored.
type GranthaError struct {
	Code       string
	Message    string
	Details    map[string]string
	Suggestion string
	Cause      error
}

func (e *GranthaError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *GranthaError) Unwrap() error {
	return e.Cause
}

// Is matches two GranthaErrors by code, so errors.Is works across
// independently constructed instances.
func (e *GranthaError) Is(target error) bool {
	t, ok := target.(*GranthaError)
	return ok && e.Code == t.Code
}

// Category classifies the error by its code block (1xx config, 2xx IO,
// 3xx network, 4xx validation, 5xx internal).
func (e *GranthaError) Category() Category {
	return categoryFromCode(e.Code)
}

// Severity reports how the caller should treat the error.
func (e *GranthaError) Severity() Severity {
	return severityFromCode(e.Code)
}

// Retryable reports whether repeating the operation can succeed.
// True for transient network codes only.
func (e *GranthaError) Retryable() bool {
	return isRetryableCode(e.Code)
}

// WithDetail attaches a key-value pair for structured logging.
func (e *GranthaError) WithDetail(key, value string) *GranthaError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion attaches a remediation hint shown to the user.
func (e *GranthaError) WithSuggestion(suggestion string) *GranthaError {
	e.Suggestion = suggestion
	return e
}

// New builds a GranthaError. cause may be nil.
func New(code string, message string, cause error) *GranthaError {
	return &GranthaError{Code: code, Message: message, Cause: cause}
}

// Wrap lifts an existing error into a coded one, reusing its message.
// Returns nil when err is nil.
func Wrap(code string, err error) *GranthaError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// QuotaError reports a failed disk preflight. Figures are rounded to
// megabytes in the message; exact bytes ride along as details.
func QuotaError(needed, free uint64) *GranthaError {
	return New(ErrCodeQuotaExceeded,
		fmt.Sprintf("not enough storage space: need ~%d MB, free ~%d MB", needed/1_000_000, free/1_000_000), nil).
		WithDetail("needed_bytes", fmt.Sprintf("%d", needed)).
		WithDetail("free_bytes", fmt.Sprintf("%d", free)).
		WithSuggestion("free up disk space or choose a different pack directory")
}

// ChecksumError reports a pack file whose digest does not match its
// manifest entry.
func ChecksumError(path, want, got string) *GranthaError {
	return New(ErrCodeChecksumMismatch,
		fmt.Sprintf("checksum mismatch for %s", path), nil).
		WithDetail("expected", want).
		WithDetail("actual", got).
		WithSuggestion("rerun 'grantha pack install' to re-download the file")
}

// GetCode returns the code of a GranthaError, or "" for any other
// error (including nil).
func GetCode(err error) string {
	if ge, ok := err.(*GranthaError); ok {
		return ge.Code
	}
	return ""
}

// IsRetryable reports whether err is a retryable GranthaError.
func IsRetryable(err error) bool {
	if ge, ok := err.(*GranthaError); ok {
		return ge.Retryable()
	}
	return false
}
