// Package errors provides structured error handling for unigate.
// It defines sentinel errors, HTTP status mapping, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
)

// Error is the structured error type for unigate.
type Error struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message, safe for API responses
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for the caller
	Cause      error             // Underlying error
	Status     int               // HTTP status for the API layer
}

func (e *Error) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for Error.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors. The message strings on the 4xx sentinels are part of the
// API contract and match what clients display verbatim.
var (
	ErrUnauthorized = &Error{
		Code:    "UNAUTHORIZED",
		Message: "Unauthorized",
		Status:  http.StatusUnauthorized,
	}

	ErrForbidden = &Error{
		Code:    "FORBIDDEN",
		Message: "Forbidden",
		Status:  http.StatusForbidden,
	}

	ErrBadRequest = &Error{
		Code:    "BAD_REQUEST",
		Message: "bad request",
		Status:  http.StatusBadRequest,
	}

	ErrNotFound = &Error{
		Code:    "NOT_FOUND",
		Message: "Not Found",
		Status:  http.StatusNotFound,
	}

	// ErrPasswordRequired is returned when the confirmation password is
	// missing from a request body.
	ErrPasswordRequired = &Error{
		Code:    "PASSWORD_REQUIRED",
		Message: "Password confirmation is required",
		Status:  http.StatusBadRequest,
	}

	// ErrInvalidCredential is returned when password reconfirmation fails.
	// Surfaced as 400, not 401: the caller is authenticated but supplied a
	// wrong confirmation password.
	ErrInvalidCredential = &Error{
		Code:    "INVALID_CREDENTIAL",
		Message: "Invalid password",
		Status:  http.StatusBadRequest,
	}

	ErrWalletNotFound = &Error{
		Code:    "WALLET_NOT_FOUND",
		Message: "Wallet not found",
		Status:  http.StatusNotFound,
	}

	ErrWalletExists = &Error{
		Code:    "WALLET_EXISTS",
		Message: "an active wallet already exists",
		Status:  http.StatusBadRequest,
	}

	ErrInvalidMnemonic = &Error{
		Code:    "INVALID_MNEMONIC",
		Message: "invalid mnemonic phrase",
		Status:  http.StatusBadRequest,
	}

	ErrDecryptFailed = &Error{
		Code:    "DECRYPT_FAILED",
		Message: "decryption failed - wrong password or corrupted record",
		Status:  http.StatusBadRequest,
	}

	// ErrLedgerRejected carries the ledger's human-readable revert reason.
	ErrLedgerRejected = &Error{
		Code:    "LEDGER_REJECTED",
		Message: "transaction rejected by the ledger",
		Status:  http.StatusBadRequest,
	}

	// ErrLedgerUnavailable covers network, timeout and any other submission
	// failure that is not a revert. Never retried.
	ErrLedgerUnavailable = &Error{
		Code:    "LEDGER_UNAVAILABLE",
		Message: "ledger is unavailable",
		Status:  http.StatusBadGateway,
	}

	ErrInvalidAddress = &Error{
		Code:    "INVALID_ADDRESS",
		Message: "invalid address format",
		Status:  http.StatusBadRequest,
	}

	ErrInternal = &Error{
		Code:    "INTERNAL",
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
	}
)

// New creates a new Error with the given code, message and status.
func New(code, message string, status int) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

// Wrap wraps an error with additional context. The structured fields of a
// wrapped *Error are preserved so the API layer keeps the right status.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var e *Error
	if errors.As(err, &e) {
		return &Error{
			Code:       e.Code,
			Message:    fmt.Sprintf("%s: %s", msg, e.Message),
			Details:    e.Details,
			Suggestion: e.Suggestion,
			Cause:      err,
			Status:     e.Status,
		}
	}

	return &Error{
		Code:    "INTERNAL",
		Message: msg,
		Cause:   err,
		Status:  http.StatusInternalServerError,
	}
}

// WithMessage returns a copy of err with the message replaced. Used to carry
// ledger revert reasons on the ErrLedgerRejected sentinel.
func WithMessage(err error, message string) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return &Error{
			Code:       e.Code,
			Message:    message,
			Details:    e.Details,
			Suggestion: e.Suggestion,
			Cause:      e.Cause,
			Status:     e.Status,
		}
	}

	return &Error{
		Code:    "INTERNAL",
		Message: message,
		Cause:   err,
		Status:  http.StatusInternalServerError,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return &Error{
			Code:       e.Code,
			Message:    e.Message,
			Details:    details,
			Suggestion: e.Suggestion,
			Cause:      e.Cause,
			Status:     e.Status,
		}
	}

	return &Error{
		Code:    "INTERNAL",
		Message: err.Error(),
		Details: details,
		Cause:   err,
		Status:  http.StatusInternalServerError,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return &Error{
			Code:       e.Code,
			Message:    e.Message,
			Details:    e.Details,
			Suggestion: suggestion,
			Cause:      e.Cause,
			Status:     e.Status,
		}
	}

	return &Error{
		Code:       "INTERNAL",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		Status:     http.StatusInternalServerError,
	}
}

// Status returns the HTTP status for an error. Unknown errors map to 500.
func Status(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}

	return http.StatusInternalServerError
}

// Code returns the error code for an error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "INTERNAL"
}

// Public returns the message safe to expose to API clients. Unknown errors
// are masked behind the generic internal message so wrapped driver or RPC
// errors never leak.
func Public(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ErrInternal.Message
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
