package nexus

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password. The message is intentionally uninformative about which.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccessDenied is a role or relationship mismatch for the requested
	// portal, route, or resource mutation.
	ErrAccessDenied = errors.New("access denied")
	// ErrInvalidMFACode is a rejected TOTP code.
	ErrInvalidMFACode = errors.New("invalid mfa token")
	// ErrDuplicateCredential is a duplicate email within a principal store.
	ErrDuplicateCredential = errors.New("account already exists")
	// ErrInvalidToken is a malformed, tampered, or expired bearer token, or
	// one that resolves to no principal.
	ErrInvalidToken = errors.New("invalid token")
	// ErrNotFound covers both an absent resource and one the caller may not
	// see. The two are intentionally conflated so existence is never
	// confirmed to unauthorized callers.
	ErrNotFound = errors.New("not found")
	// ErrValidation is a malformed input field, wrapped with detail.
	ErrValidation = errors.New("validation failed")
	// ErrInternal is a storage or infrastructure failure. Detail is logged,
	// never surfaced.
	ErrInternal = errors.New("internal error")
	// ErrEngineNotReady is returned when a required collaborator was not
	// wired into the engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// HTTPStatus maps an engine error to the status code the transport layer
// should respond with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidMFACode):
		return http.StatusUnauthorized
	case errors.Is(err, ErrDuplicateCredential), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
