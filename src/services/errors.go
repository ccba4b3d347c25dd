package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for explicit error handling. Callers distinguish failure
// modes with errors.Is instead of string matching; handlers map them to
// HTTP status classes in one place.

var (
	// ErrInvalidCredentials covers unknown email and wrong password alike,
	// so responses cannot be used for account enumeration
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountLocked indicates too many consecutive failed logins
	ErrAccountLocked = errors.New("account temporarily locked")

	// ErrAccountDisabled indicates a soft-disabled account
	ErrAccountDisabled = errors.New("account disabled")

	// ErrInvalidToken indicates a bearer token that failed verification or
	// whose backing session is revoked or expired
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrPermissionDenied indicates a valid principal lacking the required
	// permission; a normal outcome, not a fault
	ErrPermissionDenied = errors.New("permission denied")

	// ErrSessionNotFound indicates a revoke targeting a session id that does
	// not exist or is already revoked
	ErrSessionNotFound = errors.New("session not found")

	// ErrAccountNotFound indicates the referenced admin account does not exist
	ErrAccountNotFound = errors.New("account not found")

	// ErrRoleNotFound indicates a role name absent from the catalog
	ErrRoleNotFound = errors.New("role not found")

	// ErrWeakPassword indicates the password failed the strength policy
	ErrWeakPassword = errors.New("password does not meet strength requirements")

	// ErrAccountExists indicates an invitation or creation for an email that
	// already has a non-pending account
	ErrAccountExists = errors.New("account already exists")

	// ErrInvalidTransition indicates a status change the account FSM forbids
	ErrInvalidTransition = errors.New("invalid account status transition")

	// ErrTransient marks retryable store or network failures; handlers map
	// it to 503 so clients know a retry may succeed
	ErrTransient = errors.New("transient backend failure")
)

// transient wraps a store failure so callers can both retry-classify it with
// errors.Is(err, ErrTransient) and unwrap the cause
func transient(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransient, op, err)
}
