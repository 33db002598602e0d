// Package apperrors defines the error taxonomy surfaced by the booking
// core. Services wrap these sentinels with fmt.Errorf("...: %w", ...) so
// handlers can map them to HTTP statuses with errors.Is.
package apperrors

import "errors"

var (
	// ErrValidation marks missing or malformed input. No side effects.
	ErrValidation = errors.New("validation error")

	// ErrInvalidStateTransition marks a booking operation attempted from a
	// state the state machine does not permit. No side effects.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrInsufficientResources marks an allocation that would exceed the
	// pool's availability. The whole operation aborts with no side effects.
	ErrInsufficientResources = errors.New("insufficient resources")

	// ErrInsufficientBalance marks a debit exceeding the user's balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrNotFound marks a missing booking, pool, hospital or user.
	ErrNotFound = errors.New("not found")
)
