package workflow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidTransition is returned when the current state is not a permitted
	// source state for the requested action
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrUnauthorized is returned when the actor's role capability does not
	// satisfy the action's guard, including the self-approval ban
	ErrUnauthorized = errors.New("authorization denied")

	// ErrValidation is returned when a required payload field is missing or empty
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when the duplicate guard finds another non-terminal
	// request for the same case/benefit pair
	ErrConflict = errors.New("conflicting request exists")

	// ErrInvalidState is returned when a stored state is not a valid workflow state
	ErrInvalidState = errors.New("invalid state")
)

// Stable error codes for API layers to translate without inspecting free text.
const (
	CodeInvalidTransition = "INVALID_STATE_TRANSITION"
	CodeUnauthorized      = "AUTHORIZATION_DENIED"
	CodeValidation        = "VALIDATION_FAILED"
	CodeConflict          = "CONFLICT_DETECTED"
	CodeInternal          = "INTERNAL"
)

// CodeOf maps a workflow error to its stable code. Unknown errors map to CodeInternal.
func CodeOf(err error) string {
	switch {
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrInvalidState):
		return CodeInvalidTransition
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrConflict):
		return CodeConflict
	default:
		return CodeInternal
	}
}

// NewInvalidTransition builds an invalid-transition error naming the allowed
// source states for the action
func NewInvalidTransition(action Action, current State, allowed []State) error {
	names := make([]string, 0, len(allowed))
	for _, s := range allowed {
		names = append(names, s.String())
	}
	return fmt.Errorf("%w: %s requires state %s, current state is %s",
		ErrInvalidTransition, action, strings.Join(names, " or "), current)
}

// NewUnauthorized builds an authorization error for an action
func NewUnauthorized(action Action, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrUnauthorized, action, reason)
}

// NewValidation builds a validation error naming the failing field
func NewValidation(field, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrValidation, field, reason)
}
