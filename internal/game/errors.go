package game

import "fmt"

// ValidationError rejects malformed input before any session state is read.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func Validation(message string) error {
	return &ValidationError{Message: message}
}

// NotFoundError reports an unknown session or player.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string { return e.Kind + " not found" }

func NewNotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// AuthorizationError rejects a command the caller is not allowed to issue,
// such as a non-game-master starting a round.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

func authorization(message string) error {
	return &AuthorizationError{Message: message}
}

func Authorization(message string) error { return authorization(message) }

// StateConflictError rejects a command that is valid in some other session
// status but not the current one.
type StateConflictError struct {
	Message string
}

func (e *StateConflictError) Error() string { return e.Message }

func conflict(message string) error {
	return &StateConflictError{Message: message}
}

func Conflict(message string) error { return conflict(message) }

// InternalError wraps store or timer faults. The command is aborted and the
// caller only sees a generic failure.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.Op + " failed"
	}
	return e.Op + " failed: " + e.Err.Error()
}

func (e *InternalError) Unwrap() error { return e.Err }

func NewInternal(op string, err error) error {
	return &InternalError{Op: op, Err: err}
}
