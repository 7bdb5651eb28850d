package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials covers every basic-auth failure so responses
	// never reveal whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionInvalid covers absent, unknown and expired session tokens.
	ErrSessionInvalid = errors.New("session invalid or expired")
)

// ValidationError reports which field of a request was unacceptable.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
