package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrIncorrectCredentials = errors.New("incorrect credentials")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrChallengeNotFound    = errors.New("challenge not found")
	ErrNotFound             = errors.New("not found")
	ErrUnexpected           = errors.New("unexpected error")

	ErrMissingToken     = errors.New("missing token")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = fmt.Errorf("%w: token has expired", ErrInvalidToken)
	ErrMalformedToken   = fmt.Errorf("%w: malformed token", ErrInvalidToken)
	ErrBadSignature     = fmt.Errorf("%w: invalid signature", ErrInvalidToken)
	ErrTokenInvalidated = fmt.Errorf("%w: token has been invalidated", ErrInvalidToken)
)

// Unexpected wraps a failure of an external collaborator so it matches ErrUnexpected
// while keeping the cause in the chain.
func Unexpected(err error, msg string) error {
	if errors.Is(err, ErrUnexpected) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrUnexpected, err)
}

// InvalidInput wraps a validation failure for the named field.
func InvalidInput(field string, err error) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInput, field, err.Error())
}
