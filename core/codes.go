package core

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	customValidation "github.com/layer-3/sentinel/internal/validation"
)

const TwoFACodeLength = 6

var twoFACodeSpace = big.NewInt(1_000_000)

// LoginAttemptID identifies one second-factor challenge
type LoginAttemptID string

// NewLoginAttemptID returns a fresh random attempt id
func NewLoginAttemptID() LoginAttemptID {
	return LoginAttemptID(uuid.NewString())
}

// ParseLoginAttemptID validates a client supplied attempt id and returns its canonical form
func ParseLoginAttemptID(raw string) (LoginAttemptID, error) {
	if err := validation.Validate(raw, validation.Required.Error("login attempt id is required")); err != nil {
		return "", InvalidInput("loginAttemptId", err)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return "", InvalidInput("loginAttemptId", err)
	}

	return LoginAttemptID(id.String()), nil
}

func (id LoginAttemptID) String() string {
	return string(id)
}

// TwoFACode is a six digit one-time code
type TwoFACode string

// NewTwoFACode draws a uniformly random code from crypto/rand
func NewTwoFACode() (TwoFACode, error) {
	n, err := rand.Int(rand.Reader, twoFACodeSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate 2FA code: %w", err)
	}

	return TwoFACode(fmt.Sprintf("%0*d", TwoFACodeLength, n.Int64())), nil
}

// ParseTwoFACode validates a client supplied code
func ParseTwoFACode(raw string) (TwoFACode, error) {
	err := validation.Validate(raw,
		validation.Required.Error("2FA code is required"),
		validation.Length(TwoFACodeLength, TwoFACodeLength),
		customValidation.Digits,
	)
	if err != nil {
		return "", InvalidInput("2FACode", err)
	}

	return TwoFACode(raw), nil
}

func (c TwoFACode) String() string {
	return string(c)
}
