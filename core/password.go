package core

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/layer-3/sentinel/internal/validation"
)

const (
	PasswordMinLength = 8
	PasswordMaxLength = 128
)

// Password holds a cleartext password between request parsing and hashing
type Password string

// ParsePassword validates the length of a raw password
func ParsePassword(raw string) (Password, error) {
	err := validation.Validate(raw,
		validation.Required.Error("password is required"),
		customValidation.NotBlank,
		validation.Length(PasswordMinLength, PasswordMaxLength),
	)
	if err != nil {
		return "", InvalidInput("password", err)
	}

	return Password(raw), nil
}

// String hides the password from logs and formatted output
func (p Password) String() string {
	return "********"
}

// Reveal returns the cleartext password
func (p Password) Reveal() string {
	return string(p)
}
