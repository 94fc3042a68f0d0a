package core

import (
	"strings"

	validation "github.com/jellydator/validation"

	customValidation "github.com/layer-3/sentinel/internal/validation"
)

// Email is a normalized (trimmed, lower-cased) email address
type Email string

// ParseEmail normalizes and validates a raw email address
func ParseEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))

	err := validation.Validate(normalized,
		validation.Required.Error("email is required"),
		validation.Length(3, 254),
		customValidation.Email,
	)
	if err != nil {
		return "", InvalidInput("email", err)
	}

	return Email(normalized), nil
}

func (e Email) String() string {
	return string(e)
}
