// Package validation provides custom validation rules shared by the domain types.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	digitsOnly = regexp.MustCompile(`^[0-9]+$`)
)

// Email validates email format using regex
var Email = validation.NewStringRuleWithError(
	func(s string) bool {
		return emailRegex.MatchString(s)
	},
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Digits validates that a string only contains ASCII digits
var Digits = validation.NewStringRuleWithError(
	func(s string) bool {
		return digitsOnly.MatchString(s)
	},
	validation.NewError("validation_digits", "must contain only digits"),
)
