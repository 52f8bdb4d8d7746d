// Package validation provides jellydator/validation rules shared by the vault's
// inputs: identity creation, import envelopes and HTTP requests.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	validation "github.com/jellydator/validation"

	apperrors "github.com/bymjmazzei/par-noir/internal/errors"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{5,19}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._\-]{2,31}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// PasscodeStrength validates the passcode an identity is encrypted under.
type PasscodeStrength struct {
	MinLength      int
	MaxLength      int
	RequireLetter  bool
	RequireNumber  bool
	RequireSpecial bool
}

// DefaultPasscodeStrength is the policy applied when creating identities.
var DefaultPasscodeStrength = PasscodeStrength{
	MinLength:     8,
	MaxLength:     1024,
	RequireLetter: true,
}

// Validate checks if the passcode meets the configured requirements.
func (p PasscodeStrength) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_passcode_type", "passcode must be a string")
	}

	length := utf8.RuneCountInString(s)
	if length < p.MinLength {
		return validation.NewError(
			"validation_passcode_min_length",
			fmt.Sprintf("passcode must be at least %d characters", p.MinLength),
		)
	}
	if p.MaxLength > 0 && length > p.MaxLength {
		return validation.NewError(
			"validation_passcode_max_length",
			fmt.Sprintf("passcode must be at most %d characters", p.MaxLength),
		)
	}
	if p.RequireLetter && !containsAny(s, unicode.IsLetter) {
		return validation.NewError("validation_passcode_letter", "passcode must contain at least one letter")
	}
	if p.RequireNumber && !containsAny(s, unicode.IsNumber) {
		return validation.NewError("validation_passcode_number", "passcode must contain at least one number")
	}
	if p.RequireSpecial && !containsAny(s, isSpecial) {
		return validation.NewError(
			"validation_passcode_special",
			"passcode must contain at least one special character",
		)
	}
	return nil
}

func isSpecial(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func containsAny(s string, pred func(rune) bool) bool {
	for _, r := range s {
		if pred(r) {
			return true
		}
	}
	return false
}

// Email validates email format.
var Email = validation.NewStringRuleWithError(
	func(s string) bool {
		return emailRegex.MatchString(s)
	},
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// Phone validates a loosely formatted international phone number.
var Phone = validation.NewStringRuleWithError(
	func(s string) bool {
		return phoneRegex.MatchString(s)
	},
	validation.NewError("validation_phone_format", "must be a valid phone number"),
)

// Username validates the authentication handle of an identity.
var Username = validation.NewStringRuleWithError(
	func(s string) bool {
		return usernameRegex.MatchString(s)
	},
	validation.NewError(
		"validation_username_format",
		"must be 3-32 characters of letters, digits, '.', '_' or '-'",
	),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace.
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
