package security

import (
	"github.com/arklim/credential-service/internal/core/domain"
	"github.com/arklim/credential-service/internal/core/port"
)

const (
	defaultMinPasswordLength   = 8
	defaultMinCharacterClasses = 3
	defaultMinZxcvbnScore      = 2
)

// DefaultPasswordValidator returns the built-in validator enforcing the service password policy
// with length, character class, and zxcvbn strength checks.
func DefaultPasswordValidator() *PasswordValidator {
	return NewPasswordValidator(
		MinLengthRule(defaultMinPasswordLength),
		RequireCharacterClassesRule(defaultMinCharacterClasses),
		RequirePasswordStrengthRule(defaultMinZxcvbnScore),
	)
}

// NewPasswordValidatorWithContext allows callers to include additional user inputs (e.g. email) for strength checking.
func NewPasswordValidatorWithContext(userInputs ...string) *PasswordValidator {
	return NewPasswordValidator(
		MinLengthRule(defaultMinPasswordLength),
		RequireCharacterClassesRule(defaultMinCharacterClasses),
		RequirePasswordStrengthRule(defaultMinZxcvbnScore, userInputs...),
	)
}

// StrengthPolicy adapts the rule-based password validator to the
// port.PasswordStrengthValidator pipeline contract, rebuilding the rule set
// per call so zxcvbn can penalize passwords resembling the user's own
// username or email.
type StrengthPolicy struct {
	factory func(inputs []string) *PasswordValidator
}

// NewStrengthPolicy builds a policy that accounts for contextual user inputs when validating passwords.
func NewStrengthPolicy() *StrengthPolicy {
	return &StrengthPolicy{
		factory: func(inputs []string) *PasswordValidator {
			return NewPasswordValidatorWithContext(inputs...)
		},
	}
}

// NewStrengthPolicyWithSettings builds a policy with explicit length, class,
// and zxcvbn score requirements. Non-positive values fall back to the defaults.
func NewStrengthPolicyWithSettings(minLength, minClasses, minScore int) *StrengthPolicy {
	if minLength <= 0 {
		minLength = defaultMinPasswordLength
	}
	if minClasses <= 0 {
		minClasses = defaultMinCharacterClasses
	}
	if minScore <= 0 {
		minScore = defaultMinZxcvbnScore
	}

	return &StrengthPolicy{
		factory: func(inputs []string) *PasswordValidator {
			return NewPasswordValidator(
				MinLengthRule(minLength),
				RequireCharacterClassesRule(minClasses),
				RequirePasswordStrengthRule(minScore, inputs...),
			)
		},
	}
}

// NewStrengthPolicyFromValidator wraps an existing validator instance without contextual enhancements.
func NewStrengthPolicyFromValidator(validator *PasswordValidator) *StrengthPolicy {
	if validator == nil {
		validator = DefaultPasswordValidator()
	}
	return &StrengthPolicy{
		factory: func(_ []string) *PasswordValidator {
			return validator
		},
	}
}

// ValidatePassword runs every rule and returns all violations as structured
// credential errors.
func (p *StrengthPolicy) ValidatePassword(password string, pctx domain.PasswordContext) []domain.CredentialError {
	if p == nil || p.factory == nil {
		return []domain.CredentialError{{
			Code:        domain.ErrCodeValidationFailed,
			Description: "password policy not configured",
		}}
	}

	inputs := make([]string, 0, 2)
	if pctx.Username != "" {
		inputs = append(inputs, pctx.Username)
	}
	if pctx.Email != "" {
		inputs = append(inputs, pctx.Email)
	}

	validator := p.factory(inputs)

	var out []domain.CredentialError
	for _, err := range validator.ValidateAll(password) {
		if verr, ok := err.(*PasswordValidationError); ok {
			out = append(out, domain.CredentialError{Code: verr.Code, Description: verr.Message})
			continue
		}
		out = append(out, domain.CredentialError{
			Code:        domain.ErrCodeValidationFailed,
			Description: err.Error(),
		})
	}
	return out
}

var _ port.PasswordStrengthValidator = (*StrengthPolicy)(nil)
