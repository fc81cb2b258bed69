package port

import (
	"context"

	"github.com/arklim/credential-service/internal/core/domain"
)

// UserValidator checks the shape of a whole user record before creation.
// Implementations return every violation they find, not just the first.
type UserValidator interface {
	ValidateUser(ctx context.Context, user domain.User) []domain.CredentialError
}

// PasswordStrengthValidator checks a plaintext password against policy.
// Implementations return every violation they find, not just the first.
type PasswordStrengthValidator interface {
	ValidatePassword(password string, pctx domain.PasswordContext) []domain.CredentialError
}
