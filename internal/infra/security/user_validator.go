package security

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"unicode"

	"go.uber.org/zap"

	"github.com/arklim/credential-service/internal/core/domain"
	"github.com/arklim/credential-service/internal/core/port"
	"github.com/arklim/credential-service/internal/repository"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 64
)

// UserShapeValidator checks the structural validity of a user record and
// the uniqueness of its normalized username and email. It reports every
// violation it finds; uniqueness probes are skipped for fields that already
// failed a shape check.
type UserShapeValidator struct {
	store      port.CredentialStore
	normalizer port.LookupNormalizer
	logger     *zap.Logger
}

// NewUserShapeValidator constructs the default shape validator.
func NewUserShapeValidator(store port.CredentialStore, normalizer port.LookupNormalizer) *UserShapeValidator {
	return &UserShapeValidator{store: store, normalizer: normalizer, logger: zap.NewNop()}
}

// WithLogger attaches a logger for probe failure warnings.
func (v *UserShapeValidator) WithLogger(logger *zap.Logger) *UserShapeValidator {
	if logger != nil {
		v.logger = logger
	}
	return v
}

// ValidateUser implements port.UserValidator.
func (v *UserShapeValidator) ValidateUser(ctx context.Context, user domain.User) []domain.CredentialError {
	var errs []domain.CredentialError

	nameOK := true
	switch {
	case user.Username == "":
		errs = append(errs, domain.CredentialError{Code: "username_required", Description: "username is required"})
		nameOK = false
	case len([]rune(user.Username)) < minUsernameLength || len([]rune(user.Username)) > maxUsernameLength:
		errs = append(errs, domain.CredentialError{
			Code:        "username_length",
			Description: fmt.Sprintf("username must be between %d and %d characters", minUsernameLength, maxUsernameLength),
		})
		nameOK = false
	case !validUsernameCharset(user.Username):
		errs = append(errs, domain.CredentialError{
			Code:        "username_charset",
			Description: "username may only contain letters, digits, '.', '_', and '-'",
		})
		nameOK = false
	}

	emailOK := true
	switch {
	case user.Email == "":
		errs = append(errs, domain.CredentialError{Code: "email_required", Description: "email is required"})
		emailOK = false
	default:
		if _, err := mail.ParseAddress(user.Email); err != nil {
			errs = append(errs, domain.CredentialError{Code: "email_format", Description: "email is not a valid address"})
			emailOK = false
		}
	}

	if v.store == nil || v.normalizer == nil {
		return errs
	}

	// Probe failures pass the check; the store's unique constraint is the
	// backstop at create time.
	if nameOK {
		taken, err := v.nameTaken(ctx, user)
		if err != nil {
			v.logger.Warn("username uniqueness probe failed", zap.Error(err))
		}
		if taken {
			errs = append(errs, domain.CredentialError{
				Code:        domain.ErrCodeDuplicateKey,
				Description: "username is already taken",
			})
		}
	}
	if emailOK {
		taken, err := v.emailTaken(ctx, user)
		if err != nil {
			v.logger.Warn("email uniqueness probe failed", zap.Error(err))
		}
		if taken {
			errs = append(errs, domain.CredentialError{
				Code:        domain.ErrCodeDuplicateKey,
				Description: "email is already registered",
			})
		}
	}

	return errs
}

func (v *UserShapeValidator) nameTaken(ctx context.Context, user domain.User) (bool, error) {
	existing, err := v.store.FindByNormalizedName(ctx, v.normalizer.NormalizeName(user.Username))
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing != nil && existing.ID != user.ID, nil
}

func (v *UserShapeValidator) emailTaken(ctx context.Context, user domain.User) (bool, error) {
	existing, err := v.store.FindByNormalizedEmail(ctx, v.normalizer.NormalizeEmail(user.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing != nil && existing.ID != user.ID, nil
}

func validUsernameCharset(name string) bool {
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-' {
			continue
		}
		return false
	}
	return true
}

var _ port.UserValidator = (*UserShapeValidator)(nil)
