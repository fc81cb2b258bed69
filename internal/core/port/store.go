package port

import (
	"context"

	"github.com/arklim/credential-service/internal/core/domain"
)

// CredentialStore exposes the persistence behavior every backend must
// provide. Lookups take already-normalized values; callers are responsible
// for folding raw input first unless the store also implements
// RawLookupStore.
type CredentialStore interface {
	Create(ctx context.Context, user domain.User) error
	FindByNormalizedName(ctx context.Context, normalizedUsername string) (*domain.User, error)
	FindByNormalizedEmail(ctx context.Context, normalizedEmail string) (*domain.User, error)
	Update(ctx context.Context, user domain.User) error
}

// RawLookupStore is an optional capability for stores that resolve raw
// usernames and emails themselves (folding at the query level).
type RawLookupStore interface {
	FindByName(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// PasswordStore is an optional capability for reading and staging a user's
// stored password hash. SetPasswordHash mutates the in-memory record only;
// the change is committed by CredentialStore.Update.
type PasswordStore interface {
	GetPasswordHash(ctx context.Context, user *domain.User) (string, bool, error)
	SetPasswordHash(ctx context.Context, user *domain.User, hash string, algo domain.HashAlgorithm) error
}

// LockoutStore is an optional capability for backends that track lockout
// eligibility metadata.
type LockoutStore interface {
	SetLockoutEnabled(ctx context.Context, user *domain.User, enabled bool) error
}
