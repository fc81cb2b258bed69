package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/arklim/credential-service/internal/core/domain"
	"github.com/arklim/credential-service/internal/core/port"
	"github.com/arklim/credential-service/internal/repository"
)

const uniqueViolationCode = "23505"

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var userColumns = []string{
	"id",
	"username",
	"normalized_username",
	"email",
	"normalized_email",
	"password_hash",
	"password_algo",
	"lockout_enabled",
	"registered_at",
	"last_password_change",
}

// UserRepository implements port.CredentialStore using PostgreSQL. It also
// provides the password and lockout capabilities; raw lookup is deliberately
// not implemented, so callers fold identifiers before resolving them.
type UserRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewUserRepository(exec pgExecutor) *UserRepository {
	return &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new user row. Unique violations on the normalized
// username or email surface as repository.ErrDuplicateKey.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	sql, args, err := r.builder.Insert("credentials.users").
		Columns(userColumns...).
		Values(
			user.ID,
			user.Username,
			user.NormalizedUsername,
			user.Email,
			user.NormalizedEmail,
			user.PasswordHash,
			user.PasswordAlgo,
			user.LockoutEnabled,
			user.RegisteredAt,
			user.LastPasswordChange,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return repository.ErrDuplicateKey
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// FindByNormalizedName retrieves a user by folded username.
func (r *UserRepository) FindByNormalizedName(ctx context.Context, normalizedUsername string) (*domain.User, error) {
	return r.findOne(ctx, squirrel.Eq{"normalized_username": normalizedUsername})
}

// FindByNormalizedEmail retrieves a user by folded email.
func (r *UserRepository) FindByNormalizedEmail(ctx context.Context, normalizedEmail string) (*domain.User, error) {
	return r.findOne(ctx, squirrel.Eq{"normalized_email": normalizedEmail})
}

func (r *UserRepository) findOne(ctx context.Context, where squirrel.Eq) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("credentials.users").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.NormalizedUsername,
		&user.Email,
		&user.NormalizedEmail,
		&user.PasswordHash,
		&user.PasswordAlgo,
		&user.LockoutEnabled,
		&user.RegisteredAt,
		&user.LastPasswordChange,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &user, nil
}

// Update commits the full user record, including any staged password hash
// or lockout change.
func (r *UserRepository) Update(ctx context.Context, user domain.User) error {
	stmt, args, err := r.builder.Update("credentials.users").
		Set("username", user.Username).
		Set("normalized_username", user.NormalizedUsername).
		Set("email", user.Email).
		Set("normalized_email", user.NormalizedEmail).
		Set("password_hash", user.PasswordHash).
		Set("password_algo", user.PasswordAlgo).
		Set("lockout_enabled", user.LockoutEnabled).
		Set("last_password_change", user.LastPasswordChange).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return repository.ErrDuplicateKey
		}
		return fmt.Errorf("update user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// GetPasswordHash reads the stored hash for the user. A missing row or an
// empty hash reports absence, not an error.
func (r *UserRepository) GetPasswordHash(ctx context.Context, user *domain.User) (string, bool, error) {
	if user == nil || user.ID == "" {
		return "", false, nil
	}

	stmt, args, err := r.builder.
		Select("password_hash").
		From("credentials.users").
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build select password hash sql: %w", err)
	}

	var hash string
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("scan password hash: %w", err)
	}

	if hash == "" {
		return "", false, nil
	}
	return hash, true, nil
}

// SetPasswordHash stages a new hash on the in-memory record; the change is
// committed by Update.
func (r *UserRepository) SetPasswordHash(_ context.Context, user *domain.User, hash string, algo domain.HashAlgorithm) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	user.PasswordHash = hash
	user.PasswordAlgo = string(algo)
	return nil
}

// SetLockoutEnabled stages lockout eligibility on the in-memory record.
func (r *UserRepository) SetLockoutEnabled(_ context.Context, user *domain.User, enabled bool) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	user.LockoutEnabled = enabled
	return nil
}

var (
	_ port.CredentialStore = (*UserRepository)(nil)
	_ port.PasswordStore   = (*UserRepository)(nil)
	_ port.LockoutStore    = (*UserRepository)(nil)
)
