package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/credential-service/internal/core/domain"
	"github.com/arklim/credential-service/internal/core/port"
	"github.com/arklim/credential-service/internal/infra/security"
	"github.com/arklim/credential-service/internal/repository"
)

// sentinelPassword feeds the hasher when no real hash exists so a lookup
// miss costs the same as a digest mismatch. The marker itself can never
// verify because the outcome is forced to Failed on that path.
const sentinelPassword = "not a real hash"

var (
	// ErrManagerClosed indicates an operation was attempted after Close.
	ErrManagerClosed = errors.New("credential manager is closed")
	// ErrNilUser indicates a required user argument was nil.
	ErrNilUser = errors.New("user is required")
	// ErrIdentifierRequired indicates a lookup was attempted with an empty
	// username or email.
	ErrIdentifierRequired = errors.New("identifier is required")
)

// CredentialManager orchestrates account creation, password verification,
// transparent hash migration, and identity resolution. It holds only
// capability references injected at construction; there is no per-user
// state, so concurrent calls are safe.
type CredentialManager struct {
	store      port.CredentialStore
	hasher     port.PasswordHasher
	normalizer port.LookupNormalizer
	logger     *zap.Logger

	// Optional store capabilities, probed once at construction.
	passwords port.PasswordStore
	rawLookup port.RawLookupStore
	lockout   port.LockoutStore

	userValidators     []port.UserValidator
	passwordValidators []port.PasswordStrengthValidator
	events             port.EventPublisher

	lockoutNewUsers bool
	sentinelHash    string

	closed atomic.Bool
}

// NewCredentialManager constructs a manager around the given store and
// hasher. A nil normalizer falls back to Unicode case folding and a nil
// logger to a no-op logger.
func NewCredentialManager(store port.CredentialStore, hasher port.PasswordHasher, normalizer port.LookupNormalizer, logger *zap.Logger) (*CredentialManager, error) {
	if store == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if normalizer == nil {
		normalizer = security.NewFoldNormalizer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &CredentialManager{
		store:      store,
		hasher:     hasher,
		normalizer: normalizer,
		logger:     logger,
	}

	// Probe optional capabilities once instead of type-asserting per call.
	if ps, ok := store.(port.PasswordStore); ok {
		m.passwords = ps
	}
	if rl, ok := store.(port.RawLookupStore); ok {
		m.rawLookup = rl
	}
	if ls, ok := store.(port.LockoutStore); ok {
		m.lockout = ls
	}

	sentinel, err := hasher.CreateHash(sentinelPassword, domain.HashAlgorithmArgon2id)
	if err != nil {
		return nil, fmt.Errorf("prepare sentinel hash: %w", err)
	}
	m.sentinelHash = sentinel

	return m, nil
}

// WithUserValidators sets the ordered shape validation pipeline.
func (m *CredentialManager) WithUserValidators(validators ...port.UserValidator) *CredentialManager {
	m.userValidators = append([]port.UserValidator(nil), validators...)
	return m
}

// WithPasswordValidators sets the ordered password strength pipeline.
func (m *CredentialManager) WithPasswordValidators(validators ...port.PasswordStrengthValidator) *CredentialManager {
	m.passwordValidators = append([]port.PasswordStrengthValidator(nil), validators...)
	return m
}

// WithEventPublisher attaches a credential event publisher. Publish
// failures are logged and never fail the operation.
func (m *CredentialManager) WithEventPublisher(events port.EventPublisher) *CredentialManager {
	m.events = events
	return m
}

// WithLockoutForNewUsers marks newly created accounts lockout-eligible when
// the store supports lockout metadata.
func (m *CredentialManager) WithLockoutForNewUsers(enabled bool) *CredentialManager {
	m.lockoutNewUsers = enabled
	return m
}

// Close tears the manager down. The transition is one-way; every
// subsequent operation fails with ErrManagerClosed.
func (m *CredentialManager) Close() {
	m.closed.Store(true)
}

func (m *CredentialManager) guard() error {
	if m.closed.Load() {
		return ErrManagerClosed
	}
	return nil
}

// Create validates, normalizes, hashes, and persists a new user. Validation
// failures and duplicate keys come back as a failed OperationResult; only
// infrastructure faults and misuse surface as errors.
func (m *CredentialManager) Create(ctx context.Context, user *domain.User, password string) (domain.OperationResult, error) {
	if err := m.guard(); err != nil {
		return domain.OperationResult{}, err
	}
	if user == nil {
		return domain.OperationResult{}, ErrNilUser
	}

	if violations := m.validateUser(ctx, *user); len(violations) > 0 {
		return domain.Failed(violations...), nil
	}
	if violations := m.validatePassword(password, *user); len(violations) > 0 {
		return domain.Failed(violations...), nil
	}

	user.NormalizedUsername = m.normalizer.NormalizeName(user.Username)
	user.NormalizedEmail = m.normalizer.NormalizeEmail(user.Email)

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.RegisteredAt.IsZero() {
		user.RegisteredAt = now
	}
	user.LastPasswordChange = now

	if m.lockoutNewUsers && m.lockout != nil {
		if err := m.lockout.SetLockoutEnabled(ctx, user, true); err != nil {
			return domain.OperationResult{}, fmt.Errorf("enable lockout: %w", err)
		}
	}

	hash, err := m.hasher.CreateHash(password, domain.HashAlgorithmArgon2id)
	if err != nil {
		return domain.OperationResult{}, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	user.PasswordAlgo = string(domain.HashAlgorithmArgon2id)

	if err := m.store.Create(ctx, *user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return domain.Failed(domain.CredentialError{
				Code:        domain.ErrCodeDuplicateKey,
				Description: "username or email is already registered",
			}), nil
		}
		return domain.OperationResult{}, fmt.Errorf("create user: %w", err)
	}

	m.publishUserRegistered(ctx, *user)

	return domain.OK(), nil
}

// CheckPassword verifies a supplied password against the user's stored
// hash. A match under a deprecated algorithm is transparently rehashed
// under the preferred one. Failed checks are logged at warning severity;
// a wrong password is a false return, never an error.
func (m *CredentialManager) CheckPassword(ctx context.Context, user *domain.User, password string) (bool, error) {
	if err := m.guard(); err != nil {
		return false, err
	}

	outcome, err := m.verifyPassword(ctx, user, password)
	if err != nil {
		return false, err
	}

	if outcome == domain.VerificationSuccessRehashNeeded {
		m.rehash(ctx, user, password)
	}

	success := outcome != domain.VerificationFailed
	if !success {
		userID := "(null)"
		if user != nil {
			userID = user.ID
		}
		m.logger.Warn("invalid password for user", zap.String("user_id", userID))
		m.publishLoginFailed(ctx, userID)
	}
	return success, nil
}

// ChangePassword replaces the user's password after verifying the current
// one. The stored hash is untouched unless the current password verifies
// and the new one passes the strength pipeline.
func (m *CredentialManager) ChangePassword(ctx context.Context, user *domain.User, currentPassword, newPassword string) (domain.OperationResult, error) {
	if err := m.guard(); err != nil {
		return domain.OperationResult{}, err
	}
	if user == nil {
		return domain.OperationResult{}, ErrNilUser
	}

	outcome, err := m.verifyPassword(ctx, user, currentPassword)
	if err != nil {
		return domain.OperationResult{}, err
	}

	if outcome == domain.VerificationFailed {
		m.logger.Warn("change password failed for user", zap.String("user_id", user.ID))
		return domain.Failed(domain.CredentialError{
			Code:        domain.ErrCodePasswordMismatch,
			Description: "current password is incorrect",
		}), nil
	}

	// Shape validators only apply to whole-user creation.
	if violations := m.validatePassword(newPassword, *user); len(violations) > 0 {
		return domain.Failed(violations...), nil
	}

	if err := m.setPasswordHash(ctx, user, newPassword); err != nil {
		return domain.OperationResult{}, err
	}

	m.publishPasswordChanged(ctx, user.ID)

	return domain.OK(), nil
}

// FindByName resolves a user by username. Not-found is a nil user, not an
// error; an empty name fails with ErrIdentifierRequired before the store
// is touched.
func (m *CredentialManager) FindByName(ctx context.Context, username string) (*domain.User, error) {
	if err := m.guard(); err != nil {
		return nil, err
	}
	if username == "" {
		return nil, ErrIdentifierRequired
	}

	if m.rawLookup != nil {
		return m.found(m.rawLookup.FindByName(ctx, username))
	}
	return m.found(m.store.FindByNormalizedName(ctx, m.normalizer.NormalizeName(username)))
}

// FindByEmail resolves a user by email address. When the store has no raw
// lookup capability the value is folded locally and resolved through the
// normalized email path.
func (m *CredentialManager) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := m.guard(); err != nil {
		return nil, err
	}
	if email == "" {
		return nil, ErrIdentifierRequired
	}

	if m.rawLookup != nil {
		return m.found(m.rawLookup.FindByEmail(ctx, email))
	}
	return m.found(m.store.FindByNormalizedEmail(ctx, m.normalizer.NormalizeEmail(email)))
}

func (m *CredentialManager) found(user *domain.User, err error) (*domain.User, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

// verifyPassword resolves the stored hash and classifies the supplied
// password against it. The hasher runs even when no real hash exists so
// timing does not reveal whether the account has one.
func (m *CredentialManager) verifyPassword(ctx context.Context, user *domain.User, password string) (domain.VerificationOutcome, error) {
	existingHash := m.sentinelHash
	hashPresent := false

	if user != nil && m.passwords != nil {
		hash, ok, err := m.passwords.GetPasswordHash(ctx, user)
		if err != nil {
			return domain.VerificationFailed, fmt.Errorf("get password hash: %w", err)
		}
		if ok {
			existingHash = hash
			hashPresent = true
		}
	}

	outcome := m.hasher.VerifyHashedPassword(existingHash, password)
	if !hashPresent {
		outcome = domain.VerificationFailed
	}
	return outcome, nil
}

// rehash replaces a deprecated hash after a successful verification. The
// login still succeeds when the write fails; the in-memory record is
// restored so a stale hash is never committed by a later Update.
func (m *CredentialManager) rehash(ctx context.Context, user *domain.User, password string) {
	before := *user

	if err := m.setPasswordHash(ctx, user, password); err != nil {
		*user = before
		m.logger.Warn("password rehash failed", zap.String("user_id", user.ID), zap.Error(err))
		return
	}

	m.publishPasswordRehashed(ctx, user.ID)
}

// setPasswordHash hashes the password under the preferred algorithm,
// stages it through the password capability, and commits via Update.
// Strength validation is the caller's concern.
func (m *CredentialManager) setPasswordHash(ctx context.Context, user *domain.User, password string) error {
	if m.passwords == nil {
		return fmt.Errorf("store does not support password storage")
	}

	hash, err := m.hasher.CreateHash(password, domain.HashAlgorithmArgon2id)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := m.passwords.SetPasswordHash(ctx, user, hash, domain.HashAlgorithmArgon2id); err != nil {
		return fmt.Errorf("set password hash: %w", err)
	}

	user.LastPasswordChange = time.Now().UTC()
	user.NormalizedUsername = m.normalizer.NormalizeName(user.Username)
	user.NormalizedEmail = m.normalizer.NormalizeEmail(user.Email)

	if err := m.store.Update(ctx, *user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (m *CredentialManager) validateUser(ctx context.Context, user domain.User) []domain.CredentialError {
	var violations []domain.CredentialError
	for _, v := range m.userValidators {
		violations = append(violations, v.ValidateUser(ctx, user)...)
	}
	return violations
}

func (m *CredentialManager) validatePassword(password string, user domain.User) []domain.CredentialError {
	pctx := domain.PasswordContext{Username: user.Username, Email: user.Email}
	var violations []domain.CredentialError
	for _, v := range m.passwordValidators {
		violations = append(violations, v.ValidatePassword(password, pctx)...)
	}
	return violations
}

func (m *CredentialManager) publishUserRegistered(ctx context.Context, user domain.User) {
	if m.events == nil {
		return
	}
	event := domain.UserRegisteredEvent{
		EventID:      uuid.NewString(),
		UserID:       user.ID,
		Username:     user.Username,
		RegisteredAt: user.RegisteredAt,
	}
	if user.Email != "" {
		email := user.Email
		event.Email = &email
	}
	if err := m.events.PublishUserRegistered(ctx, event); err != nil {
		m.logger.Warn("publish user registered event failed", zap.String("user_id", user.ID), zap.Error(err))
	}
}

func (m *CredentialManager) publishPasswordChanged(ctx context.Context, userID string) {
	if m.events == nil {
		return
	}
	event := domain.PasswordChangedEvent{
		EventID:   uuid.NewString(),
		UserID:    userID,
		ChangedAt: time.Now().UTC(),
	}
	if err := m.events.PublishPasswordChanged(ctx, event); err != nil {
		m.logger.Warn("publish password changed event failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (m *CredentialManager) publishPasswordRehashed(ctx context.Context, userID string) {
	if m.events == nil {
		return
	}
	event := domain.PasswordRehashedEvent{
		EventID:    uuid.NewString(),
		UserID:     userID,
		RehashedAt: time.Now().UTC(),
	}
	if err := m.events.PublishPasswordRehashed(ctx, event); err != nil {
		m.logger.Warn("publish password rehashed event failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (m *CredentialManager) publishLoginFailed(ctx context.Context, userID string) {
	if m.events == nil {
		return
	}
	event := domain.LoginFailedEvent{
		EventID:  uuid.NewString(),
		UserID:   userID,
		FailedAt: time.Now().UTC(),
	}
	if err := m.events.PublishLoginFailed(ctx, event); err != nil {
		m.logger.Warn("publish login failed event failed", zap.String("user_id", userID), zap.Error(err))
	}
}
