package domain

import "time"

// User mirrors the persisted representation in the users table.
// NormalizedUsername and NormalizedEmail are recomputed from Username and
// Email before every persistence; lookups and uniqueness run against the
// normalized columns only.
type User struct {
	ID                 string
	Username           string
	NormalizedUsername string
	Email              string
	NormalizedEmail    string
	PasswordHash       string
	PasswordAlgo       string
	LockoutEnabled     bool
	RegisteredAt       time.Time
	LastPasswordChange time.Time
}

// PasswordContext carries user attributes that a password must not resemble.
type PasswordContext struct {
	Username string
	Email    string
}

// VerificationOutcome is the result of comparing a supplied password
// against a stored hash.
type VerificationOutcome int

const (
	// VerificationFailed indicates the password does not match, or the
	// stored hash is absent or unreadable.
	VerificationFailed VerificationOutcome = iota
	// VerificationSuccess indicates a match under the preferred algorithm.
	VerificationSuccess
	// VerificationSuccessRehashNeeded indicates a match under a deprecated
	// algorithm; the stored hash should be replaced.
	VerificationSuccessRehashNeeded
)

// String implements fmt.Stringer for log output.
func (o VerificationOutcome) String() string {
	switch o {
	case VerificationSuccess:
		return "success"
	case VerificationSuccessRehashNeeded:
		return "success_rehash_needed"
	default:
		return "failed"
	}
}

// HashAlgorithm names a supported password hashing scheme.
type HashAlgorithm string

const (
	// HashAlgorithmArgon2id is the preferred algorithm for new hashes.
	HashAlgorithmArgon2id HashAlgorithm = "argon2id"
	// HashAlgorithmSHA512 is a deprecated salted-digest scheme kept for
	// verifying hashes created before the Argon2 migration.
	HashAlgorithmSHA512 HashAlgorithm = "sha512"
	// HashAlgorithmSHA256 is the oldest deprecated scheme still verifiable.
	HashAlgorithmSHA256 HashAlgorithm = "sha256"
)

// Deprecated reports whether hashes under this algorithm must be replaced
// on the next successful verification.
func (a HashAlgorithm) Deprecated() bool {
	return a == HashAlgorithmSHA512 || a == HashAlgorithmSHA256
}

// Known reports whether the algorithm identifier is one the service can
// produce or verify.
func (a HashAlgorithm) Known() bool {
	switch a {
	case HashAlgorithmArgon2id, HashAlgorithmSHA512, HashAlgorithmSHA256:
		return true
	default:
		return false
	}
}
