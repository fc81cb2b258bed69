package port

import "github.com/arklim/credential-service/internal/core/domain"

// PasswordHasher produces and verifies self-describing password hashes.
// Encoded hashes embed the algorithm identifier, salt, and work parameters
// so verification needs no external lookup.
type PasswordHasher interface {
	// CreateHash hashes text under the named algorithm with a random salt.
	CreateHash(text string, algorithm domain.HashAlgorithm) (string, error)
	// CreateHashWithSalt hashes text with a caller-supplied salt. An empty
	// salt is rejected. Intended for migration tooling and tests.
	CreateHashWithSalt(text, salt string, algorithm domain.HashAlgorithm) (string, error)
	// MatchesHash reports whether text matches the encoded hash. The
	// comparison is constant-time over the digest and reveals nothing about
	// why a mismatch occurred.
	MatchesHash(text, encoded string) bool
	// VerifyHashedPassword classifies a comparison: a match under the
	// preferred algorithm, a match under a deprecated one (rehash needed),
	// or a failure. Total over its domain; malformed input is a failure,
	// never an error.
	VerifyHashedPassword(encoded, password string) domain.VerificationOutcome
}

// LookupNormalizer canonicalizes usernames and emails for case-insensitive
// lookup and uniqueness.
type LookupNormalizer interface {
	NormalizeName(name string) string
	NormalizeEmail(email string) string
}
