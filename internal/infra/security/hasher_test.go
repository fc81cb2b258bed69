package security

import (
	"errors"
	"strings"
	"testing"

	"github.com/arklim/credential-service/internal/core/domain"
)

func useFastArgon2(t *testing.T) {
	t.Helper()

	previous := CurrentArgon2Config()
	t.Cleanup(func() {
		if err := ConfigureArgon2(previous); err != nil {
			t.Fatalf("restore argon2 config: %v", err)
		}
	})

	fast := Argon2Config{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
	if err := ConfigureArgon2(fast); err != nil {
		t.Fatalf("configure argon2: %v", err)
	}
}

func TestCreateHashArgon2Format(t *testing.T) {
	useFastArgon2(t)
	hasher := NewHasher()

	encoded, err := hasher.CreateHash("S3cure!Passphrase", domain.HashAlgorithmArgon2id)
	if err != nil {
		t.Fatalf("CreateHash returned error: %v", err)
	}

	parts := strings.Split(encoded, "$")
	if len(parts) != 5 {
		t.Fatalf("expected 5 segments, got %d: %s", len(parts), encoded)
	}
	if parts[0] != string(domain.HashAlgorithmArgon2id) {
		t.Fatalf("unexpected algorithm segment: %s", parts[0])
	}
	if parts[1] != "v=19" {
		t.Fatalf("unexpected version segment: %s", parts[1])
	}
	if parts[2] != "m=8192,t=1,p=1" {
		t.Fatalf("unexpected params segment: %s", parts[2])
	}

	if !hasher.MatchesHash("S3cure!Passphrase", encoded) {
		t.Fatal("expected password to match its own hash")
	}
	if hasher.MatchesHash("wrong password", encoded) {
		t.Fatal("expected wrong password to fail")
	}
}

func TestCreateHashUniqueSalts(t *testing.T) {
	useFastArgon2(t)
	hasher := NewHasher()

	first, err := hasher.CreateHash("S3cure!Passphrase", domain.HashAlgorithmArgon2id)
	if err != nil {
		t.Fatalf("CreateHash returned error: %v", err)
	}
	second, err := hasher.CreateHash("S3cure!Passphrase", domain.HashAlgorithmArgon2id)
	if err != nil {
		t.Fatalf("CreateHash returned error: %v", err)
	}

	if first == second {
		t.Fatal("expected distinct hashes for the same password")
	}
}

func TestCreateHashWithSaltDeterministic(t *testing.T) {
	useFastArgon2(t)
	hasher := NewHasher()

	first, err := hasher.CreateHashWithSalt("S3cure!Passphrase", "fixed-salt-value", domain.HashAlgorithmSHA512)
	if err != nil {
		t.Fatalf("CreateHashWithSalt returned error: %v", err)
	}
	second, err := hasher.CreateHashWithSalt("S3cure!Passphrase", "fixed-salt-value", domain.HashAlgorithmSHA512)
	if err != nil {
		t.Fatalf("CreateHashWithSalt returned error: %v", err)
	}

	if first != second {
		t.Fatal("expected identical hashes for identical salt and text")
	}
}

func TestCreateHashWithSaltRejectsEmptySalt(t *testing.T) {
	hasher := NewHasher()

	if _, err := hasher.CreateHashWithSalt("password", "", domain.HashAlgorithmSHA512); !errors.Is(err, errEmptySalt) {
		t.Fatalf("expected errEmptySalt, got %v", err)
	}
}

func TestCreateHashUnknownAlgorithm(t *testing.T) {
	hasher := NewHasher()

	if _, err := hasher.CreateHash("password", domain.HashAlgorithm("md5")); !errors.Is(err, errUnknownAlgorithm) {
		t.Fatalf("expected errUnknownAlgorithm, got %v", err)
	}
}

func TestVerifyHashedPasswordOutcomes(t *testing.T) {
	useFastArgon2(t)
	hasher := NewHasher()

	argonHash, err := hasher.CreateHash("S3cure!Passphrase", domain.HashAlgorithmArgon2id)
	if err != nil {
		t.Fatalf("CreateHash returned error: %v", err)
	}
	sha512Hash, err := hasher.CreateHash("S3cure!Passphrase", domain.HashAlgorithmSHA512)
	if err != nil {
		t.Fatalf("CreateHash returned error: %v", err)
	}
	sha256Hash, err := hasher.CreateHash("S3cure!Passphrase", domain.HashAlgorithmSHA256)
	if err != nil {
		t.Fatalf("CreateHash returned error: %v", err)
	}

	cases := []struct {
		name     string
		encoded  string
		password string
		want     domain.VerificationOutcome
	}{
		{"argon2 match", argonHash, "S3cure!Passphrase", domain.VerificationSuccess},
		{"argon2 mismatch", argonHash, "wrong", domain.VerificationFailed},
		{"sha512 match needs rehash", sha512Hash, "S3cure!Passphrase", domain.VerificationSuccessRehashNeeded},
		{"sha256 match needs rehash", sha256Hash, "S3cure!Passphrase", domain.VerificationSuccessRehashNeeded},
		{"sha512 mismatch", sha512Hash, "wrong", domain.VerificationFailed},
		{"empty hash", "", "password", domain.VerificationFailed},
		{"empty password", argonHash, "", domain.VerificationFailed},
		{"malformed hash", "argon2id$garbage", "password", domain.VerificationFailed},
		{"unknown algorithm", "md5$c2FsdA$ZGlnZXN0", "password", domain.VerificationFailed},
		{"bad base64 salt", "sha512$!!!$ZGlnZXN0", "password", domain.VerificationFailed},
		{"zero iterations", "argon2id$v=19$m=8192,t=0,p=1$c2FsdHNhbHQ$c2FsdHNhbHQ", "password", domain.VerificationFailed},
		{"zero parallelism", "argon2id$v=19$m=8192,t=1,p=0$c2FsdHNhbHQ$c2FsdHNhbHQ", "password", domain.VerificationFailed},
		{"empty salt segment", "argon2id$v=19$m=8192,t=1,p=1$$c2FsdHNhbHQ", "password", domain.VerificationFailed},
		{"empty digest segment", "argon2id$v=19$m=8192,t=1,p=1$c2FsdHNhbHQ$", "password", domain.VerificationFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := hasher.VerifyHashedPassword(tc.encoded, tc.password); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestVerifyHashedPasswordHonorsEncodedParams(t *testing.T) {
	useFastArgon2(t)
	hasher := NewHasher()

	encoded, err := hasher.CreateHash("S3cure!Passphrase", domain.HashAlgorithmArgon2id)
	if err != nil {
		t.Fatalf("CreateHash returned error: %v", err)
	}

	// Change the active config; existing hashes carry their own parameters
	// and must keep verifying.
	stronger := Argon2Config{
		Memory:      16 * 1024,
		Iterations:  2,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
	if err := ConfigureArgon2(stronger); err != nil {
		t.Fatalf("configure argon2: %v", err)
	}

	if got := hasher.VerifyHashedPassword(encoded, "S3cure!Passphrase"); got != domain.VerificationSuccess {
		t.Fatalf("expected success after config change, got %s", got)
	}
}

func TestConfigureArgon2Validation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Argon2Config
	}{
		{"low memory", Argon2Config{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}},
		{"zero iterations", Argon2Config{Memory: 8 * 1024, Iterations: 0, Parallelism: 1, SaltLength: 16, KeyLength: 32}},
		{"zero parallelism", Argon2Config{Memory: 8 * 1024, Iterations: 1, Parallelism: 0, SaltLength: 16, KeyLength: 32}},
		{"short salt", Argon2Config{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 4, KeyLength: 32}},
		{"short key", Argon2Config{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 8}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := ConfigureArgon2(tc.cfg); !errors.Is(err, errInvalidConfig) {
				t.Fatalf("expected errInvalidConfig, got %v", err)
			}
		})
	}
}
