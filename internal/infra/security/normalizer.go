package security

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/arklim/credential-service/internal/core/port"
)

// FoldNormalizer canonicalizes usernames and emails with Unicode case
// folding so lookups and uniqueness checks are case-insensitive across
// locales ("Straße" and "STRASSE" fold to the same key).
type FoldNormalizer struct{}

// NewFoldNormalizer constructs the default lookup normalizer.
func NewFoldNormalizer() *FoldNormalizer {
	return &FoldNormalizer{}
}

// NormalizeName folds a username for lookup. A Caser is stateful, so one is
// built per call rather than shared.
func (n *FoldNormalizer) NormalizeName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// NormalizeEmail folds an email address for lookup. The whole address is
// folded; mailbox-local case sensitivity is deliberately ignored, matching
// how the store enforces uniqueness.
func (n *FoldNormalizer) NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

var _ port.LookupNormalizer = (*FoldNormalizer)(nil)
