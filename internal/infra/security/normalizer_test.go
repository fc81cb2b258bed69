package security

import "testing"

func TestNormalizeNameFoldsCase(t *testing.T) {
	n := NewFoldNormalizer()

	cases := map[string]string{
		"Alice":        "alice",
		"  Bob  ":      "bob",
		"CAROL":        "carol",
		"straße":       "strasse",
		"Ωmega":        "ωmega",
		"already-flat": "already-flat",
	}

	for input, want := range cases {
		if got := n.NormalizeName(input); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeEmailFoldsWholeAddress(t *testing.T) {
	n := NewFoldNormalizer()

	if got := n.NormalizeEmail(" Alice@Example.COM "); got != "alice@example.com" {
		t.Fatalf("NormalizeEmail = %q, want %q", got, "alice@example.com")
	}
}
