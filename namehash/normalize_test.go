package namehash_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/tranvictor/uns/namehash"
)

func TestValidateRejects(t *testing.T) {
	cases := []string{
		"ab",
		"test..eth",
		".invalid",
		"invalid.",
		"-alice.eth",
		"alice-.eth",
		"ali\u0007ce.eth",
		"ali ce.eth",
		"@",
		strings.Repeat("a", 64) + ".eth",
		"",
	}
	for _, name := range cases {
		_, err := namehash.Validate(name)
		if err == nil {
			t.Errorf("Validate(%q) expected error", name)
			continue
		}
		if !errors.Is(err, namehash.ErrInvalidName) {
			t.Errorf("Validate(%q) error %v does not wrap ErrInvalidName", name, err)
		}
	}
}

func TestValidateAccepts(t *testing.T) {
	cases := map[string]string{
		"vitalik.eth":                    "vitalik.eth",
		"@alice":                         "@alice",
		"alice.cifi":                     "alice.cifi",
		"  Vitalik.ETH":                  "vitalik.eth",
		"bob\u200b.crypto":               "bob.crypto",
		strings.Repeat("a", 63) + ".eth": strings.Repeat("a", 63) + ".eth",
	}
	for in, want := range cases {
		got, err := namehash.Validate(in)
		if err != nil {
			t.Errorf("Validate(%q) unexpected error: %s", in, err)
			continue
		}
		if got != want {
			t.Errorf("Validate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizationErrorCarriesLabel(t *testing.T) {
	_, err := namehash.Normalize("good.-bad.eth")
	var nerr *namehash.NormalizationError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected *NormalizationError, got %v", err)
	}
	if nerr.Label != "-bad" {
		t.Fatalf("offending label = %q, want %q", nerr.Label, "-bad")
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"VITALIK.eth",
		"Cafe\u0301.eth",
		"\ufeffBOB.crypto",
		"@Alice",
		"",
	}
	for _, in := range inputs {
		once, err := namehash.Normalize(in)
		if err != nil {
			t.Fatalf("Normalize(%q): %s", in, err)
		}
		twice, err := namehash.Normalize(once)
		if err != nil {
			t.Fatalf("Normalize(%q): %s", once, err)
		}
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeComposesNFC(t *testing.T) {
	decomposed, _ := namehash.Normalize("cafe\u0301.eth")
	composed, _ := namehash.Normalize("caf\u00e9.eth")
	if decomposed != composed {
		t.Fatalf("NFC mismatch: %q vs %q", decomposed, composed)
	}
	if namehash.NameHash(decomposed) != namehash.NameHash(composed) {
		t.Fatalf("equivalent names must hash identically")
	}
}

func TestTLD(t *testing.T) {
	cases := map[string]string{
		"vitalik.eth": "eth",
		"bob.CRYPTO":  "crypto",
		"@alice":      "alice",
		"a.b.c.bnb":   "bnb",
		"":            "",
	}
	for in, want := range cases {
		if got := namehash.TLD(in); got != want {
			t.Errorf("TLD(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsConfusable(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"vitalik.eth", false},
		{"vit\u0430lik.eth", true},
		{"αβγ.eth", true},
		{"привет", false},
		{"123.eth", false},
	}
	for _, tc := range cases {
		if got := namehash.IsConfusable(tc.name); got != tc.want {
			t.Errorf("IsConfusable(%q) = %v, want %v (scripts %v)",
				tc.name, got, tc.want, namehash.Scripts(tc.name))
		}
	}
}
