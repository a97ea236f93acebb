package namehash

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	MaxLabelLength = 63
	MinNameLength  = 3
	MaxNameLength  = 255

	// IdentityPrefix marks identity-service shorthand such as "@alice".
	IdentityPrefix = "@"
)

var ErrInvalidName = errors.New("invalid name")

// NormalizationError reports the first label of a name that failed
// validation. It unwraps to ErrInvalidName.
type NormalizationError struct {
	Name   string
	Label  string
	Reason string
}

func (e *NormalizationError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("invalid name %q: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("invalid name %q: label %q %s", e.Name, e.Label, e.Reason)
}

func (e *NormalizationError) Unwrap() error {
	return ErrInvalidName
}

var zeroWidth = strings.NewReplacer(
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\u2060", "",
	"\ufeff", "",
)

// Fold lowercases name, strips zero-width characters and applies NFC. It
// performs no validation, so it is safe to use for cache keys and hashing
// of names that were already validated.
func Fold(name string) string {
	name = zeroWidth.Replace(strings.TrimSpace(name))
	name = norm.NFC.String(name)
	name = strings.ToLower(name)
	return norm.NFC.String(name)
}

// Normalize folds name and validates every label. The empty name is valid
// and normalizes to itself. Normalize is idempotent.
func Normalize(name string) (string, error) {
	folded := Fold(name)
	if folded == "" {
		return "", nil
	}
	body := strings.TrimPrefix(folded, IdentityPrefix)
	if body == "" {
		return "", &NormalizationError{Name: name, Reason: "has no labels"}
	}
	for _, label := range strings.Split(body, ".") {
		if err := validateLabel(name, label); err != nil {
			return "", err
		}
	}
	return folded, nil
}

func validateLabel(name, label string) error {
	if label == "" {
		return &NormalizationError{
			Name:   name,
			Reason: "has an empty label (leading, trailing or consecutive dots)",
		}
	}
	if n := utf8.RuneCountInString(label); n > MaxLabelLength {
		return &NormalizationError{
			Name:   name,
			Label:  label,
			Reason: fmt.Sprintf("is %d characters long, max is %d", n, MaxLabelLength),
		}
	}
	if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
		return &NormalizationError{Name: name, Label: label, Reason: "starts or ends with a hyphen"}
	}
	for _, r := range label {
		if r == utf8.RuneError {
			return &NormalizationError{Name: name, Label: label, Reason: "is not valid utf-8"}
		}
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return &NormalizationError{Name: name, Label: label, Reason: "contains control or space characters"}
		}
		if r == '@' {
			return &NormalizationError{Name: name, Label: label, Reason: "contains '@'"}
		}
	}
	return nil
}

// Validate normalizes name and additionally enforces the overall length
// bounds that apply to user supplied names. Unlike Normalize it rejects the
// empty name.
func Validate(name string) (string, error) {
	normalized, err := Normalize(name)
	if err != nil {
		return "", err
	}
	n := utf8.RuneCountInString(normalized)
	if n < MinNameLength {
		return "", &NormalizationError{
			Name:   name,
			Reason: fmt.Sprintf("is too short, min length is %d", MinNameLength),
		}
	}
	if n > MaxNameLength {
		return "", &NormalizationError{
			Name:   name,
			Reason: fmt.Sprintf("is too long, max length is %d", MaxNameLength),
		}
	}
	return normalized, nil
}

// TLD returns the rightmost label of name, or "" for the empty name.
func TLD(name string) string {
	name = Fold(name)
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return strings.TrimPrefix(name, IdentityPrefix)
}

// Labels splits a folded name into its labels.
func Labels(name string) []string {
	name = Fold(name)
	if name == "" {
		return nil
	}
	return strings.Split(name, ".")
}
