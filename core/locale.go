package core

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Locale is a normalized BCP 47 language tag such as "en", "ja" or "en-US".
type Locale string

const (
	// LocaleEnglish is the English locale.
	LocaleEnglish Locale = "en"
	// LocaleJapanese is the Japanese locale.
	LocaleJapanese Locale = "ja"
)

// String returns the tag text.
func (l Locale) String() string {
	return string(l)
}

// ParseLocale parses and canonicalizes a language tag.
// Returns ErrMalformedLocale if the tag cannot be parsed.
func ParseLocale(s string) (Locale, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty tag", ErrMalformedLocale)
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrMalformedLocale, s, err)
	}
	if tag == language.Und {
		return "", fmt.Errorf("%w: %q is undetermined", ErrMalformedLocale, s)
	}
	return Locale(tag.String()), nil
}

// MustParseLocale is like ParseLocale but panics on error.
// Intended for constants in tests and fixtures.
func MustParseLocale(s string) Locale {
	l, err := ParseLocale(s)
	if err != nil {
		panic(err)
	}
	return l
}
