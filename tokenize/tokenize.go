// Package tokenize detects the language of query text and splits it into
// match tokens.
//
// Two CJK heuristics live here and they are deliberately not unified:
// DetectLocale only looks at CJK Unified Ideographs and decides how a query
// is tokenized, while ContainsJapanese also recognizes kana and is used to
// infer the locale of untagged labels.
package tokenize

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/poiesic/conceptrank/core"
)

var errInvalidText = errors.New("text is not valid UTF-8")

// DetectLocale returns Japanese if any rune of text is a CJK Unified
// Ideograph (U+4E00 to U+9FFF) and English otherwise.
func DetectLocale(text string) core.Locale {
	for _, r := range text {
		if r >= 0x4E00 && r <= 0x9FFF {
			return core.LocaleJapanese
		}
	}
	return core.LocaleEnglish
}

// ContainsJapanese reports whether text has any Han, Hiragana or Katakana rune.
func ContainsJapanese(text string) bool {
	for _, r := range text {
		if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana) {
			return true
		}
	}
	return false
}

// Tokenize detects the locale of text and returns its tokens in order.
// Empty input yields no tokens.
func Tokenize(text string) (core.Locale, []string) {
	locale := DetectLocale(text)
	if strings.TrimSpace(text) == "" {
		return locale, nil
	}
	if locale == core.LocaleJapanese {
		tokens, err := japaneseTokens(text)
		if err != nil {
			return locale, fallbackTokens(text)
		}
		return locale, tokens
	}
	return locale, englishTokens(text)
}

// englishTokens strips every rune outside [a-zA-Z0-9#:/_-], keeping
// whitespace, and splits on whitespace.
func englishTokens(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isEnglishTokenRune(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Fields(b.String())
}

func isEnglishTokenRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '#', r == ':', r == '/', r == '_', r == '-':
		return true
	}
	return false
}

// fallbackTokens strips punctuation and splits on whitespace.
func fallbackTokens(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == utf8.RuneError || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Fields(b.String())
}
