package core

import (
	"errors"
	"testing"
)

func TestValidateFact(t *testing.T) {
	tests := []struct {
		name    string
		fact    *ConceptFact
		wantErr error
	}{
		{
			name:    "valid label fact",
			fact:    &ConceptFact{URI: "U1", Kind: FactLabel, Text: "label", Lang: "en"},
			wantErr: nil,
		},
		{
			name:    "valid fact without language",
			fact:    &ConceptFact{URI: "U1", Kind: FactParent, Text: "U0"},
			wantErr: nil,
		},
		{
			name:    "nil fact",
			fact:    nil,
			wantErr: ErrInvalidFact,
		},
		{
			name:    "empty uri",
			fact:    &ConceptFact{URI: "  ", Kind: FactLabel, Text: "label"},
			wantErr: ErrEmptyURI,
		},
		{
			name:    "empty text",
			fact:    &ConceptFact{URI: "U1", Kind: FactLabel, Text: ""},
			wantErr: ErrEmptyText,
		},
		{
			name:    "unknown kind",
			fact:    &ConceptFact{URI: "U1", Kind: FactKind(99), Text: "label"},
			wantErr: ErrUnknownFactKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFact(tt.fact)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateFact() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateFact() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidFact) {
				t.Errorf("ValidateFact() error should wrap ErrInvalidFact, got %v", err)
			}
		})
	}
}

func TestParseLocale(t *testing.T) {
	tests := []struct {
		in      string
		want    Locale
		wantErr bool
	}{
		{in: "en", want: LocaleEnglish},
		{in: "ja", want: LocaleJapanese},
		{in: " EN-us ", want: "en-US"},
		{in: "", wantErr: true},
		{in: "und", wantErr: true},
		{in: "not a tag!", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseLocale(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrMalformedLocale) {
				t.Errorf("ParseLocale(%q) error = %v, want ErrMalformedLocale", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLocale(%q) unexpected error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLocale(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
