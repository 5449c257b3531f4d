package game

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateSessionIDNormalizes(t *testing.T) {
	id, err := ValidateSessionID("  ABC12 ")
	if err != nil {
		t.Fatalf("validate session id: %v", err)
	}
	if id != "abc12" {
		t.Fatalf("expected lowercased id, got %q", id)
	}
}

func TestValidateSessionIDBounds(t *testing.T) {
	cases := []string{"", "ab", strings.Repeat("x", 21)}
	for _, input := range cases {
		_, err := ValidateSessionID(input)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected validation error for %q, got %v", input, err)
		}
	}
}

func TestValidateUsernameCollapsesWhitespace(t *testing.T) {
	name, err := ValidateUsername("  Ada   Lovelace ")
	if err != nil {
		t.Fatalf("validate username: %v", err)
	}
	if name != "Ada Lovelace" {
		t.Fatalf("expected collapsed whitespace, got %q", name)
	}
}

func TestValidateUsernameBounds(t *testing.T) {
	if _, err := ValidateUsername(""); err == nil {
		t.Fatalf("expected rejection of empty username")
	}
	if _, err := ValidateUsername(strings.Repeat("x", 21)); err == nil {
		t.Fatalf("expected rejection of long username")
	}
}

func TestNormalizeAnswer(t *testing.T) {
	if got := NormalizeAnswer(" Paris "); got != "paris" {
		t.Fatalf("expected normalized answer, got %q", got)
	}
}

func TestValidateBoundsCountRunes(t *testing.T) {
	name := strings.Repeat("å", 20)
	got, err := ValidateUsername(name)
	if err != nil {
		t.Fatalf("expected 20-rune username accepted, got %v", err)
	}
	if got != name {
		t.Fatalf("expected username unchanged, got %q", got)
	}
	var verr *ValidationError
	if _, err := ValidateUsername(strings.Repeat("å", 21)); !errors.As(err, &verr) {
		t.Fatalf("expected validation error for 21 runes, got %v", err)
	}

	id := strings.Repeat("ø", 20)
	if _, err := ValidateSessionID(id); err != nil {
		t.Fatalf("expected 20-rune session id accepted, got %v", err)
	}
	if _, err := ValidateSessionID(strings.Repeat("ø", 21)); !errors.As(err, &verr) {
		t.Fatalf("expected validation error for 21-rune session id, got %v", err)
	}
}
