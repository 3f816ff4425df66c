package util

import "testing"

func TestSanitizePostgresText_CleanInputUnchanged(t *testing.T) {
	in := "Asset Purchase Agreement, Meridian Holdings"
	if got := SanitizePostgresText(in); got != in {
		t.Fatalf("expected clean input unchanged, got %q", got)
	}
}

func TestSanitizePostgresText_StripsNulBytes(t *testing.T) {
	got := SanitizePostgresText("Smith\x00 & Partners\x00")
	if got != "Smith & Partners" {
		t.Fatalf("expected NUL bytes stripped, got %q", got)
	}
}

func TestSanitizePostgresText_DropsInvalidUTF8(t *testing.T) {
	in := string([]byte{'A', 'c', 0xfe, 'm', 'e', 0xff})
	got := SanitizePostgresText(in)
	if got != "Acme" {
		t.Fatalf("expected invalid bytes dropped, got %q", got)
	}
}

func TestSanitizePostgresText_MixedCorruption(t *testing.T) {
	in := string([]byte{'N', 0x00, 'Y', 0xc3}) // NUL plus a truncated rune
	got := SanitizePostgresText(in)
	if got != "NY" {
		t.Fatalf("expected both corruptions removed, got %q", got)
	}
}

func TestSanitizePostgresText_Empty(t *testing.T) {
	if got := SanitizePostgresText(""); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
