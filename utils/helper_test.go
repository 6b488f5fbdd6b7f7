package utils

import "testing"

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("  Samsung "); got != "samsung" {
		t.Errorf("NormalizeName = %q", got)
	}
}

func TestNormalizePhoneNumber(t *testing.T) {
	got, err := NormalizePhoneNumber("(11) 91234-5678", "")
	if err != nil {
		t.Fatalf("NormalizePhoneNumber: %v", err)
	}
	if got != "+5511912345678" {
		t.Errorf("normalized = %q, want +5511912345678", got)
	}

	got, err = NormalizePhoneNumber("+1 650-253-0000", "US")
	if err != nil {
		t.Fatalf("NormalizePhoneNumber: %v", err)
	}
	if got != "+16502530000" {
		t.Errorf("normalized = %q, want +16502530000", got)
	}

	if _, err := NormalizePhoneNumber("12", ""); err == nil {
		t.Error("expected error for a number too short to be valid")
	}
}
