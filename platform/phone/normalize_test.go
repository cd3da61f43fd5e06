package phone

import "testing"

func TestNormalizeE164_FrenchMobile(t *testing.T) {
	got := NormalizeE164("06 12 34 56 78")
	if got != "+33612345678" {
		t.Fatalf("expected +33612345678, got %q", got)
	}
}

func TestNormalizeE164_AlreadyInternational(t *testing.T) {
	got := NormalizeE164("+33 1 40 00 00 00")
	if got != "+33140000000" {
		t.Fatalf("expected +33140000000, got %q", got)
	}
}

func TestNormalizeE164_InvalidReturnsTrimmedInput(t *testing.T) {
	got := NormalizeE164("  not-a-number ")
	if got != "not-a-number" {
		t.Fatalf("expected trimmed input back, got %q", got)
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid("0612345678") {
		t.Fatal("expected 0612345678 to be valid")
	}
	if IsValid("") {
		t.Fatal("expected empty string to be invalid")
	}
	if IsValid("12345") {
		t.Fatal("expected 12345 to be invalid")
	}
}
