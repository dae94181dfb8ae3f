package utils

import "testing"

func TestValidateCaseNumber(t *testing.T) {
	valid := []string{"SA-2026-001", "HOUS-2025-123456", "EB-2024-0042"}
	for _, n := range valid {
		if err := ValidateCaseNumber(n); err != nil {
			t.Errorf("ValidateCaseNumber(%q) = %v, want nil", n, err)
		}
	}

	invalid := []string{"", "sa-2026-001", "S-2026-001", "SA-26-001", "SA-2026-12", "SA-2026-001x", "SA20260042"}
	for _, n := range invalid {
		if err := ValidateCaseNumber(n); err == nil {
			t.Errorf("ValidateCaseNumber(%q) = nil, want error", n)
		}
	}
}

func TestValidateAmountCents(t *testing.T) {
	if err := ValidateAmountCents(125000); err != nil {
		t.Errorf("ValidateAmountCents(125000) = %v, want nil", err)
	}
	if err := ValidateAmountCents(10_000_000); err != nil {
		t.Errorf("ValidateAmountCents at ceiling = %v, want nil", err)
	}
	for _, amount := range []int64{0, -1, 10_000_001} {
		if err := ValidateAmountCents(amount); err == nil {
			t.Errorf("ValidateAmountCents(%d) = nil, want error", amount)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("hello\x00world\n"); got != "helloworld" {
		t.Errorf("SanitizeString = %q, want %q", got, "helloworld")
	}
	if got := SanitizeString("plain text"); got != "plain text" {
		t.Errorf("SanitizeString changed clean input: %q", got)
	}
}
