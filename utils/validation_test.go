package utils

import "testing"

func TestValidatePhone(t *testing.T) {
	valid := []string{
		"+221771234567",
		"+1 415 555 0100",
		"771234567",
		"+44-20-7946-0958",
	}
	for _, phone := range valid {
		if !ValidatePhone(phone) {
			t.Errorf("expected %q to be valid", phone)
		}
	}

	invalid := []string{
		"",
		"+0123456",
		"phone",
		"+12345678901234567890",
	}
	for _, phone := range invalid {
		if ValidatePhone(phone) {
			t.Errorf("expected %q to be invalid", phone)
		}
	}
}

func TestNormalizePlate(t *testing.T) {
	cases := map[string]string{
		"dk 1234 aa":  "DK1234AA",
		"DK-1234-AA":  "DK1234AA",
		" dk1234aa ":  "DK1234AA",
		"DK1234AA":    "DK1234AA",
		"":            "",
	}
	for in, want := range cases {
		if got := NormalizePlate(in); got != want {
			t.Errorf("NormalizePlate(%q) = %q, want %q", in, got, want)
		}
	}
}
