package utils_test

import (
	"crypto/rand"
	"strings"
	"testing"

	"github.com/shopkhata/shopkhata_backend/utils"
)

func TestGenerateOTPFormat(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 500; i++ {
		code, err := utils.GenerateOTP(rand.Reader)
		if err != nil {
			t.Fatalf("GenerateOTP: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q is not 6 digits", code)
		}
		if strings.Trim(code, "0123456789") != "" {
			t.Fatalf("code %q contains non-digits", code)
		}
		if code < "100000" || code > "999999" {
			t.Fatalf("code %q is outside [100000, 999999]", code)
		}
		seen[code] = true
	}

	// 500 draws from a 900000-value space should virtually never collapse
	// to a handful of values.
	if len(seen) < 400 {
		t.Fatalf("only %d distinct codes in 500 draws", len(seen))
	}
}

func TestGenerateOTPKeepsCodesAsStrings(t *testing.T) {
	// Codes starting with a low digit keep their full width.
	for i := 0; i < 200; i++ {
		code, err := utils.GenerateOTP(rand.Reader)
		if err != nil {
			t.Fatalf("GenerateOTP: %v", err)
		}
		if code[0] == '0' {
			t.Fatalf("code %q has a leading zero; range should forbid it", code)
		}
	}
}
