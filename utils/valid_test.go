package utils_test

import (
	"strings"
	"testing"

	"github.com/shopkhata/shopkhata_backend/utils"
)

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain local number", "9812345678", "9812345678", false},
		{"leading six", "6012345678", "6012345678", false},
		{"with country code and plus", "+919812345678", "9812345678", false},
		{"with country code no plus", "919812345678", "9812345678", false},
		{"with separators", "98123-45678", "9812345678", false},
		{"first digit too low", "5812345678", "", true},
		{"too short", "981234567", "", true},
		{"too long", "98123456789", "", true},
		{"empty", "", "", true},
		{"letters", "98123abc78", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := utils.SanitizePhone(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("SanitizePhone(%q) = %q, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("SanitizePhone(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("SanitizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeEmail(t *testing.T) {
	got, err := utils.SanitizeEmail("  Admin@Example.COM ")
	if err != nil {
		t.Fatalf("SanitizeEmail: %v", err)
	}
	if got != "admin@example.com" {
		t.Fatalf("SanitizeEmail = %q, want lowercased trimmed address", got)
	}

	for _, bad := range []string{"", "no-at-sign", "a@b", "a b@example.com"} {
		if _, err := utils.SanitizeEmail(bad); err == nil {
			t.Fatalf("SanitizeEmail(%q) accepted invalid address", bad)
		}
	}
}

func TestSanitizeInputStripsScripts(t *testing.T) {
	got := utils.SanitizeInput("hello<script>alert(1)</script> world")
	if strings.Contains(got, "script") {
		t.Fatalf("SanitizeInput left script content: %q", got)
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := utils.HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := utils.CheckPassword("hunter2hunter2", hash); err != nil {
		t.Fatalf("CheckPassword rejected the right password: %v", err)
	}
	if err := utils.CheckPassword("wrong-password", hash); err == nil {
		t.Fatal("CheckPassword accepted a wrong password")
	}
}
