package order

import (
	"strings"
	"testing"
)

func TestNewCode_Format(t *testing.T) {
	code := NewCode()
	if len(code) != len(codePrefix)+codeLength {
		t.Fatalf("code %q has length %d, want %d", code, len(code), len(codePrefix)+codeLength)
	}
	if !strings.HasPrefix(code, codePrefix) {
		t.Fatalf("code %q missing prefix %q", code, codePrefix)
	}
	for _, r := range code[len(codePrefix):] {
		if !strings.ContainsRune(codeAlphabet, r) {
			t.Fatalf("code %q contains unexpected rune %q", code, r)
		}
	}
}

func TestNewCode_Varies(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[NewCode()] = true
	}
	if len(seen) < 100 {
		t.Fatalf("expected 100 distinct codes, got %d", len(seen))
	}
}
