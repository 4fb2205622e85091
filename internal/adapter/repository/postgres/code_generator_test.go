package postgres

import (
	"testing"

	"github.com/mosolopay/mosolo/internal/usecase"
)

func TestVerificationCodeGenerator(t *testing.T) {
	g := NewVerificationCodeGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := g.Generate()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != usecase.VerificationCodeLength {
			t.Fatalf("expected %d digits, got %q", usecase.VerificationCodeLength, code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("expected numeric code, got %q", code)
			}
		}
		seen[code] = true
	}

	if len(seen) < 50 {
		t.Errorf("codes look far from uniform: %d distinct out of 100", len(seen))
	}
}
