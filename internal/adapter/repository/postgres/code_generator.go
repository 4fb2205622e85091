package postgres

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/mosolopay/mosolo/internal/usecase"
)

// VerificationCodeGenerator generates the numeric single-use codes bound to
// withdrawal requests.
type VerificationCodeGenerator struct{}

// NewVerificationCodeGenerator creates a new VerificationCodeGenerator.
func NewVerificationCodeGenerator() *VerificationCodeGenerator {
	return &VerificationCodeGenerator{}
}

// Generate returns a zero-padded numeric code. Codes are drawn from
// crypto/rand; guessing one within a request's lifetime is not feasible.
func (g *VerificationCodeGenerator) Generate() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < usecase.VerificationCodeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", usecase.VerificationCodeLength, n), nil
}
