package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// ResetTokenBytes is the amount of randomness in a reset token. The hex
// encoding doubles it to 64 characters.
const ResetTokenBytes = 32

type TokenGenerator interface {
	Generate() (string, error)
}

type RandomTokenGenerator struct {
	source io.Reader
}

func NewRandomTokenGenerator() *RandomTokenGenerator {
	return &RandomTokenGenerator{source: rand.Reader}
}

func (g *RandomTokenGenerator) Generate() (string, error) {
	buf := make([]byte, ResetTokenBytes)
	if _, err := io.ReadFull(g.source, buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEntropy, err)
	}
	return hex.EncodeToString(buf), nil
}
