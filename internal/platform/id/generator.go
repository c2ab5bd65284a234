package id

import (
	"crypto/rand"
	"fmt"
)

// matchIDAlphabet leaves out characters that are easy to misread or mistype
// in an SMS: no 0/o, 1/l/i. IDs are lowercased on the wire, so uppercase
// twins are excluded wholesale.
const (
	matchIDAlphabet = "abcdefghjkmnpqrstuvwxyz23456789"
	matchIDLength   = 5
)

// Generator creates match identifiers suitable for external references.
type Generator interface {
	NewMatchID() (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewMatchID() (string, error) {
	buf := make([]byte, matchIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	out := make([]byte, matchIDLength)
	for i, b := range buf {
		out[i] = matchIDAlphabet[int(b)%len(matchIDAlphabet)]
	}
	return string(out), nil
}

// Valid reports whether s has the shape of a generated match ID.
func Valid(s string) bool {
	if len(s) != matchIDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !inAlphabet(s[i]) {
			return false
		}
	}
	return true
}

func inAlphabet(c byte) bool {
	for i := 0; i < len(matchIDAlphabet); i++ {
		if matchIDAlphabet[i] == c {
			return true
		}
	}
	return false
}
