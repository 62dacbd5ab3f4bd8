// Package codegen produces short link codes.
// Generators should be safe for concurrent use.
package codegen

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
)

const (
	// Alphabet holds the 64 symbols a code is drawn from. 64 divides 256, so
	// reducing a random byte modulo len(Alphabet) keeps the draw uniform.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

	// Length is the fixed size of every issued code.
	Length = 7
)

var errBadLength = errors.New("length must be positive")

// Generator samples candidate codes.
type Generator interface {
	Generate(length int) (string, error)
}

type randomGenerator struct{}

// NewRandom returns a Generator drawing each symbol uniformly from Alphabet
// using crypto/rand.
func NewRandom() Generator {
	return randomGenerator{}
}

func (randomGenerator) Generate(length int) (string, error) {
	if length <= 0 {
		return "", errBadLength
	}

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = Alphabet[int(b[i])%len(Alphabet)]
	}
	return string(b), nil
}

// FromDigest derives a code from a digest and an attempt counter. The same
// inputs always give the same code; each attempt selects a different window
// of the digest, and attempts past the digest length mix the counter in.
func FromDigest(digest []byte, attempt, length int) (string, error) {
	if length <= 0 {
		return "", errBadLength
	}
	if len(digest) < length {
		return "", errors.New("digest shorter than code length")
	}

	var ctr [8]byte
	binary.BigEndian.PutUint64(ctr[:], uint64(attempt))

	b := make([]byte, length)
	offset := attempt % (len(digest) - length + 1)
	for i := range b {
		v := digest[offset+i]
		if attempt >= len(digest)-length+1 {
			v ^= ctr[i%len(ctr)] ^ byte(attempt*31+i)
		}
		b[i] = Alphabet[int(v)%len(Alphabet)]
	}
	return string(b), nil
}

// Valid reports whether code has the issued length and only Alphabet symbols.
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !isAlphabet(code[i]) {
			return false
		}
	}
	return true
}

func isAlphabet(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z':
		return true
	case c >= 'a' && c <= 'z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_':
		return true
	default:
		return false
	}
}
