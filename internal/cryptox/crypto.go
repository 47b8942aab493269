// Package cryptox implements password key derivation.
//
// Passwords are never stored. A user row keeps a random salt and the
// PBKDF2-HMAC-SHA512 key derived from the password with that salt.
package cryptox

import (
	"crypto/sha512"
	"crypto/subtle"

	"github.com/dmitrijs2005/apparel/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize = 64
	KeySize  = 64

	DefaultIterations = 100_000
)

// NewSalt returns SaltSize bytes from crypto/rand.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// DeriveKey stretches password with salt. A non-positive iteration count
// falls back to DefaultIterations.
func DeriveKey(password, salt []byte, iterations int) []byte {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return pbkdf2.Key(password, salt, iterations, KeySize, sha512.New)
}

// VerifyKey re-derives the key and compares it with expected in constant time.
func VerifyKey(password, salt []byte, iterations int, expected []byte) bool {
	got := DeriveKey(password, salt, iterations)
	defer common.WipeByteArray(got)
	return subtle.ConstantTimeCompare(got, expected) == 1
}
