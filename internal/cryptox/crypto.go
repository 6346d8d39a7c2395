// Package cryptox derives and checks account password verifiers.
//
// The server never stores passwords. On sign-up it stores a random salt and
// an Argon2id verifier; sign-in and the locked-note gate recompute the
// verifier and compare it in constant time.
package cryptox

import (
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32

	// SaltSize is the length of the per-user salt in bytes.
	SaltSize = 32
)

// MakeVerifier derives the Argon2id verifier for password and salt.
func MakeVerifier(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// CheckVerifier reports whether candidate equals the stored verifier.
func CheckVerifier(verifier []byte, candidate []byte) bool {
	return subtle.ConstantTimeCompare(verifier, candidate) == 1
}

// CheckPassword derives a verifier for password and compares it with stored.
func CheckPassword(stored []byte, salt []byte, password []byte) bool {
	return CheckVerifier(stored, MakeVerifier(password, salt))
}
