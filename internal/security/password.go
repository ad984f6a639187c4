// Package security provides the cryptographic primitives used by the auth
// flows: adaptive password hashing, token digests, and random credential
// generation.
package security

import (
	"github.com/matthewhartstonge/argon2"
)

// HashPassword hashes a plaintext password with argon2id and returns the
// encoded hash string, which embeds the salt and parameters.
func HashPassword(password string) (string, error) {
	cfg := argon2.DefaultConfig()

	encoded, err := cfg.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// VerifyPassword reports whether password matches the encoded argon2 hash.
func VerifyPassword(password, encodedHash string) (bool, error) {
	return argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
}
