package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
)

const opaqueTokenBytes = 32

// HashToken returns the hex-encoded SHA-256 digest of a raw credential.
// Refresh tokens and reset codes are persisted only in this form.
func HashToken(raw string) string {
	digest := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(digest[:])
}

// GenerateOpaqueToken returns a URL-safe random bearer credential with
// 32 bytes of entropy, encoded without padding.
func GenerateOpaqueToken() (string, error) {
	buf := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

var resetCodeMax = big.NewInt(1_000_000)

// GenerateResetCode returns a zero-padded 6-digit code drawn uniformly
// from 000000 to 999999.
func GenerateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, resetCodeMax)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
