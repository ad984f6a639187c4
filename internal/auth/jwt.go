// Package auth implements the stateless session token: an HS256-signed JWT
// carrying the user identifier and an expiry. Tokens are verified by
// signature and expiry only; there is no server-side revocation list.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the claims embedded in an access token.
type SessionClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid session token")

// JWTAuthenticator signs and verifies session tokens with a shared HMAC secret.
type JWTAuthenticator struct {
	secret   []byte
	issuer   string
	audience string
}

// NewJWTAuthenticator creates a new JWTAuthenticator instance.
func NewJWTAuthenticator(secret, issuer, audience string) JWTAuthenticator {
	return JWTAuthenticator{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}
}

// GenerateSessionToken signs an access token for userID expiring after ttl.
func (a JWTAuthenticator) GenerateSessionToken(userID string, ttl time.Duration, now time.Time) (string, error) {
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    a.issuer,
			Audience:  jwt.ClaimStrings{a.audience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(a.secret)
}

// ValidateSessionToken verifies signature, expiry, issuer, and audience, and
// returns the parsed claims. Any failure is reported as ErrInvalidToken.
func (a JWTAuthenticator) ValidateSessionToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return a.secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(a.issuer),
		jwt.WithAudience(a.audience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
