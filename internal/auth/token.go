// Package auth verifies the HS256 bearer tokens accepted by the HTTP and
// gRPC surfaces.
package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingToken is returned when no bearer token was presented.
var ErrMissingToken = errors.New("missing bearer token")

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// value.
func BearerToken(header string) (string, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if raw = strings.TrimSpace(raw); !ok || raw == "" {
		return "", ErrMissingToken
	}
	return raw, nil
}

// Verify checks an HS256 token signed with secret and returns its subject.
// Tokens without an expiry are rejected.
func Verify(secret []byte, raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("token is not valid")
	}
	return claims.Subject, nil
}
