package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT reports that a token is not a decodable JWT. Servers are free to
// issue opaque tokens; this is a condition to branch on, not a failure.
var ErrNotJWT = errors.New("jwtx: token is not a JWT")

// Claims are the token claims a client can usefully inspect. The client
// never verifies signatures (it has no key material); these claims are for
// diagnostics such as spotting an expired token before the server rejects
// it.
type Claims struct {
	jwt.RegisteredClaims

	// Username for the authenticated user
	Username string `json:"username,omitempty"`

	// PreferredName is the display name for the user
	PreferredName string `json:"preferred_name,omitempty"`
}

// PeekClaims decodes a token's claims without verifying its signature.
func PeekClaims(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrNotJWT
	}

	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, ErrNotJWT
	}
	return claims, nil
}

// Expired reports whether the token's exp claim has passed. Tokens without
// an exp claim never count as expired.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return now.After(c.ExpiresAt.Time)
}
