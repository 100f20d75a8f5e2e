// Package auth handles credential verification and session tokens.
//
// Two credentials get a user signed in:
//
//   - a signed sign-in message (a JWT minted by the Farcaster sign-in
//     widget, carrying the FID and profile claims) — verified by
//     SignInVerifier
//   - an OAuth authorization code — exchanged by Provider
//
// Either way the verified FID is reconciled to a local user, and the
// server issues its own session JWT stored in an HttpOnly cookie. The
// middleware in this package validates that cookie on later requests.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionIssuer = "placelist"

// TokenService issues and validates session JWTs.
//
// Sessions are HS256-signed with a server-side secret; the token carries
// only the internal user ID in the "sub" claim, so validation needs no
// database lookup.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// Generate creates a signed session token for the given userID.
// Token lifetime: 7 days; after expiry the client re-authenticates.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, 7*24*time.Hour)
}

// GenerateWithDuration creates a session token with a custom expiry.
// Used in tests and for short-lived tokens.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    sessionIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing session token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a session token, returning the userID from
// the "sub" claim. The algorithm and issuer are pinned to prevent
// algorithm-confusion and cross-application tokens.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&sessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: session expired")
		}
		return "", fmt.Errorf("auth: invalid session token: %w", err)
	}

	c, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid session claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: session token has no subject")
	}

	return c.Subject, nil
}
