package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Sign-in verification failures are split into two kinds so callers can
// tell a stale credential (re-authenticate) from a broken one (reject).
var (
	ErrTokenExpired   = errors.New("auth: sign-in token expired")
	ErrTokenMalformed = errors.New("auth: sign-in token malformed")
)

// SignInClaims is the payload of a signed sign-in message: the Farcaster
// identity claim plus whatever profile fields the signer included.
type SignInClaims struct {
	FID         string `json:"fid"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	PfpURL      string `json:"pfp_url,omitempty"`
	jwt.RegisteredClaims
}

// SignInVerifier validates signed sign-in messages produced by the
// Farcaster sign-in widget. The widget and the server share an HMAC
// secret; verification checks the signature, structure, and expiry, and
// extracts the FID claim. It performs no I/O — reconciliation against the
// user table happens afterwards, and only for credentials that pass here.
type SignInVerifier struct {
	secret []byte
}

// NewSignInVerifier creates a verifier with the shared sign-in secret.
func NewSignInVerifier(secret string) (*SignInVerifier, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: sign-in secret must be at least 16 characters")
	}
	return &SignInVerifier{secret: []byte(secret)}, nil
}

// Verify checks a sign-in token and returns its claims.
//
// Returns ErrTokenExpired for a structurally valid but stale token, and
// ErrTokenMalformed for anything else that fails to parse or verify
// (bad structure, wrong signature, wrong algorithm, missing FID).
func (v *SignInVerifier) Verify(tokenStr string) (*SignInClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&SignInClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}

	claims, ok := token.Claims.(*SignInClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	if claims.FID == "" {
		return nil, fmt.Errorf("%w: missing fid claim", ErrTokenMalformed)
	}

	return claims, nil
}
