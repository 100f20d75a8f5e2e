package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// The admin repair endpoint is guarded by a single shared key. Only its
// bcrypt hash is configured on the server (ADMIN_KEY_HASH), so a leaked
// config dump doesn't leak the key itself.

const adminKeyCost = 12

// ErrAdminKeyMismatch is returned when the presented key doesn't match
// the configured hash.
var ErrAdminKeyMismatch = errors.New("auth: admin key mismatch")

// HashAdminKey hashes a key for storage in configuration. Exposed for the
// operator workflow (generate once, put the hash in the environment).
func HashAdminKey(key string) (string, error) {
	if len(key) < 8 {
		return "", errors.New("auth: admin key must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(key), adminKeyCost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing admin key: %w", err)
	}
	return string(hash), nil
}

// CheckAdminKey compares a presented key against the configured bcrypt
// hash. Returns ErrAdminKeyMismatch when they don't match.
func CheckAdminKey(hash, key string) error {
	if hash == "" {
		return errors.New("auth: no admin key configured")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrAdminKeyMismatch
		}
		return fmt.Errorf("auth: comparing admin key: %w", err)
	}
	return nil
}
