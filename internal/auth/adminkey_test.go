package auth

import (
	"errors"
	"testing"
)

func TestAdminKeyRoundTrip(t *testing.T) {
	hash, err := HashAdminKey("correct horse battery")
	if err != nil {
		t.Fatalf("HashAdminKey() error = %v", err)
	}

	if err := CheckAdminKey(hash, "correct horse battery"); err != nil {
		t.Errorf("CheckAdminKey() with the right key error = %v", err)
	}

	err = CheckAdminKey(hash, "wrong key")
	if !errors.Is(err, ErrAdminKeyMismatch) {
		t.Errorf("CheckAdminKey() with wrong key error = %v, want ErrAdminKeyMismatch", err)
	}
}

func TestHashAdminKey_TooShort(t *testing.T) {
	if _, err := HashAdminKey("short"); err == nil {
		t.Fatal("HashAdminKey() should reject keys shorter than 8 characters")
	}
}

func TestCheckAdminKey_NoHashConfigured(t *testing.T) {
	if err := CheckAdminKey("", "whatever"); err == nil {
		t.Fatal("CheckAdminKey() should fail when no hash is configured")
	}
}
