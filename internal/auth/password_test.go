package auth

import (
	"testing"
)

func TestHashPassword(t *testing.T) {
	password := "securePassword123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hash == "" {
		t.Error("expected non-empty hash")
	}

	if hash == password {
		t.Error("hash should not equal plaintext password")
	}
}

func TestHashPassword_DifferentHashes(t *testing.T) {
	password := "securePassword123"

	hash1, err := HashPassword(password)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hash2, err := HashPassword(password)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hash1 == hash2 {
		t.Error("same password should produce different hashes due to salt")
	}

	if !VerifyPassword(password, hash1) || !VerifyPassword(password, hash2) {
		t.Error("both stored forms should verify against the original password")
	}
}

func TestVerifyPassword_Correct(t *testing.T) {
	password := "securePassword123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	if !VerifyPassword(password, hash) {
		t.Error("expected correct password to verify")
	}
}

func TestVerifyPassword_Incorrect(t *testing.T) {
	hash, err := HashPassword("securePassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	if VerifyPassword("wrongPassword456", hash) {
		t.Error("expected incorrect password to fail verification")
	}
}

func TestVerifyPassword_MalformedStoredForm(t *testing.T) {
	cases := []string{
		"",
		"not-a-valid-bcrypt-hash",
		"$2a$10$tooshort",
		"plaintext",
	}

	for _, stored := range cases {
		if VerifyPassword("password", stored) {
			t.Errorf("malformed stored form %q should not verify", stored)
		}
	}
}

func TestCheckPassword_EmptyPassword(t *testing.T) {
	hash, err := HashPassword("securePassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	if err := CheckPassword(hash, ""); err == nil {
		t.Error("expected error for empty password")
	}
}

func TestHashPassword_EmptyPassword(t *testing.T) {
	hash, err := HashPassword("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hash == "" {
		t.Error("expected non-empty hash even for empty password")
	}
}
