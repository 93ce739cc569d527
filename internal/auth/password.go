package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt stored form of password. The stored form
// embeds a fresh random salt, so hashing the same password twice yields
// different results.
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPassword reports why a password does not match its stored form.
func CheckPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// VerifyPassword is a total predicate over its inputs: a malformed or truncated
// stored form verifies as false rather than surfacing an error.
func VerifyPassword(password, hashedPassword string) bool {
	return CheckPassword(hashedPassword, password) == nil
}
