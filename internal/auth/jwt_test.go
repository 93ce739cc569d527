package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/courtside/bookingd/internal/models"
)

func TestNewJWTManager(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	if manager == nil {
		t.Fatal("expected JWTManager to be created")
	}
	if manager.secretKey != "test-secret" {
		t.Errorf("expected secretKey 'test-secret', got '%s'", manager.secretKey)
	}
	if manager.tokenDuration != time.Hour {
		t.Errorf("expected tokenDuration 1h, got %v", manager.tokenDuration)
	}
}

func TestGenerateToken(t *testing.T) {
	manager := NewJWTManager("test-secret-key", time.Hour)

	token, expiresAt, err := manager.GenerateToken(42, "test@example.com", models.RoleUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if token == "" {
		t.Error("expected non-empty token")
	}

	expectedExpiry := time.Now().Add(time.Hour)
	if expiresAt.Before(expectedExpiry.Add(-time.Minute)) || expiresAt.After(expectedExpiry.Add(time.Minute)) {
		t.Errorf("expiry time not within expected range")
	}
}

func TestValidateToken_Valid(t *testing.T) {
	manager := NewJWTManager("test-secret-key", time.Hour)

	token, _, err := manager.GenerateToken(42, "test@example.com", models.RoleAdmin)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("unexpected error validating token: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("expected UserID 42, got %d", claims.UserID)
	}
	if claims.Email() != "test@example.com" {
		t.Errorf("expected Email 'test@example.com', got '%s'", claims.Email())
	}
	if claims.Role != models.RoleAdmin {
		t.Errorf("expected Role ADMIN, got '%s'", claims.Role)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	manager := NewJWTManager("test-secret-key", -time.Hour)

	token, _, err := manager.GenerateToken(42, "test@example.com", models.RoleUser)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := manager.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestValidateToken_InvalidSignature(t *testing.T) {
	manager1 := NewJWTManager("secret-key-1", time.Hour)
	manager2 := NewJWTManager("secret-key-2", time.Hour)

	token, _, err := manager1.GenerateToken(42, "test@example.com", models.RoleUser)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := manager2.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong signing key, got %v", err)
	}
}

func TestValidateToken_UniformFailure(t *testing.T) {
	manager := NewJWTManager("test-secret-key", time.Hour)

	// Bad signature, garbage, truncated, and empty inputs must all yield the
	// same opaque result.
	cases := []string{
		"",
		"garbage",
		"a.b.c",
		"eyJhbGciOiJIUzI1NiJ9.e30.",
	}

	for _, input := range cases {
		if _, err := manager.ValidateToken(input); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("input %q: expected ErrInvalidToken, got %v", input, err)
		}
	}
}
