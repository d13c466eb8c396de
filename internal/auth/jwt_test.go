package auth

import (
	"testing"
)

func TestJWTRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	if err := InitJWTSecret(); err != nil {
		t.Fatalf("init secret: %v", err)
	}

	token, err := GenerateJWT(42, "dev@example.com")

	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	userID, err := VerifyJWT(token)

	if err != nil {
		t.Fatalf("verifying token: %v", err)
	}

	if userID != 42 {
		t.Fatalf("expected user 42, got %d", userID)
	}
}

func TestVerifyJWTRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	if err := InitJWTSecret(); err != nil {
		t.Fatalf("init secret: %v", err)
	}

	if _, err := VerifyJWT("not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}

	token, err := GenerateJWT(7, "dev@example.com")

	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	jwtSecret = "different-secret"

	if _, err := VerifyJWT(token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}
