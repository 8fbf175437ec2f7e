package auth

import (
	"testing"
	"time"
)

func TestIssueAndParseToken(t *testing.T) {
	secret := []byte("secret")
	issued, err := IssueToken(secret, Claims{
		Sub:       "user_1",
		Email:     "sarah@example.com",
		Name:      "Sarah Johnson",
		Role:      "TRAINER",
		Onboarded: true,
		JTI:       "jti-1",
		Exp:       time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	claims, err := ParseToken(secret, issued)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Sub != "user_1" || claims.Email != "sarah@example.com" || claims.Role != "TRAINER" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.Onboarded {
		t.Fatal("expected onboarded flag to round-trip")
	}
}

func TestIssueAndParseTokenFreshAccount(t *testing.T) {
	// Role and name are empty until onboarding finishes.
	secret := []byte("secret")
	issued, err := IssueToken(secret, Claims{
		Sub:   "user_2",
		Email: "new@example.com",
		JTI:   "jti-2",
		Exp:   time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	claims, err := ParseToken(secret, issued)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Role != "" || claims.Onboarded {
		t.Fatalf("unexpected claims for fresh account: %+v", claims)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	secret := []byte("secret")
	issued, err := IssueToken(secret, Claims{
		Sub:   "user_1",
		Email: "sarah@example.com",
		JTI:   "jti-1",
		Exp:   time.Now().Add(-time.Minute).Unix(),
	})
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	_, err = ParseToken(secret, issued)
	if err != ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestParseTokenRejectsTampering(t *testing.T) {
	secret := []byte("secret")
	issued, err := IssueToken(secret, Claims{
		Sub:   "user_1",
		Email: "sarah@example.com",
		JTI:   "jti-1",
		Exp:   time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if _, err := ParseToken([]byte("other"), issued); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
	if _, err := ParseToken(secret, issued+"x"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for altered signature, got %v", err)
	}
}
