package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenService_IssueThenValidate(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, err := svc.Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if !svc.IsValid(token) {
		t.Fatal("freshly issued token must be valid")
	}
	subject, ok := svc.ExtractSubject(token)
	if !ok || subject != "alice@example.com" {
		t.Fatalf("expected subject alice@example.com, got %q (ok=%v)", subject, ok)
	}
}

func TestTokenService_ExpiresAfterLifetime(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := issuedAt
	svc := NewTokenService("secret", 30*time.Minute, WithClock(func() time.Time { return clock }))

	token, err := svc.Issue("bob@example.com")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	clock = issuedAt.Add(29 * time.Minute)
	if !svc.IsValid(token) {
		t.Fatal("token must still be valid before the lifetime elapses")
	}

	clock = issuedAt.Add(31 * time.Minute)
	if svc.IsValid(token) {
		t.Fatal("token must be invalid after the lifetime elapses")
	}
	if _, ok := svc.ExtractSubject(token); ok {
		t.Fatal("expired token must not yield a subject")
	}
}

func TestTokenService_RejectsTamperedAndForeignTokens(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	token, _ := svc.Issue("carol@example.com")

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	foreign, _ := NewTokenService("other-secret", time.Hour).Issue("carol@example.com")

	for name, tok := range map[string]string{
		"malformed":    "not-a-token",
		"empty":        "",
		"tampered":     tampered,
		"wrong secret": foreign,
	} {
		if svc.IsValid(tok) {
			t.Errorf("%s: expected invalid", name)
		}
		if _, ok := svc.ExtractSubject(tok); ok {
			t.Errorf("%s: expected no subject", name)
		}
	}
}

func TestTokenService_RejectsTokenWithoutExpiry(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	unsigned := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "dave@example.com"})
	token, err := unsigned.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if svc.IsValid(token) {
		t.Fatal("token without exp must be invalid")
	}
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	claims := jwt.RegisteredClaims{
		Subject:   "eve@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if svc.IsValid(token) {
		t.Fatal("HS512 token must be rejected")
	}
}

func TestTokenService_IssueEmptySubject(t *testing.T) {
	if _, err := NewTokenService("secret", time.Hour).Issue(""); err == nil {
		t.Fatal("expected error for empty subject")
	}
}

func TestTokenService_DefaultLifetime(t *testing.T) {
	if got := NewTokenService("secret", 0).Lifetime(); got != 24*time.Hour {
		t.Fatalf("expected default lifetime 24h, got %v", got)
	}
}
