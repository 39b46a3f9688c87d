package helpers

import (
	"testing"
	"time"
)

func testManager() *JWTManager {
	return NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	m := testManager()
	token, exp, err := m.GenerateAccessToken("user-1")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatal("expiry must be in the future")
	}
	claims, err := m.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected uid user-1, got %q", claims.UserID)
	}
}

func TestAccessAndRefreshSecretsAreIndependent(t *testing.T) {
	m := testManager()
	access, _, err := m.GenerateAccessToken("user-1")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	refresh, _, err := m.GenerateRefreshToken("user-1")
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	if _, err := m.ParseRefreshToken(access); err == nil {
		t.Fatal("access token must not verify against the refresh secret")
	}
	if _, err := m.ParseAccessToken(refresh); err == nil {
		t.Fatal("refresh token must not verify against the access secret")
	}
	claims, err := m.ParseRefreshToken(refresh)
	if err != nil {
		t.Fatalf("ParseRefreshToken: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected uid user-1, got %q", claims.UserID)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", -time.Minute, -time.Minute)
	token, _, err := m.GenerateAccessToken("user-1")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if _, err := m.ParseAccessToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	m := testManager()
	token, _, err := m.GenerateAccessToken("user-1")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	tampered := token[:len(token)-2] + "xx"
	if _, err := m.ParseAccessToken(tampered); err == nil {
		t.Fatal("expected tampered token to be rejected")
	}
	if _, err := m.ParseAccessToken("not.a.jwt"); err == nil {
		t.Fatal("expected malformed token to be rejected")
	}
}
