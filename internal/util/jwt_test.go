package util

import (
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(testSecret, 42, TokenTypeAccess, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ParseToken(testSecret, token, TokenTypeAccess)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Errorf("TokenType = %s, want %s", claims.TokenType, TokenTypeAccess)
	}
}

func TestParseToken_RejectsWrongType(t *testing.T) {
	token, err := GenerateToken(testSecret, 1, TokenTypeRefresh, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := ParseToken(testSecret, token, TokenTypeAccess); err == nil {
		t.Error("ParseToken() accepted a refresh token as access, want error")
	}
}

func TestParseToken_RejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, 1, TokenTypeAccess, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := ParseToken("other-secret", token, TokenTypeAccess); err == nil {
		t.Error("ParseToken() accepted a token signed with another secret, want error")
	}
}

func TestParseToken_RejectsExpired(t *testing.T) {
	token, err := GenerateToken(testSecret, 1, TokenTypeAccess, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := ParseToken(testSecret, token, TokenTypeAccess); err == nil {
		t.Error("ParseToken() accepted an expired token, want error")
	}
}

func TestParseToken_RejectsGarbage(t *testing.T) {
	if _, err := ParseToken(testSecret, "not.a.token", TokenTypeAccess); err == nil {
		t.Error("ParseToken() accepted garbage, want error")
	}
}

func TestGenerateTokenPair(t *testing.T) {
	access, refresh, err := GenerateTokenPair(testSecret, 7, time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}

	accessClaims, err := ParseToken(testSecret, access, TokenTypeAccess)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	refreshClaims, err := ParseToken(testSecret, refresh, TokenTypeRefresh)
	if err != nil {
		t.Fatalf("parse refresh token: %v", err)
	}
	if accessClaims.UserID != 7 || refreshClaims.UserID != 7 {
		t.Errorf("UserIDs = %d/%d, want 7/7", accessClaims.UserID, refreshClaims.UserID)
	}
}
