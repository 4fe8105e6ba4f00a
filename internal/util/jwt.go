package util

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// token types carried in the claims; refresh tokens may not be used as
// access tokens and vice versa
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the JWT payload.
type Claims struct {
	UserID    uint   `json:"user_id"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT of the given type and lifetime.
func GenerateToken(secret string, userID uint, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateTokenPair creates an access and a refresh token for a user.
func GenerateTokenPair(secret string, userID uint, accessTTL, refreshTTL time.Duration) (string, string, error) {
	access, err := GenerateToken(secret, userID, TokenTypeAccess, accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err := GenerateToken(secret, userID, TokenTypeRefresh, refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// ParseToken parses and verifies a JWT of the expected type.
func ParseToken(secret, tokenStr, expectedType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.TokenType != expectedType {
		return nil, fmt.Errorf("unexpected token type %q", claims.TokenType)
	}
	return claims, nil
}
