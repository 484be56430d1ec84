package util

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const scopeIssuer = "kicks-storefront"

// ScopeClaims identifies one anonymous shopper scope.
type ScopeClaims struct {
	ScopeID string `json:"sid"`
	jwt.RegisteredClaims
}

// NewScopeID returns a fresh random scope identifier.
func NewScopeID() string {
	return uuid.NewString()
}

// GenerateScopeToken signs a token for scopeID valid for expiry.
func GenerateScopeToken(scopeID, secret string, expiry time.Duration) (string, error) {
	if _, err := uuid.Parse(scopeID); err != nil {
		return "", fmt.Errorf("%w: scope id must be a uuid", ErrInvalidToken)
	}

	now := time.Now()
	claims := ScopeClaims{
		ScopeID: scopeID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    scopeIssuer,
			Subject:   scopeID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign scope token: %w", err)
	}
	return signed, nil
}

// ValidateScopeToken parses and verifies a scope token.
func ValidateScopeToken(tokenString, secret string) (*ScopeClaims, error) {
	claims := &ScopeClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(scopeIssuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.ScopeID); err != nil {
		return nil, fmt.Errorf("%w: malformed scope id", ErrInvalidToken)
	}
	return claims, nil
}
