// Package auth derives a caller's Origin from a bearer JWT: this module
// trusts whatever identity provider issued the token and only needs the
// subject claim, not the full session/refresh-token lifecycle a user-facing
// auth system would carry.
package auth

import (
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// OriginClaims is the subset of claims this module reads off a bearer
// token: Subject becomes the request's Origin.
type OriginClaims struct {
	jwt.RegisteredClaims
}

// JWTService validates bearer tokens and extracts the origin claim.
type JWTService struct {
	secret []byte
}

// NewJWTService reads JWT_SECRET from the environment; it panics if unset
// since the middleware cannot authenticate any caller without it.
func NewJWTService() *JWTService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		panic("JWT_SECRET environment variable is required")
	}
	return &JWTService{secret: []byte(secret)}
}

// ValidateToken validates and parses a bearer JWT.
func (s *JWTService) ValidateToken(tokenString string) (*OriginClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &OriginClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*OriginClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// OriginFor returns the origin a bearer token authenticates: its subject
// claim.
func (s *JWTService) OriginFor(tokenString string) (string, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	subject, err := claims.GetSubject()
	if err != nil {
		return "", err
	}
	if subject == "" {
		return "", fmt.Errorf("token carries no subject claim")
	}
	return subject, nil
}
