package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the registered claims of a back-office token.
type SessionClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type jwtCustomClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

const adminRole = "admin"

// GenerateToken creates a signed HS256 JWT for the provided session.
func GenerateToken(secret string, session SessionClaims) (string, error) {
	claims := &jwtCustomClaims{
		Role: adminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Subject,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the token signature and expiry and returns its claims.
func ParseToken(secret, tokenString string) (SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return SessionClaims{}, err
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid || claims.Role != adminRole {
		return SessionClaims{}, jwt.ErrTokenInvalidClaims
	}

	out := SessionClaims{Subject: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
