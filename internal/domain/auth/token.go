package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"okr/internal/domain/employee"
	"okr/internal/shared"
)

// Claims is the JWT payload issued at login. The token carries identity
// and role only; permissions are resolved from the capability table on
// every request.
type Claims struct {
	UserID string        `json:"uid"`
	Name   string        `json:"name"`
	Role   employee.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for the given employee.
func GenerateToken(secret string, e employee.Employee, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		UserID: e.UserID,
		Name:   e.Name,
		Role:   e.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   e.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a bearer token and returns its claims. Expired,
// malformed or mis-signed tokens map to the unauthenticated sentinel.
func ParseToken(secret, raw string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Claims{}, fmt.Errorf("invalid token: %w", shared.ErrUnauthenticated)
	}
	return claims, nil
}
