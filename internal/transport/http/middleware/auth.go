package middleware

import (
	"context"
	"net/http"
	"strings"

	"okr/internal/domain/auth"
	"okr/internal/domain/employee"
)

type ctxKey int

const ctxKeyUser ctxKey = 1

// UserContext is the authenticated identity attached to the request.
type UserContext struct {
	UserID string
	Name   string
	Role   employee.Role
}

// Auth parses the bearer token when present and attaches the caller
// identity. Missing or invalid tokens pass through anonymously; route
// guards decide whether that matters.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, UserContext{
				UserID: claims.UserID,
				Name:   claims.Name,
				Role:   claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(UserContext)
	return user, ok
}
