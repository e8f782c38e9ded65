package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"gitlab.com/camfleet.net/internal/config"
)

// MiddlewareProvider guards the admin API with HS256 bearer tokens.
// An empty secret disables the check; the wire protocol between
// controller and nodes never carries auth.
type MiddlewareProvider struct {
	secret []byte
}

func NewMiddlewareProvider(cfg *config.JwtConfig) *MiddlewareProvider {
	return &MiddlewareProvider{
		secret: []byte(cfg.Secret),
	}
}

func (m *MiddlewareProvider) JWTMiddleware(next http.Handler) http.Handler {
	if len(m.secret) == 0 {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header missing", http.StatusUnauthorized)
			return
		}

		// Extract token from "Bearer <token>"
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return m.secret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
