package middlewares

import (
	"context"
	"net/http"
	"strings"

	"tractionservice/utils"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the identity the engine needs: who acts (username, person)
// and which tenant scope every read and write is bound to. Authorization
// decisions stay with the surrounding services.
type Claims struct {
	Username string `json:"username"`
	TenantID string `json:"tenant_id"`
	PersonID string `json:"person_id"`
	jwt.RegisteredClaims
}

type contextKey string

const (
	UserContextKey   contextKey = "user"
	TenantContextKey contextKey = "tenant"
	PersonContextKey contextKey = "person"
)

func JWTMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.HandleErrorMessage(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				utils.HandleErrorMessage(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			})

			if err != nil {
				utils.HandleErrorMessage(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(*Claims)
			if !ok || !token.Valid {
				utils.HandleErrorMessage(w, "Invalid token claims", http.StatusUnauthorized)
				return
			}
			if claims.TenantID == "" {
				utils.HandleErrorMessage(w, "Token missing tenant scope", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims.Username)
			ctx = context.WithValue(ctx, TenantContextKey, claims.TenantID)
			ctx = context.WithValue(ctx, PersonContextKey, claims.PersonID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUsernameFromContext(ctx context.Context) string {
	if username, ok := ctx.Value(UserContextKey).(string); ok {
		return username
	}
	return ""
}

func GetTenantFromContext(ctx context.Context) string {
	if tenant, ok := ctx.Value(TenantContextKey).(string); ok {
		return tenant
	}
	return ""
}

func GetPersonFromContext(ctx context.Context) string {
	if person, ok := ctx.Value(PersonContextKey).(string); ok {
		return person
	}
	return ""
}
