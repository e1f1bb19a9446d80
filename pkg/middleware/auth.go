package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Dias221467/chatterbox/pkg/jwt"
	log "github.com/sirupsen/logrus"
)

type contextKey string

const userContextKey contextKey = "user"

// AuthMiddleware rejects requests without a valid bearer token and stores the
// token claims in the request context.
func AuthMiddleware(secret string, opts jwt.Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthorized(w, "missing Authorization header")
				return
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeUnauthorized(w, "invalid Authorization header format")
				return
			}

			claims, err := jwt.ValidateToken(parts[1], secret, opts)
			if err != nil {
				log.WithFields(log.Fields{
					"path":  r.URL.Path,
					"error": err,
				}).Warn("Rejected token")
				writeUnauthorized(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims)))
		})
	}
}

// WithUser returns a copy of ctx carrying claims.
func WithUser(ctx context.Context, claims *jwt.Claims) context.Context {
	return context.WithValue(ctx, userContextKey, claims)
}

// GetUserFromContext returns the authenticated claims, or nil when the request
// went through no auth middleware.
func GetUserFromContext(ctx context.Context) *jwt.Claims {
	claims, _ := ctx.Value(userContextKey).(*jwt.Claims)
	return claims
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
