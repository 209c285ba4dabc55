package middleware

import (
	"context"
	"net/http"
	"paddock/pkg/auth"
	"paddock/pkg/logger"
	"strings"
)

const claimsKey contextKey = "auth_claims"

// ClaimsFrom returns the verified token claims, or nil on public requests.
func ClaimsFrom(ctx context.Context) *auth.Claims {
	if v := ctx.Value(claimsKey); v != nil {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// Auth verifies the bearer token on mutating requests and stores the
// claims in the request context. Reads stay public; a valid token on a
// read still populates claims for rate limiting.
func Auth(tokens *auth.TokenManager, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")

			if header != "" && token != header {
				claims, err := tokens.Parse(token)
				if err == nil {
					ctx := context.WithValue(r.Context(), claimsKey, claims)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				log.Warn("Rejected invalid bearer token",
					"request_id", requestIDFrom(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			writeUnauthorized(w, "Authorization required")
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
