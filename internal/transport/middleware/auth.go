package middleware

import (
	"net/http"
	"strings"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/pkg/ctxutil"
)

type tokenValidator interface {
	ValidateAccessToken(token string) (address.Address, error)
}

// Auth returns middleware that resolves a bearer access token to the
// signing wallet. Requests without a token pass through anonymously.
func Auth(validator tokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			wallet, err := validator.ValidateAccessToken(token)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","code":"UNAUTHENTICATED"}`))
				return
			}
			ctx := ctxutil.WithSigner(r.Context(), wallet)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}
