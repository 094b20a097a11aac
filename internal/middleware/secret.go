// Package middleware provides HTTP middleware for the archive API.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// SecretHeader is the header carrying the trigger shared secret.
const SecretHeader = "X-Archive-Secret"

// TriggerSecret guards the generation trigger with a shared secret. When no
// secret is configured the middleware passes every request through. The
// caller may present the secret either in the X-Archive-Secret header or as
// a bearer token.
func TriggerSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			presented := r.Header.Get(SecretHeader)
			if presented == "" {
				auth := r.Header.Get("Authorization")
				parts := strings.SplitN(auth, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
					presented = parts[1]
				}
			}

			if subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
