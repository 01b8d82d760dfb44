package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go401-gateway/internal/response"
)

// APIKeyAuth admits requests carrying one of validKeys, either in X-API-Key
// or as a bearer token.
func APIKeyAuth(validKeys []string) func(next http.Handler) http.Handler {
	keys := make([][]byte, 0, len(validKeys))
	for _, key := range validKeys {
		if key != "" {
			keys = append(keys, []byte(key))
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := requestAPIKey(r)
			if apiKey == "" || !matchKey(keys, apiKey) {
				response.ErrorWithCode(w, "unauthorized", "Invalid or missing API key", http.StatusUnauthorized, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestAPIKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// matchKey compares against every key so timing does not reveal which one
// came closest.
func matchKey(keys [][]byte, candidate string) bool {
	c := []byte(candidate)
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare(k, c)
	}
	return found == 1
}
