package middleware

import (
	"fmt"
	"net/http"
)

// CacheControl marks GET responses as publicly cacheable for
// maxAge seconds. Catalog views use it; per-client collections use NoStore.
func CacheControl(maxAge int) func(http.Handler) http.Handler {
	value := fmt.Sprintf("public, max-age=%d", maxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet && maxAge > 0 {
				w.Header().Set("Cache-Control", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NoStore forbids caching of responses that depend on the caller's client id.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Add("Vary", ClientIDHeader)
		next.ServeHTTP(w, r)
	})
}
