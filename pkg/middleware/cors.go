package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds configuration for the CORS middleware.
type CORSConfig struct {
	// AllowedOrigins lists permitted origins. "*" allows any origin.
	AllowedOrigins []string

	// AllowedMethods defaults to GET, POST, PUT, DELETE, OPTIONS.
	AllowedMethods []string

	// AllowedHeaders defaults to Accept, Content-Type, X-Client-ID, X-Correlation-ID.
	AllowedHeaders []string

	// ExposedHeaders is the list of headers the browser may read.
	ExposedHeaders []string

	// MaxAge is how long (in seconds) preflight results can be cached.
	// Defaults to 3600 if 0.
	MaxAge int

	// Environment enables a wildcard origin when set to "development".
	Environment string
}

var (
	defaultCORSMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	defaultCORSHeaders = []string{"Accept", "Content-Type", ClientIDHeader, CorrelationIDHeader, "Last-Event-ID"}
)

// DefaultCORSConfig returns a permissive configuration for local development.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: defaultCORSMethods,
		AllowedHeaders: defaultCORSHeaders,
		ExposedHeaders: []string{CorrelationIDHeader},
		MaxAge:         3600,
		Environment:    "development",
	}
}

// CORS returns middleware that answers preflight requests and decorates
// responses with Access-Control headers. Credentials are never allowed: the
// client id travels in a header, not a cookie.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	if len(cfg.AllowedMethods) == 0 {
		cfg.AllowedMethods = defaultCORSMethods
	}
	if len(cfg.AllowedHeaders) == 0 {
		cfg.AllowedHeaders = defaultCORSHeaders
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 3600
	}

	allowWildcard := cfg.Environment == "development"
	originSet := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowWildcard = true
		}
		originSet[o] = struct{}{}
	}

	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	exposed := strings.Join(cfg.ExposedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()

			allowed := false
			switch {
			case allowWildcard:
				h.Set("Access-Control-Allow-Origin", "*")
				allowed = true
			case origin != "":
				h.Add("Vary", "Origin")
				if _, ok := originSet[origin]; ok {
					h.Set("Access-Control-Allow-Origin", origin)
					allowed = true
				}
			}

			if allowed {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				if exposed != "" {
					h.Set("Access-Control-Expose-Headers", exposed)
				}
				h.Set("Access-Control-Max-Age", maxAge)
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
