package middleware

import (
	"net/http"
	"regexp"

	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

// ClientIDHeader names the storage namespace of the calling browser profile.
const ClientIDHeader = "X-Client-ID"

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// ValidClientID reports whether id is usable as a storage namespace.
func ValidClientID(id string) bool {
	return clientIDPattern.MatchString(id)
}

// RequireClientID rejects requests without a well-formed X-Client-ID header
// and stores the id in the request context for logger.ClientIDFromContext.
func RequireClientID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(ClientIDHeader)
		if !ValidClientID(id) {
			msg := "missing " + ClientIDHeader + " header"
			if id != "" {
				msg = "malformed " + ClientIDHeader + " header"
			}
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{
					Code:      "MISSING_CLIENT_ID",
					Message:   msg,
					RequestID: logger.CorrelationIDFromContext(r.Context()),
				},
			})
			return
		}

		ctx := logger.WithClientID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
