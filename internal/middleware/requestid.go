package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader is the header clients may set and that every HTTP Surface
// echoes back, generating one when the client didn't supply it.
const RequestIDHeader = "X-Request-Id"

// RequestID assigns a correlation id to every request that lacks one,
// stores it in the request's X-Request-Id header, and echoes it back on the
// response. It does not write the id into any log line.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
