package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestID assigns every request a correlation id, echoed in error bodies
// and the response headers. Client-supplied ids are kept.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
			r.Header.Set("X-Request-ID", id)
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}
