package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// NewCORS returns middleware that lets the hosted case UI call the
// calculation API from the listed origins. An empty list allows no
// cross-origin callers.
func NewCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	// cors.Options treats an empty list as "*"
	if len(allowedOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{
			RequestIDHeader,
			"Retry-After",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
		},
		MaxAge: 600,
	})
	return c.Handler
}
