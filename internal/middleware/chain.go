// Package middleware holds the HTTP middleware wrapped around the
// calculation API: request logging, security headers, CORS, rate limiting
// and metrics authentication.
package middleware

import (
	"net/http"
	"strings"
)

// Stack composes multiple middleware functions into a single middleware.
//
// Middleware is applied in the order provided, meaning the first middleware
// in the slice is the outermost (runs first on request, last on response).
//
// Example:
//
//	stack := Stack(loggingMw.Handler, securityMw.Handler, rateLimitMw.Handler)
//	server.Handler = stack(mux)
//
// This is equivalent to:
//
//	loggingMw.Handler(securityMw.Handler(rateLimitMw.Handler(mux)))
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// isAPIRequest reports whether the request targets the calculation API.
func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}
