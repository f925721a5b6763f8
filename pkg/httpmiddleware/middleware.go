// Package httpmiddleware provides the HTTP middleware stack: panic recovery,
// CORS, rate limiting, request IDs, request-scoped logging, and OpenTelemetry
// instrumentation.
package httpmiddleware

import "net/http"

// Middleware wraps an http.Handler with additional behaviour.
type Middleware func(http.Handler) http.Handler

// Wrap applies middlewares to next so that the first middleware in the list
// is the outermost one at request time.
func Wrap(next http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		next = middlewares[i](next)
	}
	return next
}
