package restapi

import (
	"net/http"

	"commuter.routing.org/internal/appconf"
)

// WithSecurityHeaders wraps the given handler with security headers middleware.
// Strict-Transport-Security is only sent in production.
func (api *RestAPI) WithSecurityHeaders(handler http.Handler) http.Handler {
	return securityHeaders(handler, api.Config.Environment() == appconf.Production)
}

func securityHeaders(next http.Handler, strictTransport bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		headers.Set("X-Content-Type-Options", "nosniff")
		headers.Set("X-Frame-Options", "DENY")
		headers.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		headers.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none';")
		if strictTransport {
			headers.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		// Trip planning is public; browsers on any origin may call it.
		if r.Header.Get("Origin") != "" {
			headers.Set("Access-Control-Allow-Origin", "*")
			headers.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			headers.Set("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)
			headers.Set("Access-Control-Expose-Headers", "Retry-After, "+requestIDHeader)
			headers.Set("Access-Control-Max-Age", "86400")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
