// internal/middleware/security.go
//
// Security-header middleware.
//
// Injects industry-standard headers on every panel response:
//
//   • Strict-Transport-Security  –  forces HTTPS (2 years + preload)
//   • Content-Security-Policy   –  sane default self-only policy
//   • X-Frame-Options           –  click-jacking defence
//   • X-Content-Type-Options    –  MIME-sniffing defence
//   • Referrer-Policy           –  drops path/query from Referer
//   • Permissions-Policy        –  disables powerful features by default
//
// Notes
// -----
// • Headers are added *after* next.ServeHTTP so handlers may set
//   Content-Type first; the middleware never overwrites an existing value.
// • The generated microsites are served by the remote Pages host, not by
//   this process, so the CSP here only governs the panel itself.

package middleware

import "net/http"

// Security sets security headers for every response.
func Security(next http.Handler) http.Handler {
	const (
		hsts = "max-age=63072000; includeSubDomains; preload"
		csp  = "default-src 'self'; img-src 'self' data:; object-src 'none'; " +
			"base-uri 'self'; frame-ancestors 'none'"
		xfo   = "DENY"
		nosn  = "nosniff"
		refer = "strict-origin-when-cross-origin"
		perm  = "geolocation=(), microphone=(), camera=()"
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)

		set := func(key, val string) {
			if w.Header().Get(key) == "" {
				w.Header().Add(key, val)
			}
		}
		set("Strict-Transport-Security", hsts)
		set("Content-Security-Policy", csp)
		set("X-Frame-Options", xfo)
		set("X-Content-Type-Options", nosn)
		set("Referrer-Policy", refer)
		set("Permissions-Policy", perm)
	})
}
