// internal/middleware/security.go
//
// Security-header middleware for the settings inspector.
//
// The inspector serves configuration, redacted or not, so responses must
// never be cached, framed, or sniffed:
//
//   • Cache-Control            – no-store, settings change per deploy
//   • Content-Security-Policy  – nothing may load, nothing may frame us
//   • X-Frame-Options          – click-jacking defence for old browsers
//   • X-Content-Type-Options   – MIME-sniffing defence
//   • Referrer-Policy          – never leak the inspector URL
//
// Headers are set before next.ServeHTTP so they reach the client even when
// the handler streams its body.  A handler may still override one.

package middleware

import "net/http"

var securityHeaders = [][2]string{
	{"Cache-Control", "no-store"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"X-Frame-Options", "DENY"},
	{"X-Content-Type-Options", "nosniff"},
	{"Referrer-Policy", "no-referrer"},
}

// Security sets the headers above on every response.
func Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range securityHeaders {
			h.Set(kv[0], kv[1])
		}
		next.ServeHTTP(w, r)
	})
}
