// internal/server/timeouts.go
//
// HTTP server helper with conservative timeouts.  The inspector answers
// small, in-memory requests, so every limit is short:
//
//   • ReadHeaderTimeout – abort slow-loris headers (5 s)
//   • WriteTimeout      – cap total response time (10 s)
//   • IdleTimeout       – close keep-alives on idle clients (60 s)

package server

import (
	"net/http"
	"time"
)

// New constructs an *http.Server with the defaults above.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
