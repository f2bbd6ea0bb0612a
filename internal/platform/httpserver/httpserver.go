// Package httpserver builds the process HTTP server with shared defaults.
package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with timeouts sized for the filing API: the
// heaviest request expands and persists one quarter, well under a second.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
