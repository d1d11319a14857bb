// Package httpserver centralizes http.Server construction so every listener
// carries the same protective timeouts.
package httpserver

import (
	"net/http"
	"time"
)

// New builds the service's HTTP server. Handler-level deadlines come from the
// router's timeout middleware; these guard the connection itself.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
