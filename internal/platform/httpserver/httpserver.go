package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. Every endpoint is a short request/response
// round trip, so the write timeout can stay tight; idle keepalive
// connections are recycled after a minute.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
