package httpapi

import (
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/cmhillm75/sqlalchemy-challenge/internal/config"
)

// NewServer wraps mux with CORS, request ids and request logging. The API is
// read-only, so only GET and HEAD are allowed cross-origin.
func NewServer(config config.Config, mux *http.ServeMux, metrics *Metrics) *http.Server {
	c := cors.New(cors.Options{
		AllowedOrigins: config.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
		ExposedHeaders: []string{requestIDHeader},
	})
	return &http.Server{
		Addr:              config.HTTPAddr,
		Handler:           c.Handler(withRequestID(requestLogger(mux, metrics))),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
