// Package middleware holds the HTTP middleware that sits in front of the
// parking meter routes: bearer-token authentication, request logging, CORS
// and the request body cap.
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// corsMaxAge is how long, in seconds, a browser may cache a preflight answer.
const corsMaxAge = 600

// NewCORSHandler returns a middleware that lets the listed browser origins
// call the API. Origins are full scheme+host values without a trailing slash.
//
// Browser clients send the bearer token in Authorization, so that header is
// allowed. Content-Disposition is exposed for the session export download and
// X-Request-Id so clients can quote it when reporting a failed stop.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-Id"},
		MaxAge:         corsMaxAge,
	})
	return c.Handler
}
