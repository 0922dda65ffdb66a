// README: API gateway; holds the module services and builds the gin engine around them.
package http

import (
	"net/http"
	"time"

	"roamgenie/internal/http/middleware"
	"roamgenie/internal/modules/emergency"
	"roamgenie/internal/modules/passport"
	"roamgenie/internal/modules/scanner"
	"roamgenie/internal/modules/warroom"
	"roamgenie/internal/service"
)

type ServerDeps struct {
	Scanner   *scanner.Service
	WarRoom   *warroom.Service
	Passport  *passport.Service
	Planner   *service.TripPlanner
	Emergency *emergency.Service

	// Limiter backs the per-IP rate limiter; nil disables it.
	Limiter        middleware.Allower
	RateLimit      int
	RateWindow     time.Duration
	AllowedOrigins []string
	RequestTimeout time.Duration
}

type Server struct {
	deps ServerDeps
	now  func() time.Time
}

func NewServer(deps ServerDeps) *Server {
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 60 * time.Second
	}
	return &Server{deps: deps, now: time.Now}
}

// NewHTTPServer wraps the routes in an http.Server listening on addr.
func (s *Server) NewHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
