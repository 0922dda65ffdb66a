// README: HTTP router registration.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"roamgenie/internal/http/handlers"
	"roamgenie/internal/http/middleware"
	"roamgenie/internal/metrics"
)

// Routes builds the gin engine. Route groups whose service is nil are not registered.
func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.MaxMultipartMemory = handlers.MaxUploadBytes
	r.Use(middleware.RequestID(), middleware.Logging(), middleware.Recovery(), middleware.CORS(s.deps.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"service":   "RoamGenie Backend",
			"timestamp": s.now().UTC().Format("2006-01-02T15:04:05.000Z"),
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	if s.deps.Limiter != nil && s.deps.RateLimit > 0 {
		api.Use(middleware.RateLimit(s.deps.Limiter, s.deps.RateLimit, s.deps.RateWindow))
	}
	timeout := s.deps.RequestTimeout

	if s.deps.Scanner != nil {
		h := handlers.NewScannerHandler(s.deps.Scanner, timeout)
		api.POST("/scanner/parse", h.Parse)
		api.POST("/scanner/parse-image", h.ParseImage)
	}

	if s.deps.WarRoom != nil {
		h := handlers.NewWarRoomHandler(s.deps.WarRoom, timeout)
		api.POST("/warroom/monitor", h.Monitor)
		api.GET("/warroom/advisories", h.Advisories)
		api.GET("/warroom/flight", h.FlightStatus)
	}

	if s.deps.Passport != nil {
		h := handlers.NewPassportHandler(s.deps.Passport, timeout)
		api.POST("/passport/scan", h.Scan)
		api.POST("/passport/visa-free", h.VisaFree)
		api.GET("/passport/countries", h.Countries)
	}

	if s.deps.Planner != nil {
		h := handlers.NewTravelHandler(s.deps.Planner, timeout+30*time.Second)
		api.POST("/travel/plan", h.Plan)
		api.GET("/travel/iata-map", h.IATAMap)
	}

	if s.deps.Emergency != nil {
		h := handlers.NewEmergencyHandler(s.deps.Emergency)
		api.POST("/emergency/flight-cancellation", h.FlightCancellation)
		api.POST("/emergency/offline-fallback", h.OfflineFallback)
		api.POST("/ivr/call", h.Call)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})
	return r
}
