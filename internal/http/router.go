// README: HTTP router registration.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripgen/internal/http/handlers"
	"tripgen/internal/http/middleware"
)

func NewRouter(s *Server) *gin.Engine {
	r := gin.New()
	// The rate limiter keys on ClientIP, so forwarded headers count only from known proxies.
	if err := r.SetTrustedProxies(s.trustedProxies); err != nil {
		s.logger.Error("ignoring trusted proxies", slog.String("error", err.Error()))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(
		middleware.RequestID(),
		middleware.Logging(s.logger),
		middleware.Recovery(s.logger),
	)
	if s.metrics != nil {
		r.Use(middleware.Metrics(s.metrics))
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")

	itineraryHandler := handlers.NewItineraryHandler(s.planner, s.generateTimeout)
	generate := api.Group("")
	if s.limiter != nil {
		generate.Use(middleware.RateLimit(s.limiter, s.metrics, s.logger))
	}
	generate.POST("/generate-itinerary", itineraryHandler.Generate)
	generate.POST("/itineraries/regenerate", itineraryHandler.Regenerate)
	api.GET("/itineraries/options", itineraryHandler.Options)

	if s.places != nil {
		placesHandler := handlers.NewPlacesHandler(s.places)
		api.GET("/destinations/suggest", placesHandler.Suggest)
	}
	if s.usage != nil {
		usageHandler := handlers.NewUsageHandler(s.usage)
		api.GET("/usage", usageHandler.Summary)
	}

	return r
}
