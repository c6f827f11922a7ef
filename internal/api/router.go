package api

import (
	"context"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"hotel-booking-backend/config"
	"hotel-booking-backend/internal/auth"
	"hotel-booking-backend/internal/mw"
)

const rateLimitIdle = 10 * time.Minute

// NewRouter creates and configures a new Gin router. responseCache is shared
// with background jobs that mutate bookings so they can flush it. Idle
// rate-limit entries are swept until ctx is done.
func NewRouter(ctx context.Context, cfg config.ServerConfig, h *Handler, jwtService *auth.Service, responseCache *mw.ResponseCache) *gin.Engine {
	RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestLogger())
	if cfg.RequestIPHeader != "" {
		r.TrustedPlatform = cfg.RequestIPHeader
	}

	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	r.GET("/health", h.Health)

	limiter := mw.NewIPRateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, rateLimitIdle)
	go limiter.Run(ctx, rateLimitIdle/10)
	caching := responseCache.Middleware()
	admin := mw.RequireAdmin()

	api := r.Group("/api")
	api.Use(limiter.Middleware())
	{
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)

		authed := api.Group("")
		authed.Use(mw.Auth(jwtService), responseCache.FlushOnWrite())

		authed.POST("/bookings", h.CreateBooking)
		authed.GET("/bookings", caching, h.ListBookings)
		authed.GET("/bookings/:id", h.GetBooking)
		authed.PATCH("/bookings/:id", h.UpdateBooking)
		authed.DELETE("/bookings/:id", admin, h.DeleteBooking)

		authed.GET("/reports/bookings", caching, h.BookingsReport)
		authed.GET("/reports/bookings/export", admin, h.ExportBookings)
		authed.GET("/reports/revenue", admin, caching, h.RevenueReport)
		authed.GET("/reports/occupancy", admin, caching, h.OccupancyReport)

		authed.GET("/rooms", caching, h.ListRooms)
		authed.PUT("/rooms/:id", admin, h.PutRoom)

		authed.GET("/subscriptions", h.GetSubscription)
		authed.PUT("/subscriptions", h.PutSubscription)
		authed.DELETE("/subscriptions", h.DeleteSubscription)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cc.AllowAllOrigins = true
		return cc
	}
	cc.AllowOrigins = origins
	cc.AllowCredentials = true
	return cc
}
