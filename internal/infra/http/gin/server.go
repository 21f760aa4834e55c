package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"rentbook/internal/infra/config"
	"rentbook/internal/infra/obs"
)

type ListingHTTP interface {
	Create(c *gin.Context)
	Update(c *gin.Context)
	Get(c *gin.Context)
	Calendar(c *gin.Context)
	Quote(c *gin.Context)
}

type BookingHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	RefundPreview(c *gin.Context)
	Cancel(c *gin.Context)
	Confirm(c *gin.Context)
	Decline(c *gin.Context)
	Complete(c *gin.Context)
	ReleaseDeposit(c *gin.Context)
	Mine(c *gin.Context)
}

type RenterHTTP interface {
	SetKYC(c *gin.Context)
}

type Handlers struct {
	Listing ListingHTTP
	Booking BookingHTTP
	Renter  RenterHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", HeaderUserID, HeaderIdempotencyKey, obs.HeaderRequestID},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			obs.HeaderRequestID,
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Listing != nil {
		api.POST("/listings", h.Listing.Create)
		api.PUT("/listings/:id", h.Listing.Update)
		api.GET("/listings/:id", h.Listing.Get)
		api.GET("/listings/:id/calendar", h.Listing.Calendar)
		api.POST("/listings/:id/quote", h.Listing.Quote)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings/:id", h.Booking.Get)
		api.GET("/bookings/:id/refund-preview", h.Booking.RefundPreview)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.POST("/bookings/:id/confirm", h.Booking.Confirm)
		api.POST("/bookings/:id/decline", h.Booking.Decline)
		api.POST("/bookings/:id/complete", h.Booking.Complete)
		api.POST("/bookings/:id/release-deposit", h.Booking.ReleaseDeposit)
		api.GET("/me/bookings", h.Booking.Mine)
	}
	if h.Renter != nil {
		api.PUT("/renters/:id/kyc", h.Renter.SetKYC)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
