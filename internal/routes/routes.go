package routes

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	"github.com/BruksfildServices01/barbershop-booking/internal/auth"
	"github.com/BruksfildServices01/barbershop-booking/internal/config"
	"github.com/BruksfildServices01/barbershop-booking/internal/handlers"
	"github.com/BruksfildServices01/barbershop-booking/internal/infra/cache"
	infraRepo "github.com/BruksfildServices01/barbershop-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barbershop-booking/internal/infra/storage"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	ucBooking "github.com/BruksfildServices01/barbershop-booking/internal/usecase/booking"
)

// Infra holds the process-wide clients built in main. Redis and Photos are
// optional.
type Infra struct {
	Redis   *redis.Client
	Photos  storage.PhotoStore
	Audit   *audit.Dispatcher
	Metrics *metrics.Metrics
	Log     *slog.Logger
}

// Policy derives the booking rules from the loaded configuration.
func Policy(cfg *config.Config) ucBooking.Policy {
	return ucBooking.Policy{
		Schedule:       cfg.Venue.Schedule(),
		Zone:           cfg.Venue.Zone(),
		ClosedWeekdays: cfg.Venue.Closed(),
		MinAdvance:     cfg.Venue.MinAdvance(),
		CountryCode:    cfg.Twilio.CountryCode,
	}
}

// NewEngine builds the gin engine. Only cfg.TrustedProxies may set the
// client address through X-Forwarded-For, which keys the rate limiter.
func NewEngine(cfg *config.Config) (*gin.Engine, error) {
	r := gin.Default()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	return r, nil
}

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, infra Infra) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.RequestID())
	if infra.Metrics != nil {
		r.Use(middleware.Metrics(infra.Metrics))
	}
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins...))

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)
	catalogRepo := infraRepo.NewCatalogGormRepository(db)
	adminRepo := infraRepo.NewAdminGormRepository(db)

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	policy := Policy(cfg)

	var slotCache ucBooking.SlotCache = ucBooking.NoCache{}
	if infra.Redis != nil {
		slotCache = cache.NewAvailabilityRedis(infra.Redis, cfg.AvailabilityTTL, infra.Log, infra.Metrics)
	}

	// ======================================================
	// 🧠 USE CASES (BOOKINGS)
	// ======================================================
	getAvailabilityUC := ucBooking.NewGetAvailability(bookingRepo, policy, slotCache)
	createBookingUC := ucBooking.NewCreateBooking(bookingRepo, policy, slotCache, infra.Audit)
	updateStatusUC := ucBooking.NewUpdateStatus(bookingRepo, policy, slotCache, infra.Audit)
	replyUC := ucBooking.NewReplyToConfirmation(bookingRepo, policy, slotCache, infra.Audit)
	listReportUC := ucBooking.NewListReport(bookingRepo, policy)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	publicHandler := handlers.NewPublicHandler(cfg.Venue, catalogRepo, getAvailabilityUC, createBookingUC, infra.Metrics)
	webhookHandler := handlers.NewWebhookHandler(replyUC, cfg.Twilio.AuthToken, cfg.Twilio.WebhookURL, infra.Log, infra.Metrics)

	authHandler := handlers.NewAuthHandler(adminRepo, issuer, infra.Audit)
	barberHandler := handlers.NewBarberHandler(catalogRepo, infra.Photos, infra.Audit, cfg.Twilio.CountryCode)
	serviceHandler := handlers.NewServiceHandler(catalogRepo, slotCache, infra.Audit)
	bookingHandler := handlers.NewBookingHandler(listReportUC, updateStatusUC, infra.Metrics)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	// ======================================================
	// 🩺 OPERAÇÃO
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if infra.Metrics != nil {
		r.GET("/metrics", gin.WrapH(infra.Metrics.Handler()))
	}

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 API PÚBLICA
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/venue", publicHandler.Venue)
			publicAPI.GET("/barbers", publicHandler.ListBarbers)
			publicAPI.GET("/services", publicHandler.ListServices)
			publicAPI.GET("/availability", publicHandler.Availability)

			createChain := []gin.HandlerFunc{}
			if infra.Redis != nil {
				limiter := middleware.NewRateLimiter(
					infra.Redis,
					cfg.BookingRateLimit,
					cfg.BookingRateWin,
					"ratelimit:bookings",
					infra.Log,
					infra.Metrics,
				)
				createChain = append(createChain, limiter.Handler())
			}
			createChain = append(createChain, publicHandler.CreateBooking)
			publicAPI.POST("/bookings", createChain...)
		}

		// ------------------------------
		// 💬 WEBHOOKS
		// ------------------------------
		if cfg.Twilio.AuthToken != "" {
			api.POST("/webhooks/whatsapp", webhookHandler.WhatsApp)
		} else if infra.Log != nil {
			infra.Log.Warn("TWILIO_AUTH_TOKEN not set, whatsapp webhook disabled")
		}

		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// 🔐 API ADMIN
		// ------------------------------
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(issuer))
		{
			admin.GET("/me", authHandler.Me)

			admin.GET("/barbers", barberHandler.List)
			admin.POST("/barbers", barberHandler.Create)
			admin.PATCH("/barbers/:id", barberHandler.Update)
			admin.PATCH("/barbers/:id/active", barberHandler.SetActive)
			admin.POST("/barbers/:id/photo", barberHandler.UploadPhoto)

			admin.GET("/services", serviceHandler.List)
			admin.POST("/services", serviceHandler.Create)
			admin.PATCH("/services/:id", serviceHandler.Update)
			admin.PATCH("/services/:id/active", serviceHandler.SetActive)

			admin.GET("/bookings", bookingHandler.Report)
			admin.PATCH("/bookings/:id/status", bookingHandler.UpdateStatus)

			admin.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}
