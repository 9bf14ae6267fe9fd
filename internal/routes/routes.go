package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AquaServicesBR/carwash-scheduler/internal/config"
	"github.com/AquaServicesBR/carwash-scheduler/internal/events"
	"github.com/AquaServicesBR/carwash-scheduler/internal/handlers"
	infraRepo "github.com/AquaServicesBR/carwash-scheduler/internal/infra/repository"
	"github.com/AquaServicesBR/carwash-scheduler/internal/middleware"
	"github.com/AquaServicesBR/carwash-scheduler/internal/provider"
	ucBooking "github.com/AquaServicesBR/carwash-scheduler/internal/usecase/booking"
	ucPayment "github.com/AquaServicesBR/carwash-scheduler/internal/usecase/payment"
	ucSchedule "github.com/AquaServicesBR/carwash-scheduler/internal/usecase/schedule"
)

func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
	cfg *config.Config,
) error {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)
	slotRepo := infraRepo.NewSlotGormRepository(db)
	paymentRepo := infraRepo.NewPaymentGormRepository(db)
	walletSvc := infraRepo.NewWalletGormService(db)
	ledger := infraRepo.NewTransactionGormRecorder(db)

	dispatcher := events.NewDispatcher(events.NewRedisSink(rdb), logger)

	providers, err := provider.NewFactory(provider.FactoryConfig{
		MercadoPagoToken: cfg.MercadoPagoToken,
		StripeKey:        cfg.StripeKey,
		AllowLocal:       cfg.AllowLocalProvider,
	})
	if err != nil {
		return err
	}

	// ======================================================
	// USE CASES — CORE
	// ======================================================
	allocator := ucSchedule.NewAllocator(slotRepo, dispatcher, logger)

	orchestrator := ucPayment.NewOrchestrator(
		paymentRepo,
		bookingRepo,
		walletSvc,
		ledger,
		providers,
		dispatcher,
		logger,
		cfg.ProviderTimeout,
	)

	coordinator := ucBooking.NewCoordinator(
		bookingRepo,
		allocator,
		orchestrator,
		dispatcher,
		logger,
	)

	// ======================================================
	// HANDLERS
	// ======================================================
	bookingHandler := handlers.NewBookingHandler(coordinator)
	scheduleHandler := handlers.NewScheduleHandler(allocator)
	paymentHandler := handlers.NewPaymentHandler(orchestrator)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// WEBHOOKS (provider-facing)
		// ------------------------------
		api.POST("/webhooks/:provider", paymentHandler.Webhook)

		// ------------------------------
		// API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.POST("/bookings", bookingHandler.Create)
			secured.PATCH("/bookings/:id/status", bookingHandler.Transition)
			secured.PATCH("/bookings/:id/washer", bookingHandler.AssignWasher)
			secured.POST("/bookings/:id/reschedule", bookingHandler.Reschedule)
			secured.PATCH("/bookings/:id/cancel", bookingHandler.Cancel)

			secured.GET("/schedule/availability", scheduleHandler.Availability)
			secured.GET("/washers/:id/agenda", scheduleHandler.Agenda)

			secured.GET("/payments/:id", paymentHandler.Get)

			admin := secured.Group("/")
			admin.Use(middleware.RequireRole(middleware.RoleAdmin))
			{
				admin.POST("/schedule/exceptions", scheduleHandler.RecordException)
				admin.POST("/payments/:id/authorize", paymentHandler.Authorize)
				admin.POST("/payments/:id/capture", paymentHandler.Capture)
				admin.POST("/bookings/:id/expire", bookingHandler.ExpirePending)
			}
		}
	}

	return nil
}
