package main

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/peakform/trainer-crm/internal/config"
	"github.com/peakform/trainer-crm/internal/database"
	"github.com/peakform/trainer-crm/internal/handler"
	"github.com/peakform/trainer-crm/internal/integration"
	"github.com/peakform/trainer-crm/internal/logger"
	"github.com/peakform/trainer-crm/internal/queue"
	"github.com/peakform/trainer-crm/internal/repository"
	"github.com/peakform/trainer-crm/internal/router"
	"github.com/peakform/trainer-crm/internal/service"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer log.Sync()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(migrateCtx, db); err != nil {
		cancel()
		log.Fatal("migrations failed", zap.Error(err))
	}
	cancel()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, caching and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	clients := repository.NewClientRepo(db)
	sessions := repository.NewSessionRepo(db)
	availability := repository.NewAvailabilityRepo(db)
	bookings := repository.NewBookingRepo(db)
	settings := repository.NewSettingsRepo(db)
	programs := repository.NewProgramRepo(db)
	progress := repository.NewProgressRepo(db)
	payments := repository.NewPaymentRepo(db)

	stripeClient := integration.NewStripeClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	mailer := integration.NewMailer(cfg.SendGridKey, cfg.SendGridFrom)
	smsSender := integration.NewSMSSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	zoomClient := integration.NewZoomClient(cfg.ZoomAccountID, cfg.ZoomClientID, cfg.ZoomClientSecret)
	generator := integration.NewProgramGenerator(cfg.OpenAIKey, cfg.OpenAIModel)
	assistant := integration.NewAssistant(cfg.OpenAIKey, cfg.OpenAIModel)

	publisher := service.NewPublisher(cfg.AMQPURL, log)
	consumer := queue.NewConsumer(cfg.AMQPURL, mailer, smsSender, log)
	go consumer.Run()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	router.Register(e, router.Deps{
		JWTSecret: cfg.JWTSecret,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		Redis:     rdb,

		Auth:          handler.NewAuthHandler(cfg, users, tokens),
		Clients:       handler.NewClientHandler(clients),
		Sessions:      handler.NewSessionHandler(sessions, clients, zoomClient, log),
		Availability:  handler.NewAvailabilityHandler(availability, bookings),
		Bookings:      handler.NewBookingHandler(bookings, sessions, clients, availability, settings, publisher, log),
		PublicBooking: handler.NewPublicBookingHandler(users, settings, availability, bookings, publisher, log),
		Settings:      handler.NewSettingsHandler(settings),
		Programs:      handler.NewProgramHandler(programs, clients, generator, log),
		Progress:      handler.NewProgressHandler(progress, clients),
		Payments:      handler.NewPaymentHandler(payments, clients, stripeClient, log),
		Dashboard:     handler.NewDashboardHandler(clients, sessions, bookings, payments),
		Messages:      handler.NewMessagingHandler(clients, publisher, log),
		Chat:          handler.NewChatHandler(assistant, log),
	})

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
