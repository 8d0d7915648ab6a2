package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/medassist/assistant-api/internal/config"
	"github.com/medassist/assistant-api/internal/email"
	"github.com/medassist/assistant-api/internal/handler"
	appointmentHandler "github.com/medassist/assistant-api/internal/handler/appointment"
	authHandler "github.com/medassist/assistant-api/internal/handler/auth"
	cartHandler "github.com/medassist/assistant-api/internal/handler/cart"
	medicationHandler "github.com/medassist/assistant-api/internal/handler/medication"
	notificationHandler "github.com/medassist/assistant-api/internal/handler/notification"
	promHandler "github.com/medassist/assistant-api/internal/handler/prometheus"
	readingHandler "github.com/medassist/assistant-api/internal/handler/reading"
	recordHandler "github.com/medassist/assistant-api/internal/handler/record"
	reminderHandler "github.com/medassist/assistant-api/internal/handler/reminder"
	"github.com/medassist/assistant-api/internal/middleware"
	"github.com/medassist/assistant-api/internal/repository"
	"github.com/medassist/assistant-api/internal/repository/postgres"
	"github.com/medassist/assistant-api/internal/router"
	appointmentService "github.com/medassist/assistant-api/internal/service/appointment"
	authService "github.com/medassist/assistant-api/internal/service/auth"
	cartService "github.com/medassist/assistant-api/internal/service/cart"
	healthService "github.com/medassist/assistant-api/internal/service/health"
	medicationService "github.com/medassist/assistant-api/internal/service/medication"
	notificationService "github.com/medassist/assistant-api/internal/service/notification"
	recordService "github.com/medassist/assistant-api/internal/service/record"
	reminderService "github.com/medassist/assistant-api/internal/service/reminder"
	"github.com/medassist/assistant-api/internal/worker"
	"github.com/medassist/assistant-api/pkg/auth"
	"github.com/medassist/assistant-api/pkg/logger"
	"github.com/medassist/assistant-api/pkg/messaging"
	"github.com/medassist/assistant-api/pkg/messaging/redis"
	"github.com/medassist/assistant-api/pkg/metrics"
	"github.com/medassist/assistant-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logg := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		logg.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		logg.Fatal(err, "failed to ensure database schema")
	}

	userRepo := postgres.NewUserRepository(db)
	medicationRepo := postgres.NewMedicationRepository(db)
	reminderRepo := postgres.NewReminderRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	cartRepo := postgres.NewCartRepository(db)
	readingRepo := postgres.NewHealthReadingRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	recordRepo := postgres.NewMedicalRecordRepository(db)

	m := metrics.NewMetrics("assistant", "api")

	var broker messaging.Broker
	if cfg.Redis.Enabled {
		broker, err = redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &log.Logger)
		if err != nil {
			logg.Fatal(err, "failed to create redis broker")
		}
		defer broker.Close()
	}

	emailSvc := email.NewSMTPService(cfg.SMTP.ToEmailConfig(), logg)
	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())

	var encryptor security.Encryptor
	if cfg.Security.EncryptionKey != "" {
		encryptor, err = security.NewAESEncryptor([]byte(cfg.Security.EncryptionKey))
		if err != nil {
			logg.Fatal(err, "failed to create record encryptor")
		}
	}

	medicationSvc := medicationService.NewService(medicationRepo)
	if err := medicationSvc.Seed(ctx); err != nil {
		logg.Fatal(err, "failed to seed medication catalog")
	}

	cartSvc := cartService.NewService(cartRepo, medicationRepo, medicationSvc, notificationRepo, m)
	reminderSvc := reminderService.NewService(
		reminderRepo,
		appointmentRepo,
		medicationRepo,
		notificationRepo,
		broker,
		reminderService.Config{
			Interval:     cfg.Reminder.Interval,
			ErrorBackoff: cfg.Reminder.ErrorBackoff,
			Lookahead:    cfg.Reminder.Lookahead,
		},
		logg,
		m,
	)
	authSvc := authService.NewService(userRepo, hasher, jwtSvc, emailSvc, logg)
	appointmentSvc := appointmentService.NewService(appointmentRepo)
	healthSvc := healthService.NewService(readingRepo)
	notificationSvc := notificationService.NewService(notificationRepo, userRepo, emailSvc, logg)
	recordSvc := recordService.NewService(recordRepo, encryptor)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	r := router.NewRouter(
		authMiddleware,
		handler.NewHandler(db),
		promHandler.New(),
		authHandler.NewHandler(authSvc),
		[]router.Handler{
			medicationHandler.NewHandler(medicationSvc),
			cartHandler.NewHandler(cartSvc),
			reminderHandler.NewHandler(reminderSvc),
			appointmentHandler.NewHandler(appointmentSvc),
			readingHandler.NewHandler(healthSvc),
			notificationHandler.NewHandler(notificationSvc),
			recordHandler.NewHandler(recordSvc),
		},
		router.Config{
			RateLimit:  rate.Limit(cfg.Server.RateLimitRPS),
			RateBurst:  cfg.Server.RateLimitBurst,
			CORSConfig: middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	if cfg.Simulator.Enabled {
		go startPulseSimulators(ctx, userRepo, readingRepo, logg)
	}

	cleanup := worker.NewNotificationCleanupWorker(
		notificationRepo,
		cfg.Cleanup.RetentionDays,
		cfg.Cleanup.Interval,
		logg,
	)
	go cleanup.Start(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logg.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal(err, "server failed")
		}
	}()

	<-ctx.Done()
	logg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error(err, "graceful shutdown failed")
	}
}

// startPulseSimulators runs a simulated pulse feed for every known user.
// Users registered after startup are picked up on the next restart.
func startPulseSimulators(ctx context.Context, userRepo repository.UserRepository, readingRepo repository.HealthReadingRepository, logg *logger.Logger) {
	users, err := userRepo.List(ctx)
	if err != nil {
		logg.Error(err, "failed to list users for pulse simulation")
		return
	}

	for _, u := range users {
		sim := worker.NewPulseSimulator(readingRepo, logg)
		sim.Start(ctx, u.ID)
	}
}
