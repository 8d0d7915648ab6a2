package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/medassist/assistant-api/internal/config"
	"github.com/medassist/assistant-api/internal/model"
	"github.com/medassist/assistant-api/internal/repository/postgres"
	"github.com/medassist/assistant-api/internal/service/reminder"
	"github.com/medassist/assistant-api/internal/worker"
	"github.com/medassist/assistant-api/pkg/logger"
	"github.com/medassist/assistant-api/pkg/messaging"
	"github.com/medassist/assistant-api/pkg/messaging/redis"
	"github.com/medassist/assistant-api/pkg/metrics"
)

// workerEnv holds worker-only knobs, set through WORKER_* environment
// variables on top of the shared config file.
type workerEnv struct {
	HealthPort  int           `envconfig:"HEALTH_PORT" default:"8081"`
	UserRefresh time.Duration `envconfig:"USER_REFRESH" default:"5m"`
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	var env workerEnv
	if err := envconfig.Process("worker", &env); err != nil {
		log.Fatal().Err(err).Msg("failed to read worker environment")
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

	var broker messaging.Broker
	if cfg.Redis.Enabled {
		broker, err = redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &log.Logger)
		if err != nil {
			logg.Fatal(err, "failed to create redis broker")
		}
		defer broker.Close()
	}

	userRepo := postgres.NewUserRepository(db)
	reminderRepo := postgres.NewReminderRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	medicationRepo := postgres.NewMedicationRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	m := metrics.NewMetrics("assistant", "worker")

	cleanup := worker.NewNotificationCleanupWorker(
		notificationRepo,
		cfg.Cleanup.RetentionDays,
		cfg.Cleanup.Interval,
		logg,
	)
	go cleanup.Start(ctx)

	startHealthServer(env.HealthPort, logg)

	d := &dispatcher{
		userRepo: userRepo,
		logg:     logg,
		refresh:  env.UserRefresh,
		newService: func() *reminder.Service {
			return reminder.NewService(
				reminderRepo,
				appointmentRepo,
				medicationRepo,
				notificationRepo,
				broker,
				reminder.Config{
					Interval:     cfg.Reminder.Interval,
					ErrorBackoff: cfg.Reminder.ErrorBackoff,
					Lookahead:    cfg.Reminder.Lookahead,
				},
				logg,
				m,
			)
		},
		loops: make(map[string]*reminder.Service),
	}
	d.run(ctx)

	logg.Info("worker stopped")
}

// dispatcher keeps one due-check loop alive per user, picking up new
// users on every refresh tick.
type dispatcher struct {
	userRepo interface {
		List(ctx context.Context) ([]*model.User, error)
	}
	logg       *logger.Logger
	refresh    time.Duration
	newService func() *reminder.Service
	loops      map[string]*reminder.Service
}

func (d *dispatcher) run(ctx context.Context) {
	d.sync(ctx)

	ticker := time.NewTicker(d.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			for _, svc := range d.loops {
				svc.Stop()
			}
			return
		case <-ticker.C:
			d.sync(ctx)
		}
	}
}

func (d *dispatcher) sync(ctx context.Context) {
	users, err := d.userRepo.List(ctx)
	if err != nil {
		d.logg.Error(err, "failed to list users")
		return
	}

	for _, u := range users {
		key := u.ID.String()
		if _, ok := d.loops[key]; ok {
			continue
		}

		svc := d.newService()
		username := u.Username
		svc.Start(ctx, u.ID, func(message string) {
			d.logg.Info("reminder dispatched", "user", username, "message", message)
		})
		d.loops[key] = svc
		d.logg.Info("due-check loop started", "user", username)
	}
}

func startHealthServer(port int, logg *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		addr := fmt.Sprintf(":%d", port)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logg.Error(err, "health check server failed")
		}
	}()
}
