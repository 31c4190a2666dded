package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hsalameh/dental-clinic-platform/internal/api/router"
	"github.com/hsalameh/dental-clinic-platform/internal/appointments"
	"github.com/hsalameh/dental-clinic-platform/internal/availability"
	"github.com/hsalameh/dental-clinic-platform/internal/booking"
	"github.com/hsalameh/dental-clinic-platform/internal/catalog"
	appconfig "github.com/hsalameh/dental-clinic-platform/internal/config"
	"github.com/hsalameh/dental-clinic-platform/internal/notify"
	"github.com/hsalameh/dental-clinic-platform/internal/observability/metrics"
	"github.com/hsalameh/dental-clinic-platform/internal/reminders"
	"github.com/hsalameh/dental-clinic-platform/internal/schedules"
	"github.com/hsalameh/dental-clinic-platform/pkg/logging"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting dental-clinic-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage. Without DATABASE_URL the server runs on in-memory
	// repositories, which is enough for local development.
	var (
		pool      *pgxpool.Pool
		apptRepo  appointments.Repository
		schedRepo schedules.Repository
	)
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		apptRepo = appointments.NewPostgresRepository(pool)
		schedRepo = schedules.NewPostgresRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory repositories")
		apptRepo = appointments.NewInMemoryRepository()
		schedRepo = schedules.NewInMemoryRepository()
	}

	// Redis backs the offline booking spool and the catalog cache.
	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() { _ = redisClient.Close() }()

	reg := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(reg)

	scheduleDefaults := schedules.Defaults{
		DayOff: cfg.DefaultDayOff,
		Slots:  cfg.DefaultSlots,
	}
	scheduleSource := schedules.NewSource(schedRepo, scheduleDefaults)
	phoneRule := appointments.PhoneRule{Prefixes: cfg.PhonePrefixes}

	catalogClient := catalog.NewClient(cfg.CatalogBaseURL, redisClient, cfg.CatalogCacheTTL, logger)
	var refChecker booking.ReferenceChecker
	if cfg.CatalogBaseURL != "" {
		refChecker = catalogClient
	}

	offlineQueue := booking.NewQueue(redisClient)
	coordinator := booking.NewCoordinator(apptRepo, scheduleSource, phoneRule, refChecker, offlineQueue, bookingMetrics, logger)
	resolver := availability.NewResolver(scheduleSource, apptRepo)
	lifecycle := appointments.NewLifecycle(apptRepo, scheduleSource, logger)

	// Background workers: offline spool replay and next-day reminders.
	flusher := booking.NewFlusher(offlineQueue, apptRepo, bookingMetrics, logger, cfg.OfflineFlushInterval)
	go flusher.Run(ctx)

	var emailSender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		emailSender = sg
	}
	reminderWorker := reminders.NewWorker(apptRepo, emailSender, clinicInbox(cfg.SendGridFromEmail), logger)
	go reminderWorker.Run(ctx, cfg.ReminderPollInterval)

	routerCfg := &router.Config{
		Logger:              logger,
		BookingHandler:      booking.NewHandler(coordinator, resolver, bookingMetrics, logger),
		AppointmentsHandler: appointments.NewHandler(apptRepo, lifecycle, logger),
		SchedulesHandler:    schedules.NewHandler(schedRepo, scheduleSource, logger),
		CatalogHandler:      catalog.NewHandler(catalogClient, logger),
		MetricsHandler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		HealthCheck: func(r *http.Request) error {
			if pool != nil {
				return pool.Ping(r.Context())
			}
			return nil
		},
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		StaffJWTSecret:     cfg.StaffJWTSecret,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// clinicInbox routes every reminder to the clinic's own inbox. Patient
// phone numbers carry no email address, so staff follow up by phone.
type clinicInbox string

func (c clinicInbox) EmailForPhone(_ context.Context, _ string) (string, error) {
	return string(c), nil
}
