package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	// Business timezones must resolve on minimal images without zoneinfo.
	_ "time/tzdata"

	"github.com/b2bagadi/Maw3idokom2-sub000/config"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/email"
	appointmenthandler "github.com/b2bagadi/Maw3idokom2-sub000/internal/handler/appointment"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/handler/health"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/handler/prometheus"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/handler/public"
	schedulehandler "github.com/b2bagadi/Maw3idokom2-sub000/internal/handler/schedule"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/middleware"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/repository"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/repository/memory"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/repository/postgres"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/router"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/service/appointment"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/service/availability"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/service/booking"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/service/directory"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/service/notification"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/service/schedule"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/auth"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/logger"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/messaging"
	messagingmemory "github.com/b2bagadi/Maw3idokom2-sub000/pkg/messaging/memory"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/messaging/redis"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/metrics"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(logger.ParseConfig(cfg.Log.Level, cfg.Log.Format))
	logger.SetGlobal(appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		appLogger.Fatal(err, "failed to open storage", "driver", cfg.Storage.Driver)
	}
	defer store.Close()

	if cfg.Storage.SeedFile != "" {
		seed, err := repository.LoadSeed(cfg.Storage.SeedFile)
		if err != nil {
			appLogger.Fatal(err, "failed to load seed", "file", cfg.Storage.SeedFile)
		}
		created, err := seed.Apply(ctx, store)
		if err != nil {
			appLogger.Fatal(err, "failed to apply seed", "file", cfg.Storage.SeedFile)
		}
		appLogger.Info("seed applied", "file", cfg.Storage.SeedFile, "businesses_created", created)
	} else if cfg.Storage.Driver == "memory" {
		appLogger.Warn("memory storage without storage.seed_file has no businesses to serve")
	}

	broker, inProcess, err := openBroker(cfg)
	if err != nil {
		appLogger.Fatal(err, "failed to connect to message broker")
	}
	defer broker.Close()

	registry := prom.NewRegistry()
	m := metrics.NewMetrics(registry, cfg.Monitoring.Namespace)

	// Services
	dir := directory.NewService(store)
	avail := availability.NewService(store, dir, availability.Config{
		Step:     cfg.Booking.SlotStep(),
		CacheTTL: cfg.Booking.AvailabilityCacheTTL,
	}, m)
	sched := schedule.NewService(store, dir, avail, appLogger)
	book := booking.NewService(store, dir, avail, booking.Config{
		MaxAdvance: time.Duration(cfg.Booking.MaxAdvanceDays) * 24 * time.Hour,
	}, m, appLogger)
	apts := appointment.NewService(store, dir, avail, m, appLogger)

	// HTTP
	checks := map[string]health.Pinger{"store": store}
	if p, ok := broker.(health.Pinger); ok {
		checks["broker"] = p
	}
	handlers := router.Handlers{
		Public:      public.NewHandler(dir, avail, book),
		Appointment: appointmenthandler.NewHandler(apts),
		Schedule:    schedulehandler.NewHandler(sched),
		Health:      health.NewHandler(checks),
	}
	if cfg.Monitoring.PrometheusEnabled {
		handlers.Metrics = prometheus.New(registry, cfg.Monitoring.Namespace)
	}

	mode := gin.DebugMode
	if cfg.Env == "production" {
		mode = gin.ReleaseMode
	}
	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	}

	authMiddleware := middleware.NewAuthMiddleware(auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer))
	r := router.NewRouter(authMiddleware, handlers, router.RouterConfig{
		Mode:             mode,
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:        cfg.RateLimit.Burst,
		RequestTimeout:   cfg.Server.RequestTimeout,
		MaxBodyBytes:     cfg.Server.MaxBodyBytes,
		MetricsPath:      cfg.Monitoring.MetricsPath,
		CORSConfig:       corsConfig,
		Security:         middleware.SecurityConfigFor(cfg.Env),
	})
	if err := middleware.ConfigureValidation(middleware.DefaultValidationConfig()); err != nil {
		appLogger.Fatal(err, "failed to configure request validation")
	}
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Background workers
	var wg sync.WaitGroup
	if cfg.Outbox.Enabled {
		processor := worker.NewOutboxProcessor(
			store.Outbox(),
			broker,
			cfg.Redis.Channel,
			cfg.Outbox.ToWorkerConfig(),
			appLogger,
			m,
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			processor.Start(ctx)
		}()
	}

	// Without Redis there is no cross-process bus, so notifications are sent
	// from this process.
	if inProcess {
		notifier := notification.NewService(messaging.NewBrokerAdapter(broker, appLogger), newSender(cfg, appLogger), cfg.Redis.Channel, appLogger, m)
		if err := notifier.Start(ctx); err != nil {
			appLogger.Fatal(err, "failed to start notification service")
		}
	}

	go func() {
		appLogger.Info("starting HTTP server", "addr", srv.Addr, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(err, "server forced to shutdown")
	}

	cancel()
	wg.Wait()
	appLogger.Info("server exited")
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.Storage.Driver == "memory" {
		return memory.NewStore(), nil
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}
	return postgres.NewStore(db), nil
}

// openBroker returns the Redis broker, or an in-process broker when no Redis
// URL is configured. inProcess reports the latter.
func openBroker(cfg *config.Config) (broker messaging.Broker, inProcess bool, err error) {
	if cfg.Redis.URL == "" {
		return messagingmemory.NewBroker(), true, nil
	}
	broker, err = redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &log.Logger)
	if err != nil {
		return nil, false, err
	}
	return broker, false, nil
}

func newSender(cfg *config.Config, l *logger.Logger) email.Sender {
	if cfg.SMTP.Host == "" {
		return email.LogSender{Logf: func(format string, args ...interface{}) {
			l.ZL.Info().Msgf(format, args...)
		}}
	}
	return email.NewSMTPSender(email.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
}
