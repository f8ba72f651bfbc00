package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	_ "time/tzdata"

	"github.com/b2bagadi/Maw3idokom2-sub000/config"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/email"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/handler/health"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/handler/prometheus"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/middleware"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/repository/postgres"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/service/notification"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/logger"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/messaging"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/messaging/redis"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/metrics"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/worker"
)

// cleanupInterval is how often processed outbox rows are pruned.
const cleanupInterval = time.Hour

func setupHealthCheck(cfg *config.Config, checks map[string]health.Pinger, registry *prom.Registry, l *logger.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(middleware.Recovery())
	health.NewHandler(checks).RegisterRoutes(engine)
	engine.GET(cfg.Monitoring.MetricsPath, prometheus.New(registry, cfg.Monitoring.Namespace+"_worker").Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.WorkerHealthPort),
		Handler: engine,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal(err, "Health check server failed")
		}
	}()
	return srv
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	appLogger := logger.NewLogger(logger.ParseConfig(cfg.Log.Level, cfg.Log.Format))
	logger.SetGlobal(appLogger)

	// The worker shares state with the API only through postgres and redis.
	if cfg.Storage.Driver != "postgres" || cfg.Redis.URL == "" {
		appLogger.Fatal(fmt.Errorf("storage driver %q, redis url %q", cfg.Storage.Driver, cfg.Redis.URL),
			"Worker requires postgres storage and a redis url")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		appLogger.Fatal(err, "Failed to connect to database")
	}
	store := postgres.NewStore(db)
	defer store.Close()

	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &log.Logger)
	if err != nil {
		appLogger.Fatal(err, "Failed to create Redis broker")
	}
	defer broker.Close()

	registry := prom.NewRegistry()
	m := metrics.NewMetrics(registry, cfg.Monitoring.Namespace)

	var sender email.Sender = email.LogSender{Logf: func(format string, args ...interface{}) {
		appLogger.ZL.Info().Msgf(format, args...)
	}}
	if cfg.SMTP.Host != "" {
		sender = email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := notification.NewService(messaging.NewBrokerAdapter(broker, appLogger), sender, cfg.Redis.Channel, appLogger, m)
	if err := notifier.Start(ctx); err != nil {
		appLogger.Fatal(err, "Failed to subscribe notification service")
	}

	checks := map[string]health.Pinger{"store": store}
	if p, ok := broker.(health.Pinger); ok {
		checks["broker"] = p
	}
	healthSrv := setupHealthCheck(cfg, checks, registry, appLogger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Shutting down...")
		cancel()
	}()

	cleanup := worker.NewOutboxCleanupWorker(store.Outbox(), cfg.Outbox.RetentionPeriod, cleanupInterval, appLogger)
	appLogger.Info("Worker started", "channel", cfg.Redis.Channel, "health_port", cfg.Server.WorkerHealthPort)
	cleanup.Start(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	_ = healthSrv.Shutdown(shutdownCtx)
}
