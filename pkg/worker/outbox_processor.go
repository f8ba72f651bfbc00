package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/repository"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/logger"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/messaging"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	// MaxDeliveries is the number of polls an event may fail before it is
	// marked failed for good.
	MaxDeliveries int
}

// OutboxProcessor relays committed outbox events to the broker. Each event is
// published as a messaging.Message on a single channel.
type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	channel string
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	channel string,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *OutboxProcessor {
	// Config validation instead of defaults
	if config.BatchSize <= 0 {
		panic("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 1
	}
	if config.MaxDeliveries <= 0 {
		config.MaxDeliveries = 5
	}

	return &OutboxProcessor{
		repo:    repo,
		broker:  broker,
		channel: channel,
		config:  config,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("Starting outbox processor", "channel", p.channel)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down outbox processor")
			return
		case <-ticker.C:
			if _, err := p.ProcessOnce(ctx); err != nil {
				p.logger.Error(err, "Failed to process events")
			}
		}
	}
}

// ProcessOnce handles one batch and returns the number of events touched.
func (p *OutboxProcessor) ProcessOnce(ctx context.Context) (int, error) {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	n, err := p.repo.ProcessPending(ctx, p.config.BatchSize, p.deliver)
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("process_pending_events", "error").Inc()
		return n, fmt.Errorf("failed to process pending events: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("process_pending_events", "success").Inc()

	if pending, err := p.repo.CountPending(ctx); err == nil {
		p.metrics.OutboxQueueSize.Set(float64(pending))
	}
	return n, nil
}

func (p *OutboxProcessor) deliver(ctx context.Context, event *model.OutboxEvent) error {
	err := retry(p.config.RetryAttempts, p.config.RetryDelay, func() error {
		return p.broker.Publish(ctx, p.channel, messaging.Message{
			Type:    event.EventType,
			Payload: event.Payload,
		})
	})

	now := p.now()
	event.UpdatedAt = now

	if err != nil {
		p.metrics.OutboxEventsFailed.Inc()
		p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()

		errStr := err.Error()
		event.ErrorMessage = &errStr
		event.RetryCount++
		if event.RetryCount >= p.config.MaxDeliveries {
			event.Status = model.OutboxStatusFailed
			event.RetryAt = nil
		} else {
			event.Status = model.OutboxStatusRetry
			retryAt := now.Add(backoff(p.config.PollInterval, event.RetryCount))
			event.RetryAt = &retryAt
		}
		p.logger.Error(err, "Failed to publish event",
			"event_id", event.ID.String(),
			"event_type", event.EventType,
			"retry_count", event.RetryCount)
		return nil
	}

	p.metrics.OutboxEventsProcessed.Inc()
	event.Status = model.OutboxStatusProcessed
	event.ProcessedAt = &now
	event.ErrorMessage = nil
	event.RetryAt = nil
	return nil
}

// backoff doubles the poll interval per failed delivery, capped at 64x.
func backoff(base time.Duration, attempt int) time.Duration {
	if attempt > 6 {
		attempt = 6
	}
	return base << uint(attempt)
}

// Helper retry function
func retry(attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return err
}
