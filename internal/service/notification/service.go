// Package notification turns appointment events from the broker into
// customer emails.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/email"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/logger"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/messaging"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/metrics"
)

const sendTimeout = 30 * time.Second

type Service struct {
	broker  messaging.MessageBroker
	sender  email.Sender
	channel string
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewService(broker messaging.MessageBroker, sender email.Sender, channel string, log *logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Service{broker: broker, sender: sender, channel: channel, logger: log, metrics: m}
}

// Start subscribes to the appointment channel until ctx is done.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("notification service subscribed", "channel", s.channel)
	return s.broker.Subscribe(ctx, s.channel, s.Handle)
}

// Handle processes one broker message. Events without a customer email are
// skipped.
func (s *Service) Handle(raw []byte) error {
	var msg messaging.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	var evt model.AppointmentEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", msg.Type, err)
	}
	if evt.CustomerEmail == "" {
		return nil
	}

	subject, body, ok := render(msg.Type, &evt)
	if !ok {
		s.logger.Debug("no template for event", "event_type", msg.Type)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if err := s.sender.Send(ctx, &email.Message{To: evt.CustomerEmail, Subject: subject, Body: body}); err != nil {
		s.metrics.NotificationsFailed.WithLabelValues(msg.Type).Inc()
		return err
	}
	s.metrics.NotificationsSent.WithLabelValues(msg.Type).Inc()
	return nil
}

func render(eventType string, evt *model.AppointmentEvent) (string, string, bool) {
	when := evt.StartTime.In(evt.Location()).Format("Monday 2 January 2006 at 15:04")
	greeting := "Hello"
	if evt.CustomerName != "" {
		greeting = "Hello " + evt.CustomerName
	}

	switch eventType {
	case model.EventAppointmentBooked:
		return "Booking request received",
			fmt.Sprintf("%s,\n\nWe received your booking request for %s. You will hear from us once it is confirmed.\n", greeting, when), true
	case model.EventAppointmentConfirmed:
		return "Appointment confirmed",
			fmt.Sprintf("%s,\n\nYour appointment on %s is confirmed.\n", greeting, when), true
	case model.EventAppointmentRejected:
		return "Booking request declined",
			fmt.Sprintf("%s,\n\nYour booking request for %s could not be accepted.\nReason: %s\n", greeting, when, evt.Reason), true
	case model.EventAppointmentCancelled:
		body := fmt.Sprintf("%s,\n\nYour appointment on %s has been cancelled.\n", greeting, when)
		if evt.Reason != "" {
			body += "Reason: " + evt.Reason + "\n"
		}
		return "Appointment cancelled", body, true
	case model.EventAppointmentRescheduled:
		return "Appointment moved",
			fmt.Sprintf("%s,\n\nYour appointment has been moved to %s.\n", greeting, when), true
	default:
		return "", "", false
	}
}
