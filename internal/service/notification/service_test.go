package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/email"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/messaging"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, msg *email.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func encode(t *testing.T, eventType string, evt *model.AppointmentEvent) []byte {
	t.Helper()
	payload, err := json.Marshal(evt)
	require.NoError(t, err)
	raw, err := json.Marshal(messaging.Message{Type: eventType, Payload: payload})
	require.NoError(t, err)
	return raw
}

func event(emailAddr string) *model.AppointmentEvent {
	return &model.AppointmentEvent{
		AppointmentID: uuid.New(),
		CustomerName:  "Salma",
		CustomerEmail: emailAddr,
		StartTime:     time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC),
		Reason:        "staff unavailable",
	}
}

func TestHandle_SendsTemplatedEmail(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.MatchedBy(func(msg *email.Message) bool {
		return msg.To == "salma@example.com" &&
			msg.Subject == "Booking request declined" &&
			msg.Body != ""
	})).Return(nil).Once()

	svc := NewService(nil, sender, "appointments", nil, nil)
	require.NoError(t, svc.Handle(encode(t, model.EventAppointmentRejected, event("salma@example.com"))))
	sender.AssertExpectations(t)
}

func TestHandle_SkipsWithoutEmailOrTemplate(t *testing.T) {
	sender := &mockSender{}
	svc := NewService(nil, sender, "appointments", nil, nil)

	require.NoError(t, svc.Handle(encode(t, model.EventAppointmentConfirmed, event(""))))
	require.NoError(t, svc.Handle(encode(t, model.EventAppointmentCompleted, event("salma@example.com"))))
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestHandle_PropagatesSendFailure(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc := NewService(nil, sender, "appointments", nil, nil)
	err := svc.Handle(encode(t, model.EventAppointmentBooked, event("salma@example.com")))
	assert.EqualError(t, err, "smtp down")
}

func TestHandle_RejectsGarbage(t *testing.T) {
	svc := NewService(nil, &mockSender{}, "appointments", nil, nil)
	assert.Error(t, svc.Handle([]byte("not json")))
}

func TestRender_CancelReason(t *testing.T) {
	_, body, ok := render(model.EventAppointmentCancelled, event("x@example.com"))
	require.True(t, ok)
	assert.Contains(t, body, "Reason: staff unavailable")
	assert.Contains(t, body, "Monday 19 October 2026 at 10:00")
}

func TestHandle_RendersInBusinessTimezone(t *testing.T) {
	// 09:00 UTC is 10:00 in Casablanca; the store may hand back either zone.
	evt := model.NewAppointmentEvent(model.EventAppointmentConfirmed,
		&model.Business{Timezone: "Africa/Casablanca"},
		&model.Appointment{
			Base:          model.Base{ID: uuid.New()},
			CustomerEmail: "salma@example.com",
			StartTime:     time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
			EndTime:       time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
			Status:        model.AppointmentStatusConfirmed,
		}, model.AppointmentStatusPending, "", time.Now())

	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.MatchedBy(func(msg *email.Message) bool {
		return assert.Contains(t, msg.Body, "Your appointment on Monday 19 October 2026 at 10:00 is confirmed.")
	})).Return(nil).Once()

	svc := NewService(nil, sender, "appointments", nil, nil)
	require.NoError(t, svc.Handle(encode(t, model.EventAppointmentConfirmed, evt)))
	sender.AssertExpectations(t)
}

func TestRender_UnknownTimezoneFallsBackToUTC(t *testing.T) {
	evt := event("x@example.com")
	evt.Timezone = "Mars/Olympus"
	_, body, ok := render(model.EventAppointmentConfirmed, evt)
	require.True(t, ok)
	assert.Contains(t, body, "at 10:00")
}
