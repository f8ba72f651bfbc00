package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusRetry     OutboxStatus = "retry"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	RetryAt      *time.Time      `db:"retry_at" json:"retry_at,omitempty"`
}

// Appointment lifecycle event types.
const (
	EventAppointmentBooked      = "appointment.booked"
	EventAppointmentConfirmed   = "appointment.confirmed"
	EventAppointmentRejected    = "appointment.rejected"
	EventAppointmentCancelled   = "appointment.cancelled"
	EventAppointmentCompleted   = "appointment.completed"
	EventAppointmentRescheduled = "appointment.rescheduled"
)

// EventTypeFor maps an applied action to its event type.
func EventTypeFor(a Action) string {
	switch a {
	case ActionConfirm:
		return EventAppointmentConfirmed
	case ActionReject:
		return EventAppointmentRejected
	case ActionCancel:
		return EventAppointmentCancelled
	case ActionComplete:
		return EventAppointmentCompleted
	case ActionReschedule:
		return EventAppointmentRescheduled
	default:
		return ""
	}
}

// AppointmentEvent is the outbox payload for appointment lifecycle events.
type AppointmentEvent struct {
	Type           string            `json:"type"`
	AppointmentID  uuid.UUID         `json:"appointment_id"`
	BusinessID     uuid.UUID         `json:"business_id"`
	StaffID        uuid.UUID         `json:"staff_id"`
	ServiceID      *uuid.UUID        `json:"service_id,omitempty"`
	Status         AppointmentStatus `json:"status"`
	PreviousStatus AppointmentStatus `json:"previous_status,omitempty"`
	StartTime      time.Time         `json:"start_time"`
	EndTime        time.Time         `json:"end_time"`
	// Timezone is the business's IANA zone, used to render local times.
	Timezone       string            `json:"timezone,omitempty"`
	CustomerName   string            `json:"customer_name,omitempty"`
	CustomerEmail  string            `json:"customer_email,omitempty"`
	CustomerPhone  string            `json:"customer_phone,omitempty"`
	Reason         string            `json:"reason,omitempty"`
	OccurredAt     time.Time         `json:"occurred_at"`
}

// NewAppointmentEvent snapshots apt for the outbox. business supplies the
// timezone notifications render in.
func NewAppointmentEvent(eventType string, business *Business, apt *Appointment, previous AppointmentStatus, reason string, at time.Time) *AppointmentEvent {
	return &AppointmentEvent{
		Type:           eventType,
		AppointmentID:  apt.ID,
		BusinessID:     apt.BusinessID,
		StaffID:        apt.StaffID,
		ServiceID:      apt.ServiceID,
		Status:         apt.Status,
		PreviousStatus: previous,
		StartTime:      apt.StartTime,
		EndTime:        apt.EndTime,
		Timezone:       business.Timezone,
		CustomerName:   apt.CustomerName,
		CustomerEmail:  apt.CustomerEmail,
		CustomerPhone:  apt.CustomerPhone,
		Reason:         reason,
		OccurredAt:     at,
	}
}

// Location resolves Timezone, falling back to UTC when it is empty or
// unknown.
func (e *AppointmentEvent) Location() *time.Location {
	if e.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ToOutbox marshals the event into a pending outbox row.
func (e *AppointmentEvent) ToOutbox() (*OutboxEvent, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return &OutboxEvent{
		ID:        uuid.New(),
		EventType: e.Type,
		Payload:   payload,
		Status:    OutboxStatusPending,
		CreatedAt: e.OccurredAt,
		UpdatedAt: e.OccurredAt,
	}, nil
}
