package model

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is a booked interval on a staff member's calendar. Blocked time
// shares this table with status BLOCKED and no service or customer.
type Appointment struct {
	Base
	BusinessID    uuid.UUID         `db:"business_id" json:"business_id"`
	StaffID       uuid.UUID         `db:"staff_id" json:"staff_id"`
	ServiceID     *uuid.UUID        `db:"service_id" json:"service_id,omitempty"`
	CustomerID    *uuid.UUID        `db:"customer_id" json:"customer_id,omitempty"`
	CustomerName  string            `db:"customer_name" json:"customer_name,omitempty"`
	CustomerEmail string            `db:"customer_email" json:"customer_email,omitempty"`
	CustomerPhone string            `db:"customer_phone" json:"customer_phone,omitempty"`
	StartTime     time.Time         `db:"start_time" json:"start_time"`
	EndTime       time.Time         `db:"end_time" json:"end_time"`
	Status        AppointmentStatus `db:"status" json:"status"`
	Notes         string            `db:"notes" json:"notes,omitempty"`
	RejectReason  *string           `db:"reject_reason" json:"reject_reason,omitempty"`
	CancelReason  *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

func (a *Appointment) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

// Clone returns a copy that shares no pointers with a.
func (a *Appointment) Clone() *Appointment {
	c := *a
	if a.ServiceID != nil {
		id := *a.ServiceID
		c.ServiceID = &id
	}
	if a.CustomerID != nil {
		id := *a.CustomerID
		c.CustomerID = &id
	}
	if a.RejectReason != nil {
		r := *a.RejectReason
		c.RejectReason = &r
	}
	if a.CancelReason != nil {
		r := *a.CancelReason
		c.CancelReason = &r
	}
	return &c
}

// BookingRequest is posted by the public booking widget. Field names follow
// the widget's camelCase payload.
type BookingRequest struct {
	BusinessSlug  string     `json:"businessSlug" validate:"required,max=100"`
	ServiceID     uuid.UUID  `json:"serviceId" validate:"required"`
	StaffID       uuid.UUID  `json:"staffId" validate:"required"`
	StartTime     time.Time  `json:"startTime" validate:"required"`
	CustomerID    *uuid.UUID `json:"customerId,omitempty"`
	CustomerName  string     `json:"customerName" validate:"max=200"`
	CustomerEmail string     `json:"customerEmail" validate:"omitempty,email,max=254"`
	CustomerPhone string     `json:"customerPhone" validate:"omitempty,min=6,max=32"`
	Notes         string     `json:"notes" validate:"max=1000"`
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

type RescheduleRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
}

type CreateBlockRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required,gtfield=StartTime"`
	Notes     string    `json:"notes" binding:"max=500"`
}

// Slot is one bookable start time as rendered by the booking calendar.
type Slot struct {
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

type AppointmentFilters struct {
	BusinessID uuid.UUID
	StaffID    *uuid.UUID
	CustomerID *uuid.UUID
	Statuses   []AppointmentStatus
	From       *time.Time
	To         *time.Time
	Pagination
}
