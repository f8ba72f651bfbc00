package model

import (
	"fmt"

	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
)

// AppointmentStatus is a closed set. Values outside the constants below are
// rejected by ParseAppointmentStatus and never reach storage.
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusRejected  AppointmentStatus = "REJECTED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusBlocked   AppointmentStatus = "BLOCKED"
)

// SlotHoldingStatuses occupy calendar time. PENDING is included so a request
// awaiting confirmation cannot be double booked.
var SlotHoldingStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
	AppointmentStatusCompleted,
	AppointmentStatusBlocked,
}

func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	switch st := AppointmentStatus(s); st {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusRejected,
		AppointmentStatusCancelled, AppointmentStatusCompleted, AppointmentStatusBlocked:
		return st, nil
	default:
		return "", apperrors.NewValidation(fmt.Sprintf("unknown appointment status %q", s), nil)
	}
}

func (s AppointmentStatus) HoldsSlot() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCompleted, AppointmentStatusBlocked:
		return true
	case AppointmentStatusRejected, AppointmentStatusCancelled:
		return false
	default:
		return false
	}
}

func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case AppointmentStatusRejected, AppointmentStatusCancelled, AppointmentStatusCompleted:
		return true
	default:
		return false
	}
}

// Action is a business or customer operation on an appointment.
type Action string

const (
	ActionConfirm    Action = "confirm"
	ActionReject     Action = "reject"
	ActionCancel     Action = "cancel"
	ActionComplete   Action = "complete"
	ActionReschedule Action = "reschedule"
)

// Next returns the status reached by applying a to s. Rescheduling keeps the
// current status.
func (s AppointmentStatus) Next(a Action) (AppointmentStatus, error) {
	switch s {
	case AppointmentStatusPending:
		switch a {
		case ActionConfirm:
			return AppointmentStatusConfirmed, nil
		case ActionReject:
			return AppointmentStatusRejected, nil
		case ActionReschedule:
			return s, nil
		}
	case AppointmentStatusConfirmed:
		switch a {
		case ActionCancel:
			return AppointmentStatusCancelled, nil
		case ActionComplete:
			return AppointmentStatusCompleted, nil
		case ActionReschedule:
			return s, nil
		}
	case AppointmentStatusRejected, AppointmentStatusCancelled, AppointmentStatusCompleted, AppointmentStatusBlocked:
	}
	return "", apperrors.NewInvalidTransition(string(s), string(a))
}
