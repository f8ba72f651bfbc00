package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
)

var allStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
	AppointmentStatusRejected,
	AppointmentStatusCancelled,
	AppointmentStatusCompleted,
	AppointmentStatusBlocked,
}

var allActions = []Action{ActionConfirm, ActionReject, ActionCancel, ActionComplete, ActionReschedule}

func TestNextTransitionTable(t *testing.T) {
	allowed := map[AppointmentStatus]map[Action]AppointmentStatus{
		AppointmentStatusPending: {
			ActionConfirm:    AppointmentStatusConfirmed,
			ActionReject:     AppointmentStatusRejected,
			ActionReschedule: AppointmentStatusPending,
		},
		AppointmentStatusConfirmed: {
			ActionCancel:     AppointmentStatusCancelled,
			ActionComplete:   AppointmentStatusCompleted,
			ActionReschedule: AppointmentStatusConfirmed,
		},
	}

	for _, s := range allStatuses {
		for _, a := range allActions {
			got, err := s.Next(a)
			want, ok := allowed[s][a]
			if ok {
				require.NoError(t, err, "%s/%s", s, a)
				assert.Equal(t, want, got, "%s/%s", s, a)
				continue
			}
			assert.True(t, apperrors.IsInvalidTransition(err), "%s/%s should be rejected", s, a)
		}
	}
}

func TestTerminalStatesHaveNoTransitions(t *testing.T) {
	for _, s := range allStatuses {
		if !s.IsTerminal() {
			continue
		}
		for _, a := range allActions {
			_, err := s.Next(a)
			assert.Error(t, err)
		}
	}
}

func TestHoldsSlot(t *testing.T) {
	assert.True(t, AppointmentStatusPending.HoldsSlot())
	assert.True(t, AppointmentStatusConfirmed.HoldsSlot())
	assert.True(t, AppointmentStatusCompleted.HoldsSlot())
	assert.True(t, AppointmentStatusBlocked.HoldsSlot())
	assert.False(t, AppointmentStatusRejected.HoldsSlot())
	assert.False(t, AppointmentStatusCancelled.HoldsSlot())
}

func TestParseAppointmentStatus(t *testing.T) {
	for _, s := range allStatuses {
		got, err := ParseAppointmentStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseAppointmentStatus("scheduled")
	assert.True(t, apperrors.IsValidation(err))
}
