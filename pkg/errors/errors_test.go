package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NewSlotUnavailable(""), http.StatusConflict},
		{NewInvalidTransition("CANCELLED", "confirm"), http.StatusConflict},
		{NewInvalidWorkingHours("bad", nil), http.StatusUnprocessableEntity},
		{NewNotFound("staff", nil), http.StatusNotFound},
		{NewValidation("missing name", nil), http.StatusBadRequest},
		{Unauthorized(nil), http.StatusUnauthorized},
		{Forbidden("nope"), http.StatusForbidden},
		{NewInternal(fmt.Errorf("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestPredicatesWalkWrapChain(t *testing.T) {
	err := fmt.Errorf("failed to book: %w", NewSlotUnavailable(""))

	assert.True(t, IsSlotUnavailable(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, "failed to book: slot no longer available", err.Error())

	code, ok := CodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, "SLOT_UNAVAILABLE", code.String())

	_, ok = CodeOf(fmt.Errorf("plain"))
	assert.False(t, ok)
}
