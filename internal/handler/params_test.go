package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
)

func contextFor(rawQuery string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	return c
}

func TestStatusesQuery(t *testing.T) {
	statuses, err := StatusesQuery(contextFor("status=pending,%20CONFIRMED"), "status")
	require.NoError(t, err)
	assert.Equal(t, []model.AppointmentStatus{model.AppointmentStatusPending, model.AppointmentStatusConfirmed}, statuses)

	_, err = StatusesQuery(contextFor("status=DONE"), "status")
	assert.True(t, apperrors.IsValidation(err))

	statuses, err = StatusesQuery(contextFor(""), "status")
	require.NoError(t, err)
	assert.Nil(t, statuses)
}

func TestPaginationQuery(t *testing.T) {
	tests := []struct {
		query  string
		want   model.Pagination
		hasErr bool
	}{
		{"", model.Pagination{Limit: DefaultLimit}, false},
		{"limit=10&offset=20", model.Pagination{Limit: 10, Offset: 20}, false},
		{"limit=5000", model.Pagination{Limit: MaxLimit}, false},
		{"limit=0", model.Pagination{}, true},
		{"offset=-1", model.Pagination{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := PaginationQuery(contextFor(tt.query))
			if tt.hasErr {
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeQuery(t *testing.T) {
	ts, err := TimeQuery(contextFor("from=2026-10-19T09:00:00%2B01:00"), "from")
	require.NoError(t, err)
	require.NotNil(t, ts)
	assert.Equal(t, 8, ts.UTC().Hour())

	_, err = TimeQuery(contextFor("from=yesterday"), "from")
	assert.True(t, apperrors.IsValidation(err))
}
