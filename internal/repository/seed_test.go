package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/repository"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/repository/memory"
	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
)

func TestSeed_ExampleFileIsIdempotent(t *testing.T) {
	ctx := context.Background()
	seed, err := repository.LoadSeed(filepath.Join("..", "..", "config", "seed.example.yml"))
	require.NoError(t, err)

	store := memory.NewStore()
	created, err := seed.Apply(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	biz, err := store.Businesses().GetBySlug(ctx, "salon-nour")
	require.NoError(t, err)
	assert.Equal(t, uuid.MustParse("7b0d6a4e-3f1c-4b8e-9a52-1c2d3e4f5a60"), biz.ID)
	assert.Equal(t, "Africa/Casablanca", biz.Timezone)

	services, err := store.Services().ListByBusiness(ctx, biz.ID)
	require.NoError(t, err)
	assert.Len(t, services, 2)
	staff, err := store.Staff().ListByBusiness(ctx, biz.ID)
	require.NoError(t, err)
	assert.Len(t, staff, 2)

	week, err := store.WorkingHours().Get(ctx, biz.ID, nil)
	require.NoError(t, err)
	assert.Len(t, week, 6)
	youssef := uuid.MustParse("1f2e3d4c-5b6a-4978-8a6b-5c4d3e2f1a0b")
	override, err := store.WorkingHours().Get(ctx, biz.ID, &youssef)
	require.NoError(t, err)
	assert.Len(t, override, 2)

	created, err = seed.Apply(ctx, store)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestSeed_RejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad timezone", "businesses:\n  - slug: a\n    timezone: Mars/Olympus\n"},
		{"bad hours", "businesses:\n  - slug: b\n    working_hours:\n      - { day_of_week: 1, start: \"17:00\", end: \"09:00\" }\n"},
		{"bad id", "businesses:\n  - slug: c\n    id: not-a-uuid\n"},
		{"zero duration", "businesses:\n  - slug: d\n    services:\n      - name: Cut\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "seed.yml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))
			seed, err := repository.LoadSeed(path)
			require.NoError(t, err)

			_, err = seed.Apply(context.Background(), memory.NewStore())
			require.Error(t, err)
			_, isApp := apperrors.CodeOf(err)
			assert.True(t, isApp, "want an AppError, got %v", err)
		})
	}
}
