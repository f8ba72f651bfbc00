package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/repository/memory"
	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
)

func TestGetProfile_OnlyActive(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	b := &model.Business{Slug: "salon-nour", Name: "Salon Nour", IsActive: true}
	require.NoError(t, store.Businesses().Create(ctx, b))
	require.NoError(t, store.Services().Create(ctx, &model.Service{BusinessID: b.ID, Name: "Cut", DurationMinutes: 30, IsActive: true}))
	require.NoError(t, store.Services().Create(ctx, &model.Service{BusinessID: b.ID, Name: "Old", DurationMinutes: 30}))
	require.NoError(t, store.Staff().Create(ctx, &model.Staff{BusinessID: b.ID, Name: "Amina", IsActive: true}))

	profile, err := NewService(store).GetProfile(ctx, "salon-nour")
	require.NoError(t, err)
	require.Len(t, profile.Services, 1)
	assert.Equal(t, "Cut", profile.Services[0].Name)
	assert.Len(t, profile.Staff, 1)
}

func TestLookups_ScopedToBusiness(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	a := &model.Business{Slug: "a", IsActive: true}
	b := &model.Business{Slug: "b", IsActive: true}
	require.NoError(t, store.Businesses().Create(ctx, a))
	require.NoError(t, store.Businesses().Create(ctx, b))
	svc := &model.Service{BusinessID: a.ID, Name: "Cut", DurationMinutes: 30, IsActive: true}
	require.NoError(t, store.Services().Create(ctx, svc))
	st := &model.Staff{BusinessID: a.ID, Name: "Amina", IsActive: true}
	require.NoError(t, store.Staff().Create(ctx, st))

	dir := NewService(store)
	_, err := dir.GetService(ctx, b.ID, svc.ID)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = dir.GetStaff(ctx, b.ID, st.ID)
	assert.True(t, apperrors.IsNotFound(err))

	got, err := dir.GetService(ctx, a.ID, svc.ID)
	require.NoError(t, err)
	assert.Equal(t, svc.ID, got.ID)
}

func TestGetBusinessBySlug_InactiveIsNotFound(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Businesses().Create(ctx, &model.Business{Slug: "closed"}))

	_, err := NewService(store).GetBusinessBySlug(ctx, "closed")
	assert.True(t, apperrors.IsNotFound(err))
	_, err = NewService(store).GetBusinessBySlug(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))
}
