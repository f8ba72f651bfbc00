// Package directory resolves businesses, services and staff for the booking
// flow. Inactive records are reported as not found.
package directory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/repository"
	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
)

type Service struct {
	businesses repository.BusinessRepository
	staff      repository.StaffRepository
	services   repository.ServiceRepository
}

func NewService(store repository.Store) *Service {
	return &Service{
		businesses: store.Businesses(),
		staff:      store.Staff(),
		services:   store.Services(),
	}
}

func (s *Service) GetBusinessBySlug(ctx context.Context, slug string) (*model.Business, error) {
	b, err := s.businesses.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !b.IsActive {
		return nil, apperrors.NewNotFound("business", nil)
	}
	return b, nil
}

func (s *Service) GetBusiness(ctx context.Context, id uuid.UUID) (*model.Business, error) {
	b, err := s.businesses.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.IsActive {
		return nil, apperrors.NewNotFound("business", nil)
	}
	return b, nil
}

// GetService returns an active service of businessID. A service belonging to
// another tenant is reported as missing.
func (s *Service) GetService(ctx context.Context, businessID, id uuid.UUID) (*model.Service, error) {
	svc, err := s.services.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc.BusinessID != businessID || !svc.IsActive {
		return nil, apperrors.NewNotFound("service", nil)
	}
	return svc, nil
}

func (s *Service) GetStaff(ctx context.Context, businessID, id uuid.UUID) (*model.Staff, error) {
	st, err := s.staff.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if st.BusinessID != businessID || !st.IsActive {
		return nil, apperrors.NewNotFound("staff", nil)
	}
	return st, nil
}

func (s *Service) ListServices(ctx context.Context, businessID uuid.UUID) ([]*model.Service, error) {
	all, err := s.services.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	active := make([]*model.Service, 0, len(all))
	for _, svc := range all {
		if svc.IsActive {
			active = append(active, svc)
		}
	}
	return active, nil
}

func (s *Service) ListStaff(ctx context.Context, businessID uuid.UUID) ([]*model.Staff, error) {
	all, err := s.staff.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	active := make([]*model.Staff, 0, len(all))
	for _, st := range all {
		if st.IsActive {
			active = append(active, st)
		}
	}
	return active, nil
}

// GetProfile is the public booking page: the business with its active
// services and staff.
func (s *Service) GetProfile(ctx context.Context, slug string) (*model.BusinessProfile, error) {
	b, err := s.GetBusinessBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	services, err := s.ListServices(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	staff, err := s.ListStaff(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return &model.BusinessProfile{Business: b, Services: services, Staff: staff}, nil
}
