package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	"github.com/b2bagadi/Maw3idokom2-sub000/internal/repository"
	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
)

const (
	staffColumns   = `id, business_id, name, email, is_active, created_at, updated_at`
	serviceColumns = `id, business_id, name, description, duration_minutes, price_cents, is_active, created_at, updated_at`
)

type staffRepository struct {
	BaseRepository
}

func NewStaffRepository(base BaseRepository) repository.StaffRepository {
	return &staffRepository{base}
}

func (r *staffRepository) Create(ctx context.Context, staff *model.Staff) error {
	query := `
		INSERT INTO staff (` + staffColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if staff.ID == uuid.Nil {
		staff.ID = uuid.New()
	}
	staff.CreatedAt = time.Now()
	staff.UpdatedAt = staff.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		staff.ID, staff.BusinessID, staff.Name, staff.Email, staff.IsActive,
		staff.CreatedAt, staff.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create staff: %w", mapError(err))
	}
	return nil
}

func (r *staffRepository) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	var staff model.Staff
	if err := r.db.GetContext(ctx, &staff, `SELECT `+staffColumns+` FROM staff WHERE id = $1`, id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFound("staff", err)
		}
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	return &staff, nil
}

func (r *staffRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]*model.Staff, error) {
	var staff []*model.Staff
	query := `SELECT ` + staffColumns + ` FROM staff WHERE business_id = $1 ORDER BY name`
	if err := r.db.SelectContext(ctx, &staff, query, businessID); err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}

type serviceRepository struct {
	BaseRepository
}

func NewServiceRepository(base BaseRepository) repository.ServiceRepository {
	return &serviceRepository{base}
}

func (r *serviceRepository) Create(ctx context.Context, service *model.Service) error {
	query := `
		INSERT INTO services (` + serviceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if service.ID == uuid.Nil {
		service.ID = uuid.New()
	}
	service.CreatedAt = time.Now()
	service.UpdatedAt = service.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		service.ID, service.BusinessID, service.Name, service.Description,
		service.DurationMinutes, service.PriceCents, service.IsActive,
		service.CreatedAt, service.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", mapError(err))
	}
	return nil
}

func (r *serviceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	var service model.Service
	if err := r.db.GetContext(ctx, &service, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFound("service", err)
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &service, nil
}

func (r *serviceRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]*model.Service, error) {
	var services []*model.Service
	query := `SELECT ` + serviceColumns + ` FROM services WHERE business_id = $1 ORDER BY name`
	if err := r.db.SelectContext(ctx, &services, query, businessID); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}
