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

const businessColumns = `id, slug, name, timezone, email, phone, is_active, created_at, updated_at`

type businessRepository struct {
	BaseRepository
}

func NewBusinessRepository(base BaseRepository) repository.BusinessRepository {
	return &businessRepository{base}
}

func (r *businessRepository) Create(ctx context.Context, business *model.Business) error {
	query := `
		INSERT INTO businesses (` + businessColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if business.ID == uuid.Nil {
		business.ID = uuid.New()
	}
	business.CreatedAt = time.Now()
	business.UpdatedAt = business.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		business.ID,
		business.Slug,
		business.Name,
		business.Timezone,
		business.Email,
		business.Phone,
		business.IsActive,
		business.CreatedAt,
		business.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create business: %w", mapError(err))
	}
	return nil
}

func (r *businessRepository) Get(ctx context.Context, id uuid.UUID) (*model.Business, error) {
	var business model.Business
	err := r.db.GetContext(ctx, &business, `SELECT `+businessColumns+` FROM businesses WHERE id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFound("business", err)
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}
	return &business, nil
}

func (r *businessRepository) GetBySlug(ctx context.Context, slug string) (*model.Business, error) {
	var business model.Business
	err := r.db.GetContext(ctx, &business, `SELECT `+businessColumns+` FROM businesses WHERE slug = $1`, slug)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFound("business", err)
		}
		return nil, fmt.Errorf("failed to get business by slug: %w", err)
	}
	return &business, nil
}
