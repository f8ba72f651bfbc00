package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
)

// SQLSTATE codes the repositories translate.
const (
	pqExclusionViolation = "23P01"
	pqUniqueViolation    = "23505"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// mapError turns constraint violations into domain errors. An exclusion
// violation on appointments means the interval overlaps a slot-holding row.
func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqExclusionViolation:
			return apperrors.NewSlotUnavailable("")
		case pqUniqueViolation:
			return apperrors.NewValidation("duplicate "+pqErr.Constraint, err)
		}
	}
	return err
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
