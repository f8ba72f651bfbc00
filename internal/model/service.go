package model

import (
	"time"

	"github.com/google/uuid"
)

type Service struct {
	Base
	BusinessID      uuid.UUID `db:"business_id" json:"business_id"`
	Name            string    `db:"name" json:"name"`
	Description     string    `db:"description" json:"description"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	PriceCents      int64     `db:"price_cents" json:"price_cents"`
	IsActive        bool      `db:"is_active" json:"is_active"`
}

// Duration is the length of one appointment for this service.
func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}
