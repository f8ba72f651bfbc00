package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Business is a tenant. Public booking pages address it by slug.
type Business struct {
	Base
	Slug     string `db:"slug" json:"slug"`
	Name     string `db:"name" json:"name"`
	Timezone string `db:"timezone" json:"timezone"`
	Email    string `db:"email" json:"email,omitempty"`
	Phone    string `db:"phone" json:"phone,omitempty"`
	IsActive bool   `db:"is_active" json:"is_active"`
}

// Location resolves the business timezone. An empty timezone means UTC.
func (b *Business) Location() (*time.Location, error) {
	if b.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q for business %s: %w", b.Timezone, b.Slug, err)
	}
	return loc, nil
}

type Staff struct {
	Base
	BusinessID uuid.UUID `db:"business_id" json:"business_id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email,omitempty"`
	IsActive   bool      `db:"is_active" json:"is_active"`
}

// BusinessProfile is what the public booking page renders.
type BusinessProfile struct {
	Business *Business `json:"business"`
	Services []*Service `json:"services"`
	Staff    []*Staff   `json:"staff"`
}
