package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/b2bagadi/Maw3idokom2-sub000/internal/model"
	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
)

// Seed lists tenants to create at startup. It gives the memory driver
// something to serve, and is idempotent by slug on any driver.
type Seed struct {
	Businesses []SeedBusiness `mapstructure:"businesses"`
}

// SeedBusiness ids are optional. Fixed ids let operators mint owner tokens
// and query availability without looking them up.
type SeedBusiness struct {
	ID           string        `mapstructure:"id"`
	Slug         string        `mapstructure:"slug"`
	Name         string        `mapstructure:"name"`
	Timezone     string        `mapstructure:"timezone"`
	Email        string        `mapstructure:"email"`
	Phone        string        `mapstructure:"phone"`
	Services     []SeedService `mapstructure:"services"`
	Staff        []SeedStaff   `mapstructure:"staff"`
	WorkingHours []SeedDay     `mapstructure:"working_hours"`
}

type SeedService struct {
	ID              string `mapstructure:"id"`
	Name            string `mapstructure:"name"`
	Description     string `mapstructure:"description"`
	DurationMinutes int    `mapstructure:"duration_minutes"`
	PriceCents      int64  `mapstructure:"price_cents"`
}

type SeedStaff struct {
	ID    string `mapstructure:"id"`
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email"`
	// WorkingHours overrides the business week for this staff member.
	WorkingHours []SeedDay `mapstructure:"working_hours"`
}

// SeedDay is an enabled weekday, 0 being Sunday.
type SeedDay struct {
	DayOfWeek int    `mapstructure:"day_of_week"`
	Start     string `mapstructure:"start"`
	End       string `mapstructure:"end"`
}

// LoadSeed reads a seed file in any format viper understands.
func LoadSeed(path string) (*Seed, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed Seed
	if err := v.Unmarshal(&seed); err != nil {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}
	return &seed, nil
}

// Apply creates every business whose slug does not exist yet, with its
// services, staff and hours. It returns the number of businesses created.
func (s *Seed) Apply(ctx context.Context, store Store) (int, error) {
	created := 0
	for i := range s.Businesses {
		sb := &s.Businesses[i]
		_, err := store.Businesses().GetBySlug(ctx, sb.Slug)
		if err == nil {
			continue
		}
		if !apperrors.IsNotFound(err) {
			return created, fmt.Errorf("failed to look up business %s: %w", sb.Slug, err)
		}
		if err := sb.apply(ctx, store); err != nil {
			return created, fmt.Errorf("failed to seed business %s: %w", sb.Slug, err)
		}
		created++
	}
	return created, nil
}

func (sb *SeedBusiness) apply(ctx context.Context, store Store) error {
	if sb.Slug == "" {
		return apperrors.NewValidation("seed business needs a slug", nil)
	}
	id, err := seedID(sb.ID)
	if err != nil {
		return err
	}
	business := &model.Business{
		Base:     model.Base{ID: id},
		Slug:     sb.Slug,
		Name:     sb.Name,
		Timezone: sb.Timezone,
		Email:    sb.Email,
		Phone:    sb.Phone,
		IsActive: true,
	}
	if _, err := business.Location(); err != nil {
		return apperrors.NewValidation(err.Error(), err)
	}
	if err := store.Businesses().Create(ctx, business); err != nil {
		return err
	}

	for _, ss := range sb.Services {
		id, err := seedID(ss.ID)
		if err != nil {
			return err
		}
		if ss.DurationMinutes <= 0 {
			return apperrors.NewValidation(fmt.Sprintf("service %q needs a positive duration", ss.Name), nil)
		}
		if err := store.Services().Create(ctx, &model.Service{
			Base:            model.Base{ID: id},
			BusinessID:      business.ID,
			Name:            ss.Name,
			Description:     ss.Description,
			DurationMinutes: ss.DurationMinutes,
			PriceCents:      ss.PriceCents,
			IsActive:        true,
		}); err != nil {
			return err
		}
	}

	if err := seedWeek(ctx, store, business.ID, nil, sb.WorkingHours); err != nil {
		return err
	}

	for _, st := range sb.Staff {
		id, err := seedID(st.ID)
		if err != nil {
			return err
		}
		staff := &model.Staff{
			Base:       model.Base{ID: id},
			BusinessID: business.ID,
			Name:       st.Name,
			Email:      st.Email,
			IsActive:   true,
		}
		if err := store.Staff().Create(ctx, staff); err != nil {
			return err
		}
		if err := seedWeek(ctx, store, business.ID, &staff.ID, st.WorkingHours); err != nil {
			return err
		}
	}
	return nil
}

func seedWeek(ctx context.Context, store Store, businessID uuid.UUID, staffID *uuid.UUID, days []SeedDay) error {
	if len(days) == 0 {
		return nil
	}
	week := make([]*model.WorkingHours, 0, len(days))
	for _, d := range days {
		week = append(week, &model.WorkingHours{DayOfWeek: d.DayOfWeek, StartTime: d.Start, EndTime: d.End, IsEnabled: true})
	}
	if err := model.ValidateWeek(week); err != nil {
		return err
	}
	return store.WorkingHours().Replace(ctx, businessID, staffID, week)
}

// seedID parses an optional id, minting one when it is empty.
func seedID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.New(), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.NewValidation(fmt.Sprintf("invalid seed id %q", raw), err)
	}
	return id, nil
}
