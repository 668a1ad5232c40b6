package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/parking-meter/internal/domain"
	"github.com/pkordes/parking-meter/internal/repo"
)

// ZoneService exposes the rate table.
type ZoneService struct {
	repo repo.ZoneRepo
}

// NewZoneService constructs a ZoneService backed by the provided ZoneRepo.
func NewZoneService(r repo.ZoneRepo) *ZoneService {
	return &ZoneService{repo: r}
}

// GetByID returns a single zone.
func (s *ZoneService) GetByID(ctx context.Context, id uuid.UUID) (domain.Zone, error) {
	z, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Zone{}, fmt.Errorf("service.ZoneService.GetByID: %w", err)
	}
	return z, nil
}

// List returns every zone ordered by name.
func (s *ZoneService) List(ctx context.Context) ([]domain.Zone, error) {
	zones, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ZoneService.List: %w", err)
	}
	if zones == nil {
		return []domain.Zone{}, nil
	}
	return zones, nil
}

// Seed upserts zones by ID. Used at start-up to load a zone file into the store.
func (s *ZoneService) Seed(ctx context.Context, zones []domain.Zone) error {
	for _, z := range zones {
		if err := ValidateZone(z); err != nil {
			return fmt.Errorf("service.ZoneService.Seed: %w", err)
		}
		if _, err := s.repo.Upsert(ctx, z); err != nil {
			return fmt.Errorf("service.ZoneService.Seed: %w", err)
		}
	}
	return nil
}

// ValidateZone enforces the rate-table rules: a non-nil ID, a name, and an
// hourly rate between zero and domain.MaxHourlyRate.
func ValidateZone(z domain.Zone) error {
	if z.ID == uuid.Nil {
		return fmt.Errorf("%w: zone id is required", domain.ErrValidation)
	}
	if z.Name == "" {
		return fmt.Errorf("%w: zone %s: name is required", domain.ErrValidation, z.ID)
	}
	if z.HourlyRate < 0 {
		return fmt.Errorf("%w: zone %s: hourly_rate must not be negative", domain.ErrValidation, z.ID)
	}
	if z.HourlyRate > domain.MaxHourlyRate {
		return fmt.Errorf("%w: zone %s: hourly_rate exceeds %d", domain.ErrValidation, z.ID, domain.MaxHourlyRate)
	}
	return nil
}
