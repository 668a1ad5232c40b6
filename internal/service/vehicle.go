package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/parking-meter/internal/domain"
	"github.com/pkordes/parking-meter/internal/repo"
)

// maxPlateLen bounds a normalized licence plate.
const maxPlateLen = 16

// VehicleService implements business logic for a user's vehicles.
type VehicleService struct {
	repo repo.VehicleRepo
}

// NewVehicleService constructs a VehicleService backed by the provided VehicleRepo.
func NewVehicleService(r repo.VehicleRepo) *VehicleService {
	return &VehicleService{repo: r}
}

// Create registers a vehicle for userID.
// Returns domain.ErrValidation for an empty or overlong plate and
// domain.ErrConflict if the user already registered that plate.
func (s *VehicleService) Create(ctx context.Context, userID uuid.UUID, plate string) (domain.Vehicle, error) {
	normalized, err := NormalizePlate(plate)
	if err != nil {
		return domain.Vehicle{}, err
	}
	v, err := s.repo.Create(ctx, domain.Vehicle{UserID: userID, Plate: normalized})
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Create: %w", err)
	}
	return v, nil
}

// GetByID returns one of the user's vehicles.
func (s *VehicleService) GetByID(ctx context.Context, userID, vehicleID uuid.UUID) (domain.Vehicle, error) {
	v, err := s.repo.GetByID(ctx, userID, vehicleID)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.GetByID: %w", err)
	}
	return v, nil
}

// List returns the user's vehicles ordered by plate.
// Always returns a non-nil slice so callers can safely range over it.
func (s *VehicleService) List(ctx context.Context, userID uuid.UUID) ([]domain.Vehicle, error) {
	vehicles, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.VehicleService.List: %w", err)
	}
	if vehicles == nil {
		return []domain.Vehicle{}, nil
	}
	return vehicles, nil
}

// Delete removes one of the user's vehicles.
// Returns domain.ErrConflict while parking sessions reference it.
func (s *VehicleService) Delete(ctx context.Context, userID, vehicleID uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, vehicleID); err != nil {
		return fmt.Errorf("service.VehicleService.Delete: %w", err)
	}
	return nil
}

// NormalizePlate trims, collapses inner whitespace to single spaces and
// upper-cases a licence plate.
func NormalizePlate(plate string) (string, error) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(plate), " "))
	if normalized == "" {
		return "", fmt.Errorf("%w: plate is required", domain.ErrValidation)
	}
	if len(normalized) > maxPlateLen {
		return "", fmt.Errorf("%w: plate must be at most %d characters", domain.ErrValidation, maxPlateLen)
	}
	return normalized, nil
}
