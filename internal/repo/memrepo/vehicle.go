package memrepo

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/pkordes/parking-meter/internal/domain"
)

type vehicleRepo struct{ s *Store }

func (r vehicleRepo) Create(_ context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.vehicles {
		if existing.UserID == v.UserID && existing.Plate == v.Plate {
			return domain.Vehicle{}, fmt.Errorf("memrepo.VehicleRepo.Create: plate %q already registered: %w", v.Plate, domain.ErrConflict)
		}
	}

	v.ID = uuid.New()
	v.CreatedAt = r.s.now()
	r.s.vehicles[v.ID] = v
	return v, nil
}

func (r vehicleRepo) GetByID(_ context.Context, userID, vehicleID uuid.UUID) (domain.Vehicle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, ok := r.s.vehicles[vehicleID]
	if !ok || v.UserID != userID {
		return domain.Vehicle{}, fmt.Errorf("memrepo.VehicleRepo.GetByID: %w", domain.ErrNotFound)
	}
	return v, nil
}

func (r vehicleRepo) List(_ context.Context, userID uuid.UUID) ([]domain.Vehicle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	vehicles := []domain.Vehicle{}
	for _, v := range r.s.vehicles {
		if v.UserID == userID {
			vehicles = append(vehicles, v)
		}
	}
	sort.Slice(vehicles, func(i, j int) bool { return vehicles[i].Plate < vehicles[j].Plate })
	return vehicles, nil
}

func (r vehicleRepo) Delete(_ context.Context, userID, vehicleID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, ok := r.s.vehicles[vehicleID]
	if !ok || v.UserID != userID {
		return fmt.Errorf("memrepo.VehicleRepo.Delete: %w", domain.ErrNotFound)
	}
	for _, ps := range r.s.sessions {
		if ps.VehicleID == vehicleID {
			return fmt.Errorf("memrepo.VehicleRepo.Delete: vehicle has parking sessions: %w", domain.ErrConflict)
		}
	}
	delete(r.s.vehicles, vehicleID)
	return nil
}
