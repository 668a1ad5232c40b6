package memrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/parking-meter/internal/domain"
)

type sessionRepo struct{ s *Store }

// Create checks the active index and inserts under the store lock, which is
// what makes the check-then-insert atomic.
func (r sessionRepo) Create(_ context.Context, ps domain.ParkingSession) (domain.ParkingSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.active[ps.VehicleID]; ok {
		return domain.ParkingSession{}, fmt.Errorf("memrepo.SessionRepo.Create: vehicle already has an active session: %w", domain.ErrConflict)
	}
	if _, ok := r.s.vehicles[ps.VehicleID]; !ok {
		return domain.ParkingSession{}, fmt.Errorf("memrepo.SessionRepo.Create: vehicle: %w", domain.ErrNotFound)
	}
	if _, ok := r.s.zones[ps.ZoneID]; !ok {
		return domain.ParkingSession{}, fmt.Errorf("memrepo.SessionRepo.Create: zone: %w", domain.ErrNotFound)
	}

	now := r.s.now()
	ps.ID = uuid.New()
	ps.StoppedAt = nil
	ps.Price = nil
	ps.CreatedAt = now
	ps.UpdatedAt = now

	r.s.sessions[ps.ID] = ps
	r.s.active[ps.VehicleID] = ps.ID
	return cloneSession(ps), nil
}

func (r sessionRepo) GetByID(_ context.Context, userID, sessionID uuid.UUID) (domain.ParkingSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ps, ok := r.s.sessions[sessionID]
	if !ok || ps.UserID != userID {
		return domain.ParkingSession{}, fmt.Errorf("memrepo.SessionRepo.GetByID: %w", domain.ErrNotFound)
	}
	return cloneSession(ps), nil
}

func (r sessionRepo) FindActiveByVehicle(_ context.Context, vehicleID uuid.UUID) (domain.ParkingSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, ok := r.s.active[vehicleID]
	if !ok {
		return domain.ParkingSession{}, fmt.Errorf("memrepo.SessionRepo.FindActiveByVehicle: %w", domain.ErrNotFound)
	}
	return cloneSession(r.s.sessions[id]), nil
}

func (r sessionRepo) Settle(_ context.Context, userID, sessionID uuid.UUID, stoppedAt time.Time, price int64) (domain.ParkingSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ps, ok := r.s.sessions[sessionID]
	if !ok || ps.UserID != userID {
		return domain.ParkingSession{}, fmt.Errorf("memrepo.SessionRepo.Settle: %w", domain.ErrNotFound)
	}
	if !ps.IsActive() {
		return domain.ParkingSession{}, fmt.Errorf("memrepo.SessionRepo.Settle: session already settled: %w", domain.ErrInvalidState)
	}
	if stoppedAt.Before(ps.StartedAt) {
		return domain.ParkingSession{}, fmt.Errorf("memrepo.SessionRepo.Settle: stop before start: %w", domain.ErrValidation)
	}

	ps.StoppedAt = &stoppedAt
	ps.Price = &price
	ps.UpdatedAt = r.s.now()

	r.s.sessions[sessionID] = ps
	delete(r.s.active, ps.VehicleID)
	return cloneSession(ps), nil
}

func (r sessionRepo) ListByUserPaged(_ context.Context, userID uuid.UUID, f domain.SessionFilter, p domain.PaginationParams) ([]domain.ParkingSession, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := r.s.sortedSessions(
		func(ps domain.ParkingSession) bool {
			return ps.UserID == userID && (f.Status == nil || ps.Status() == *f.Status)
		},
		func(a, b domain.ParkingSession) bool {
			if !a.StartedAt.Equal(b.StartedAt) {
				return a.StartedAt.After(b.StartedAt)
			}
			return a.ID.String() < b.ID.String()
		},
	)

	total := int64(len(matched))
	start := min(max(p.Offset(), 0), len(matched))
	end := min(start+max(p.Limit, 0), len(matched))
	return matched[start:end], total, nil
}

func (r sessionRepo) ListSettledByUser(_ context.Context, userID uuid.UUID) ([]domain.ParkingSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.s.sortedSessions(
		func(ps domain.ParkingSession) bool { return ps.UserID == userID && !ps.IsActive() },
		func(a, b domain.ParkingSession) bool {
			if !a.StartedAt.Equal(b.StartedAt) {
				return a.StartedAt.Before(b.StartedAt)
			}
			return a.ID.String() < b.ID.String()
		},
	), nil
}
