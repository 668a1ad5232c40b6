// Package memrepo provides in-memory implementations of the repo interfaces.
//
// All three repos share one Store and one mutex, so cross-entity rules hold
// exactly as they do in Postgres: a vehicle has at most one active session,
// settling is a compare-and-set, and vehicles with sessions cannot be deleted.
package memrepo

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/parking-meter/internal/domain"
	"github.com/pkordes/parking-meter/internal/repo"
)

// Store holds every zone, vehicle and session in process memory.
// The zero value is not usable; construct with New.
type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	zones    map[uuid.UUID]domain.Zone
	vehicles map[uuid.UUID]domain.Vehicle
	sessions map[uuid.UUID]domain.ParkingSession
	// active maps a vehicle ID to its active session ID.
	active map[uuid.UUID]uuid.UUID
}

// New returns an empty Store seeded with the given zones.
func New(zones ...domain.Zone) *Store {
	s := &Store{
		now:      func() time.Time { return time.Now().UTC() },
		zones:    make(map[uuid.UUID]domain.Zone, len(zones)),
		vehicles: make(map[uuid.UUID]domain.Vehicle),
		sessions: make(map[uuid.UUID]domain.ParkingSession),
		active:   make(map[uuid.UUID]uuid.UUID),
	}
	for _, z := range zones {
		if z.CreatedAt.IsZero() {
			z.CreatedAt = s.now()
		}
		s.zones[z.ID] = z
	}
	return s
}

// Zones returns a ZoneRepo view of the store.
func (s *Store) Zones() repo.ZoneRepo { return zoneRepo{s} }

// Vehicles returns a VehicleRepo view of the store.
func (s *Store) Vehicles() repo.VehicleRepo { return vehicleRepo{s} }

// Sessions returns a SessionRepo view of the store.
func (s *Store) Sessions() repo.SessionRepo { return sessionRepo{s} }

// clonePtr copies the pointed-to value so callers never share mutable state
// with the store.
func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneSession(ps domain.ParkingSession) domain.ParkingSession {
	ps.StoppedAt = clonePtr(ps.StoppedAt)
	ps.Price = clonePtr(ps.Price)
	return ps
}

// sortedSessions returns sessions matching keep ordered by less.
func (s *Store) sortedSessions(keep func(domain.ParkingSession) bool, less func(a, b domain.ParkingSession) bool) []domain.ParkingSession {
	out := []domain.ParkingSession{}
	for _, ps := range s.sessions {
		if keep(ps) {
			out = append(out, cloneSession(ps))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
