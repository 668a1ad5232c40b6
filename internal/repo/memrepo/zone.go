package memrepo

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/pkordes/parking-meter/internal/domain"
)

type zoneRepo struct{ s *Store }

func (r zoneRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Zone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	z, ok := r.s.zones[id]
	if !ok {
		return domain.Zone{}, fmt.Errorf("memrepo.ZoneRepo.GetByID: %w", domain.ErrNotFound)
	}
	return z, nil
}

func (r zoneRepo) List(_ context.Context) ([]domain.Zone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	zones := make([]domain.Zone, 0, len(r.s.zones))
	for _, z := range r.s.zones {
		zones = append(zones, z)
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].Name < zones[j].Name })
	return zones, nil
}

func (r zoneRepo) Upsert(_ context.Context, zone domain.Zone) (domain.Zone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if existing, ok := r.s.zones[zone.ID]; ok {
		zone.CreatedAt = existing.CreatedAt
	} else {
		zone.CreatedAt = r.s.now()
	}
	r.s.zones[zone.ID] = zone
	return zone, nil
}
