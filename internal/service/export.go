package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/parking-meter/internal/domain"
	"github.com/pkordes/parking-meter/internal/pricing"
	"github.com/pkordes/parking-meter/internal/repo"
)

// ExportService assembles a flat export of a user's settled sessions.
type ExportService struct {
	sessions repo.SessionRepo
	zones    repo.ZoneRepo
	vehicles repo.VehicleRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(sessions repo.SessionRepo, zones repo.ZoneRepo, vehicles repo.VehicleRepo) *ExportService {
	return &ExportService{sessions: sessions, zones: zones, vehicles: vehicles}
}

// Export returns one ExportRow per settled session of userID, oldest first.
// Active sessions are left out because they have no final price yet.
// Always returns a non-nil slice.
func (s *ExportService) Export(ctx context.Context, userID uuid.UUID) ([]domain.ExportRow, error) {
	sessions, err := s.sessions.ListSettledByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	cache := newLookupCache()
	rows := make([]domain.ExportRow, 0, len(sessions))
	for _, ps := range sessions {
		if ps.StoppedAt == nil || ps.Price == nil {
			continue
		}

		zone, ok := cache.zones[ps.ZoneID]
		if !ok {
			if zone, err = s.zones.GetByID(ctx, ps.ZoneID); err != nil {
				return nil, fmt.Errorf("service.ExportService.Export: zone: %w", err)
			}
			cache.zones[zone.ID] = zone
		}
		vehicle, ok := cache.vehicles[ps.VehicleID]
		if !ok {
			if vehicle, err = s.vehicles.GetByID(ctx, userID, ps.VehicleID); err != nil {
				return nil, fmt.Errorf("service.ExportService.Export: vehicle: %w", err)
			}
			cache.vehicles[vehicle.ID] = vehicle
		}

		rows = append(rows, domain.ExportRow{
			SessionID:     ps.ID,
			Plate:         vehicle.Plate,
			ZoneName:      zone.Name,
			HourlyRate:    zone.HourlyRate,
			StartedAt:     ps.StartedAt,
			StoppedAt:     *ps.StoppedAt,
			BilledMinutes: pricing.ElapsedMinutes(ps.StartedAt, *ps.StoppedAt),
			Price:         *ps.Price,
		})
	}
	return rows, nil
}
