// Package handler implements the HTTP handlers for the parking meter API.
// All handlers are methods on Server. They are split into resource-specific
// files (health.go, session.go, vehicle.go, zone.go, export.go) but share the
// same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/parking-meter/internal/domain"
)

// SessionServicer defines the lifecycle operations the session handlers
// depend on. Defining the interface here, in the consumer package, lets
// handler tests inject a mock without touching storage.
type SessionServicer interface {
	Start(ctx context.Context, userID, vehicleID, zoneID uuid.UUID) (domain.SessionView, error)
	Stop(ctx context.Context, userID, sessionID uuid.UUID) (domain.SessionView, error)
	Get(ctx context.Context, userID, sessionID uuid.UUID) (domain.SessionView, error)
	ListPaged(ctx context.Context, userID uuid.UUID, f domain.SessionFilter, p domain.PaginationParams) ([]domain.SessionView, int64, error)
	ActiveForVehicle(ctx context.Context, userID, vehicleID uuid.UUID) (domain.SessionView, error)
}

// VehicleServicer defines the vehicle operations the handlers depend on.
type VehicleServicer interface {
	Create(ctx context.Context, userID uuid.UUID, plate string) (domain.Vehicle, error)
	GetByID(ctx context.Context, userID, vehicleID uuid.UUID) (domain.Vehicle, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.Vehicle, error)
	Delete(ctx context.Context, userID, vehicleID uuid.UUID) error
}

// ZoneServicer defines the read-only rate table operations.
type ZoneServicer interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Zone, error)
	List(ctx context.Context) ([]domain.Zone, error)
}

// ExportServicer produces the flat settled-sessions export.
type ExportServicer interface {
	Export(ctx context.Context, userID uuid.UUID) ([]domain.ExportRow, error)
}

// Server holds the dependencies shared by every handler.
// Wire it in main.go via NewRouter.
type Server struct {
	sessions SessionServicer
	vehicles VehicleServicer
	zones    ZoneServicer
	export   ExportServicer
	log      *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default().
func NewServer(sessions SessionServicer, vehicles VehicleServicer, zones ZoneServicer, export ExportServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		sessions: sessions,
		vehicles: vehicles,
		zones:    zones,
		export:   export,
		log:      log,
	}
}
