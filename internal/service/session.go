// Package service contains the business logic for the parking meter API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here — services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/parking-meter/internal/domain"
	"github.com/pkordes/parking-meter/internal/metrics"
	"github.com/pkordes/parking-meter/internal/pricing"
	"github.com/pkordes/parking-meter/internal/repo"
)

// ActiveIndex is a best-effort lookup from vehicle to active session.
// Failures are logged and ignored; the session repo stays authoritative.
type ActiveIndex interface {
	Put(ctx context.Context, vehicleID, sessionID uuid.UUID) error
	Lookup(ctx context.Context, vehicleID uuid.UUID) (sessionID uuid.UUID, found bool, err error)
	Remove(ctx context.Context, vehicleID uuid.UUID) error
}

// SessionService drives the parking session lifecycle: start, stop, and
// read with a live or settled price.
//
// The acting user is an explicit parameter on every method; sessions and
// vehicles that belong to somebody else are reported as not found.
type SessionService struct {
	sessions repo.SessionRepo
	zones    repo.ZoneRepo
	vehicles repo.VehicleRepo
	index    ActiveIndex
	log      *slog.Logger
	now      func() time.Time
}

// SessionOption configures optional SessionService collaborators.
type SessionOption func(*SessionService)

// WithActiveIndex enables the vehicle -> active session index.
func WithActiveIndex(idx ActiveIndex) SessionOption {
	return func(s *SessionService) { s.index = idx }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *SessionService) { s.log = l }
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionService) { s.now = now }
}

// NewSessionService constructs a SessionService backed by the provided repos.
func NewSessionService(sessions repo.SessionRepo, zones repo.ZoneRepo, vehicles repo.VehicleRepo, opts ...SessionOption) *SessionService {
	s := &SessionService{
		sessions: sessions,
		zones:    zones,
		vehicles: vehicles,
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// clock returns the current time in UTC truncated to the microsecond, the
// precision Postgres stores, so a price computed from a returned timestamp
// matches one computed from the stored value.
func (s *SessionService) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// Start opens a new active session for vehicleID in zoneID.
// Returns domain.ErrNotFound if the vehicle (owned by userID) or the zone does
// not exist, and domain.ErrConflict if the vehicle already has an active session.
func (s *SessionService) Start(ctx context.Context, userID, vehicleID, zoneID uuid.UUID) (view domain.SessionView, err error) {
	defer func() { metrics.ObserveStart(err) }()

	vehicle, err := s.vehicles.GetByID(ctx, userID, vehicleID)
	if err != nil {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.Start: vehicle: %w", err)
	}
	zone, err := s.zones.GetByID(ctx, zoneID)
	if err != nil {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.Start: zone: %w", err)
	}

	// Fast rejection with a clear message. The repo's Create enforces the
	// same rule atomically for the case where two starts race past this check.
	if _, err := s.sessions.FindActiveByVehicle(ctx, vehicleID); err == nil {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.Start: vehicle already has an active session: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.Start: %w", err)
	}

	now := s.clock()
	created, err := s.sessions.Create(ctx, domain.ParkingSession{
		UserID:    userID,
		VehicleID: vehicleID,
		ZoneID:    zoneID,
		StartedAt: now,
	})
	if err != nil {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.Start: %w", err)
	}

	if s.index != nil {
		if err := s.index.Put(ctx, vehicleID, created.ID); err != nil {
			s.log.WarnContext(ctx, "active index put failed", "vehicle_id", vehicleID, "error", err)
		}
	}

	s.log.InfoContext(ctx, "parking session started",
		"session_id", created.ID,
		"vehicle_id", vehicleID,
		"zone_id", zoneID,
	)
	return project(created, zone, vehicle, now), nil
}

// Stop settles an active session: it sets the stop time to now and stores
// the price computed from the zone's current hourly rate.
// Returns domain.ErrNotFound if the session does not belong to userID and
// domain.ErrInvalidState if it is already settled; a settled session is never
// re-priced.
func (s *SessionService) Stop(ctx context.Context, userID, sessionID uuid.UUID) (view domain.SessionView, err error) {
	defer func() { metrics.ObserveStop(err) }()

	session, err := s.sessions.GetByID(ctx, userID, sessionID)
	if err != nil {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.Stop: %w", err)
	}
	if !session.IsActive() {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.Stop: session already settled: %w", domain.ErrInvalidState)
	}

	zone, err := s.zones.GetByID(ctx, session.ZoneID)
	if err != nil {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.Stop: zone: %w", err)
	}
	// Everything the response needs is loaded before settling, so a committed
	// settlement is always reported as a success.
	vehicle, err := s.vehicles.GetByID(ctx, userID, session.VehicleID)
	if err != nil {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.Stop: vehicle: %w", err)
	}

	stoppedAt := s.clock()
	if stoppedAt.Before(session.StartedAt) {
		// Clock skew: settle as a zero-length session rather than store a
		// stop time earlier than the start.
		stoppedAt = session.StartedAt
	}
	minutes := pricing.ElapsedMinutes(session.StartedAt, stoppedAt)
	price := pricing.Charge(zone.HourlyRate, minutes)

	settled, err := s.sessions.Settle(ctx, userID, sessionID, stoppedAt, price)
	if err != nil {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.Stop: %w", err)
	}
	metrics.ObserveSettlement(minutes, price)

	if s.index != nil {
		if err := s.index.Remove(ctx, settled.VehicleID); err != nil {
			s.log.WarnContext(ctx, "active index remove failed", "vehicle_id", settled.VehicleID, "error", err)
		}
	}

	s.log.InfoContext(ctx, "parking session settled",
		"session_id", settled.ID,
		"vehicle_id", settled.VehicleID,
		"billed_minutes", minutes,
		"price", price,
	)
	return project(settled, zone, vehicle, stoppedAt), nil
}

// Get returns a session with its display price. It never writes: an active
// session gets a live estimate against the current time, a settled session
// returns its stored price unchanged.
func (s *SessionService) Get(ctx context.Context, userID, sessionID uuid.UUID) (domain.SessionView, error) {
	session, err := s.sessions.GetByID(ctx, userID, sessionID)
	if err != nil {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.Get: %w", err)
	}

	view, err := s.resolve(ctx, userID, session, newLookupCache())
	if err != nil {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.Get: %w", err)
	}
	return view, nil
}

// ListPaged returns one page of the user's sessions, newest first, with
// display prices, and the total number of matching sessions.
func (s *SessionService) ListPaged(ctx context.Context, userID uuid.UUID, f domain.SessionFilter, p domain.PaginationParams) ([]domain.SessionView, int64, error) {
	sessions, total, err := s.sessions.ListByUserPaged(ctx, userID, f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.SessionService.ListPaged: %w", err)
	}

	cache := newLookupCache()
	views := make([]domain.SessionView, 0, len(sessions))
	for _, ps := range sessions {
		v, err := s.resolve(ctx, userID, ps, cache)
		if err != nil {
			return nil, 0, fmt.Errorf("service.SessionService.ListPaged: %w", err)
		}
		views = append(views, v)
	}
	return views, total, nil
}

// ActiveForVehicle returns the active session of a vehicle owned by userID.
// The active index is consulted first; a stale entry is dropped and the
// session repo is asked instead.
// Returns domain.ErrNotFound if the vehicle is unknown or has no active session.
func (s *SessionService) ActiveForVehicle(ctx context.Context, userID, vehicleID uuid.UUID) (domain.SessionView, error) {
	vehicle, err := s.vehicles.GetByID(ctx, userID, vehicleID)
	if err != nil {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.ActiveForVehicle: %w", err)
	}

	session, err := s.activeSession(ctx, userID, vehicleID)
	if err != nil {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.ActiveForVehicle: %w", err)
	}

	cache := newLookupCache()
	cache.vehicles[vehicle.ID] = vehicle
	view, err := s.resolve(ctx, userID, session, cache)
	if err != nil {
		return domain.SessionView{}, fmt.Errorf("service.SessionService.ActiveForVehicle: %w", err)
	}
	return view, nil
}

func (s *SessionService) activeSession(ctx context.Context, userID, vehicleID uuid.UUID) (domain.ParkingSession, error) {
	if s.index != nil {
		id, found, err := s.index.Lookup(ctx, vehicleID)
		switch {
		case err != nil:
			s.log.WarnContext(ctx, "active index lookup failed", "vehicle_id", vehicleID, "error", err)
		case found:
			ps, err := s.sessions.GetByID(ctx, userID, id)
			if err == nil && ps.IsActive() && ps.VehicleID == vehicleID {
				return ps, nil
			}
			if err := s.index.Remove(ctx, vehicleID); err != nil {
				s.log.WarnContext(ctx, "active index remove failed", "vehicle_id", vehicleID, "error", err)
			}
		}
	}

	ps, err := s.sessions.FindActiveByVehicle(ctx, vehicleID)
	if err != nil {
		return domain.ParkingSession{}, err
	}
	if s.index != nil {
		if err := s.index.Put(ctx, vehicleID, ps.ID); err != nil {
			s.log.WarnContext(ctx, "active index put failed", "vehicle_id", vehicleID, "error", err)
		}
	}
	return ps, nil
}

// lookupCache memoizes zone and vehicle reads while projecting several
// sessions in one call.
type lookupCache struct {
	zones    map[uuid.UUID]domain.Zone
	vehicles map[uuid.UUID]domain.Vehicle
}

func newLookupCache() *lookupCache {
	return &lookupCache{
		zones:    map[uuid.UUID]domain.Zone{},
		vehicles: map[uuid.UUID]domain.Vehicle{},
	}
}

// resolve loads the zone and vehicle of ps and projects it against now.
func (s *SessionService) resolve(ctx context.Context, userID uuid.UUID, ps domain.ParkingSession, c *lookupCache) (domain.SessionView, error) {
	zone, ok := c.zones[ps.ZoneID]
	if !ok {
		z, err := s.zones.GetByID(ctx, ps.ZoneID)
		if err != nil {
			return domain.SessionView{}, fmt.Errorf("zone: %w", err)
		}
		zone = z
		c.zones[zone.ID] = zone
	}

	vehicle, ok := c.vehicles[ps.VehicleID]
	if !ok {
		v, err := s.vehicles.GetByID(ctx, userID, ps.VehicleID)
		if err != nil {
			return domain.SessionView{}, fmt.Errorf("vehicle: %w", err)
		}
		vehicle = v
		c.vehicles[vehicle.ID] = vehicle
	}

	return project(ps, zone, vehicle, s.clock()), nil
}

// project builds the user-facing view. A settled session shows its stored
// price; an active one shows the price it would settle at if stopped at now.
func project(ps domain.ParkingSession, zone domain.Zone, vehicle domain.Vehicle, now time.Time) domain.SessionView {
	view := domain.SessionView{Session: ps, Zone: zone, Vehicle: vehicle}
	if ps.Price != nil {
		view.Price = *ps.Price
		return view
	}
	view.Price = pricing.ComputePrice(zone.HourlyRate, ps.StartedAt, now)
	view.PriceIsLive = true
	return view
}
