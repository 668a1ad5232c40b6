package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/parking-meter/internal/domain"
	"github.com/pkordes/parking-meter/internal/repo"
	"github.com/pkordes/parking-meter/internal/service"
)

// ---- mock repos ------------------------------------------------------------

// mockSessionRepo is a hand-written test double for repo.SessionRepo.
// Set only the method fields your test needs.
type mockSessionRepo struct {
	create              func(ctx context.Context, s domain.ParkingSession) (domain.ParkingSession, error)
	getByID             func(ctx context.Context, userID, sessionID uuid.UUID) (domain.ParkingSession, error)
	findActiveByVehicle func(ctx context.Context, vehicleID uuid.UUID) (domain.ParkingSession, error)
	settle              func(ctx context.Context, userID, sessionID uuid.UUID, stoppedAt time.Time, price int64) (domain.ParkingSession, error)
	listByUserPaged     func(ctx context.Context, userID uuid.UUID, f domain.SessionFilter, p domain.PaginationParams) ([]domain.ParkingSession, int64, error)
	listSettledByUser   func(ctx context.Context, userID uuid.UUID) ([]domain.ParkingSession, error)
}

func (m *mockSessionRepo) Create(ctx context.Context, s domain.ParkingSession) (domain.ParkingSession, error) {
	return m.create(ctx, s)
}
func (m *mockSessionRepo) GetByID(ctx context.Context, userID, sessionID uuid.UUID) (domain.ParkingSession, error) {
	return m.getByID(ctx, userID, sessionID)
}
func (m *mockSessionRepo) FindActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (domain.ParkingSession, error) {
	return m.findActiveByVehicle(ctx, vehicleID)
}
func (m *mockSessionRepo) Settle(ctx context.Context, userID, sessionID uuid.UUID, stoppedAt time.Time, price int64) (domain.ParkingSession, error) {
	return m.settle(ctx, userID, sessionID, stoppedAt, price)
}
func (m *mockSessionRepo) ListByUserPaged(ctx context.Context, userID uuid.UUID, f domain.SessionFilter, p domain.PaginationParams) ([]domain.ParkingSession, int64, error) {
	return m.listByUserPaged(ctx, userID, f, p)
}
func (m *mockSessionRepo) ListSettledByUser(ctx context.Context, userID uuid.UUID) ([]domain.ParkingSession, error) {
	return m.listSettledByUser(ctx, userID)
}

// mockZoneRepo is a hand-written test double for repo.ZoneRepo.
type mockZoneRepo struct {
	getByID func(ctx context.Context, id uuid.UUID) (domain.Zone, error)
	list    func(ctx context.Context) ([]domain.Zone, error)
	upsert  func(ctx context.Context, z domain.Zone) (domain.Zone, error)
}

func (m *mockZoneRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Zone, error) {
	return m.getByID(ctx, id)
}
func (m *mockZoneRepo) List(ctx context.Context) ([]domain.Zone, error) {
	return m.list(ctx)
}
func (m *mockZoneRepo) Upsert(ctx context.Context, z domain.Zone) (domain.Zone, error) {
	return m.upsert(ctx, z)
}

// mockVehicleRepo is a hand-written test double for repo.VehicleRepo.
type mockVehicleRepo struct {
	create  func(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	getByID func(ctx context.Context, userID, vehicleID uuid.UUID) (domain.Vehicle, error)
	list    func(ctx context.Context, userID uuid.UUID) ([]domain.Vehicle, error)
	delete  func(ctx context.Context, userID, vehicleID uuid.UUID) error
}

func (m *mockVehicleRepo) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	return m.create(ctx, v)
}
func (m *mockVehicleRepo) GetByID(ctx context.Context, userID, vehicleID uuid.UUID) (domain.Vehicle, error) {
	return m.getByID(ctx, userID, vehicleID)
}
func (m *mockVehicleRepo) List(ctx context.Context, userID uuid.UUID) ([]domain.Vehicle, error) {
	return m.list(ctx, userID)
}
func (m *mockVehicleRepo) Delete(ctx context.Context, userID, vehicleID uuid.UUID) error {
	return m.delete(ctx, userID, vehicleID)
}

// compile-time checks: mocks must satisfy the repo interfaces.
var (
	_ repo.SessionRepo = (*mockSessionRepo)(nil)
	_ repo.ZoneRepo    = (*mockZoneRepo)(nil)
	_ repo.VehicleRepo = (*mockVehicleRepo)(nil)
)

// ---- fakes -----------------------------------------------------------------

// fakeClock is a manually advanced clock safe for concurrent use.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// fakeIndex is an in-memory service.ActiveIndex that records calls.
type fakeIndex struct {
	mu      sync.Mutex
	entries map[uuid.UUID]uuid.UUID
	err     error
	lookups int
}

func newFakeIndex() *fakeIndex { return &fakeIndex{entries: map[uuid.UUID]uuid.UUID{}} }

func (f *fakeIndex) Put(_ context.Context, vehicleID, sessionID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries[vehicleID] = sessionID
	return nil
}

func (f *fakeIndex) Lookup(_ context.Context, vehicleID uuid.UUID) (uuid.UUID, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.err != nil {
		return uuid.UUID{}, false, f.err
	}
	id, ok := f.entries[vehicleID]
	return id, ok, nil
}

func (f *fakeIndex) Remove(_ context.Context, vehicleID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.entries, vehicleID)
	return nil
}

func (f *fakeIndex) get(vehicleID uuid.UUID) (uuid.UUID, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.entries[vehicleID]
	return id, ok
}

var _ service.ActiveIndex = (*fakeIndex)(nil)
