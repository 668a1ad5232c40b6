package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/parking-meter/internal/domain"
	"github.com/pkordes/parking-meter/internal/handler"
	"github.com/pkordes/parking-meter/internal/middleware"
)

// ---- mocks -----------------------------------------------------------------
// Set only the method fields your test needs.

type mockSessionServicer struct {
	start            func(ctx context.Context, userID, vehicleID, zoneID uuid.UUID) (domain.SessionView, error)
	stop             func(ctx context.Context, userID, sessionID uuid.UUID) (domain.SessionView, error)
	get              func(ctx context.Context, userID, sessionID uuid.UUID) (domain.SessionView, error)
	listPaged        func(ctx context.Context, userID uuid.UUID, f domain.SessionFilter, p domain.PaginationParams) ([]domain.SessionView, int64, error)
	activeForVehicle func(ctx context.Context, userID, vehicleID uuid.UUID) (domain.SessionView, error)
}

func (m *mockSessionServicer) Start(ctx context.Context, userID, vehicleID, zoneID uuid.UUID) (domain.SessionView, error) {
	return m.start(ctx, userID, vehicleID, zoneID)
}
func (m *mockSessionServicer) Stop(ctx context.Context, userID, sessionID uuid.UUID) (domain.SessionView, error) {
	return m.stop(ctx, userID, sessionID)
}
func (m *mockSessionServicer) Get(ctx context.Context, userID, sessionID uuid.UUID) (domain.SessionView, error) {
	return m.get(ctx, userID, sessionID)
}
func (m *mockSessionServicer) ListPaged(ctx context.Context, userID uuid.UUID, f domain.SessionFilter, p domain.PaginationParams) ([]domain.SessionView, int64, error) {
	return m.listPaged(ctx, userID, f, p)
}
func (m *mockSessionServicer) ActiveForVehicle(ctx context.Context, userID, vehicleID uuid.UUID) (domain.SessionView, error) {
	return m.activeForVehicle(ctx, userID, vehicleID)
}

type mockVehicleServicer struct {
	create  func(ctx context.Context, userID uuid.UUID, plate string) (domain.Vehicle, error)
	getByID func(ctx context.Context, userID, vehicleID uuid.UUID) (domain.Vehicle, error)
	list    func(ctx context.Context, userID uuid.UUID) ([]domain.Vehicle, error)
	delete  func(ctx context.Context, userID, vehicleID uuid.UUID) error
}

func (m *mockVehicleServicer) Create(ctx context.Context, userID uuid.UUID, plate string) (domain.Vehicle, error) {
	return m.create(ctx, userID, plate)
}
func (m *mockVehicleServicer) GetByID(ctx context.Context, userID, vehicleID uuid.UUID) (domain.Vehicle, error) {
	return m.getByID(ctx, userID, vehicleID)
}
func (m *mockVehicleServicer) List(ctx context.Context, userID uuid.UUID) ([]domain.Vehicle, error) {
	return m.list(ctx, userID)
}
func (m *mockVehicleServicer) Delete(ctx context.Context, userID, vehicleID uuid.UUID) error {
	return m.delete(ctx, userID, vehicleID)
}

type mockZoneServicer struct {
	getByID func(ctx context.Context, id uuid.UUID) (domain.Zone, error)
	list    func(ctx context.Context) ([]domain.Zone, error)
}

func (m *mockZoneServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Zone, error) {
	return m.getByID(ctx, id)
}
func (m *mockZoneServicer) List(ctx context.Context) ([]domain.Zone, error) {
	return m.list(ctx)
}

type mockExportServicer struct {
	export func(ctx context.Context, userID uuid.UUID) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, userID uuid.UUID) ([]domain.ExportRow, error) {
	return m.export(ctx, userID)
}

// compile-time checks: mocks must satisfy the handler interfaces.
var (
	_ handler.SessionServicer = (*mockSessionServicer)(nil)
	_ handler.VehicleServicer = (*mockVehicleServicer)(nil)
	_ handler.ZoneServicer    = (*mockZoneServicer)(nil)
	_ handler.ExportServicer  = (*mockExportServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

// deps collects the services a test wires into the router. Nil fields get
// zero-valued mocks that panic if called.
type deps struct {
	sessions *mockSessionServicer
	vehicles *mockVehicleServicer
	zones    *mockZoneServicer
	export   *mockExportServicer
	metrics  http.Handler
}

// testUserID is the acting user injected by fakeAuth.
var testUserID = uuid.MustParse("7f1c3d2a-0000-4000-8000-000000000001")

// fakeAuth stands in for middleware.NewAuthenticator and authenticates every
// request as testUserID.
func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithUserID(r.Context(), testUserID)))
	})
}

// newHTTPHandler wires a Server with the given mocks into the router the
// same way main.go does, but with fakeAuth in front of the protected routes.
func newHTTPHandler(d deps) http.Handler {
	if d.sessions == nil {
		d.sessions = &mockSessionServicer{}
	}
	if d.vehicles == nil {
		d.vehicles = &mockVehicleServicer{}
	}
	if d.zones == nil {
		d.zones = &mockZoneServicer{}
	}
	if d.export == nil {
		d.export = &mockExportServicer{}
	}
	srv := handler.NewServer(d.sessions, d.vehicles, d.zones, d.export, nil)
	return handler.NewRouter(srv, fakeAuth, d.metrics)
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var e errorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&e))
	return e
}

var (
	testStart = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	testZone  = domain.Zone{ID: uuid.New(), Name: "Old Town", HourlyRate: 300}
)

func testVehicle() domain.Vehicle {
	return domain.Vehicle{ID: uuid.New(), UserID: testUserID, Plate: "AB123CD", CreatedAt: testStart}
}

func activeView(v domain.Vehicle) domain.SessionView {
	return domain.SessionView{
		Session: domain.ParkingSession{
			ID:        uuid.New(),
			UserID:    testUserID,
			VehicleID: v.ID,
			ZoneID:    testZone.ID,
			StartedAt: testStart,
		},
		Zone:        testZone,
		Vehicle:     v,
		Price:       150,
		PriceIsLive: true,
	}
}

func settledView(v domain.Vehicle) domain.SessionView {
	view := activeView(v)
	stopped := testStart.Add(45 * time.Minute)
	price := int64(225)
	view.Session.StoppedAt = &stopped
	view.Session.Price = &price
	view.Price = price
	view.PriceIsLive = false
	return view
}
