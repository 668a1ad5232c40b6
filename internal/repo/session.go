package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/parking-meter/internal/domain"
)

// activeSessionIndex is the partial unique index that allows at most one
// session with stopped_at IS NULL per vehicle. See migrations.
const activeSessionIndex = "parking_sessions_one_active_per_vehicle"

// SessionRepo defines the persistence operations for ParkingSessions.
//
// The store, not the caller, guarantees the one-active-session-per-vehicle
// rule: Create fails with domain.ErrConflict when the vehicle already has an
// active session, even if two Creates race. Settle is a conditional write that
// only succeeds on an active session, so two concurrent stops cannot both settle.
type SessionRepo interface {
	// Create inserts a new active session and returns the persisted record.
	// Returns domain.ErrConflict if the vehicle already has an active session.
	Create(ctx context.Context, s domain.ParkingSession) (domain.ParkingSession, error)

	// GetByID retrieves a session by ID, scoped to the owning user.
	// Returns domain.ErrNotFound if no such session belongs to userID.
	GetByID(ctx context.Context, userID, sessionID uuid.UUID) (domain.ParkingSession, error)

	// FindActiveByVehicle returns the active session for a vehicle.
	// Returns domain.ErrNotFound if the vehicle has no active session.
	FindActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (domain.ParkingSession, error)

	// Settle records stop time and price on an active session.
	// Returns domain.ErrNotFound if the session does not exist for userID and
	// domain.ErrInvalidState if it is already settled; in that case nothing is written.
	Settle(ctx context.Context, userID, sessionID uuid.UUID, stoppedAt time.Time, price int64) (domain.ParkingSession, error)

	// ListByUserPaged returns one page of the user's sessions, newest first,
	// together with the total number of sessions matching the filter.
	ListByUserPaged(ctx context.Context, userID uuid.UUID, f domain.SessionFilter, p domain.PaginationParams) ([]domain.ParkingSession, int64, error)

	// ListSettledByUser returns every settled session of the user ordered by started_at.
	ListSettledByUser(ctx context.Context, userID uuid.UUID) ([]domain.ParkingSession, error)
}

// pgSessionRepo is the Postgres implementation of SessionRepo.
type pgSessionRepo struct {
	db db
}

// NewSessionRepo constructs a SessionRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewSessionRepo(db db) SessionRepo {
	return &pgSessionRepo{db: db}
}

const sessionColumns = `id, user_id, vehicle_id, zone_id, started_at, stopped_at, price, created_at, updated_at`

// Create relies on the partial unique index to reject a second active
// session for the same vehicle atomically.
func (r *pgSessionRepo) Create(ctx context.Context, s domain.ParkingSession) (domain.ParkingSession, error) {
	const q = `
		INSERT INTO parking_sessions (user_id, vehicle_id, zone_id, started_at)
		VALUES (@user_id, @vehicle_id, @zone_id, @started_at)
		RETURNING ` + sessionColumns

	args := pgx.NamedArgs{
		"user_id":    s.UserID,
		"vehicle_id": s.VehicleID,
		"zone_id":    s.ZoneID,
		"started_at": s.StartedAt,
	}

	result, err := scanSession(r.db.QueryRow(ctx, q, args))
	if err != nil {
		code, constraint := pgErrorCode(err)
		switch {
		case code == pgUniqueViolation && constraint == activeSessionIndex:
			return domain.ParkingSession{}, fmt.Errorf("repo.SessionRepo.Create: vehicle already has an active session: %w", domain.ErrConflict)
		case code == pgForeignKeyViolation:
			return domain.ParkingSession{}, fmt.Errorf("repo.SessionRepo.Create: %w", domain.ErrNotFound)
		}
		return domain.ParkingSession{}, fmt.Errorf("repo.SessionRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgSessionRepo) GetByID(ctx context.Context, userID, sessionID uuid.UUID) (domain.ParkingSession, error) {
	const q = `
		SELECT ` + sessionColumns + `
		FROM parking_sessions
		WHERE id = @id AND user_id = @user_id`

	result, err := scanSession(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": sessionID, "user_id": userID}))
	if err != nil {
		return domain.ParkingSession{}, fmt.Errorf("repo.SessionRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgSessionRepo) FindActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (domain.ParkingSession, error) {
	const q = `
		SELECT ` + sessionColumns + `
		FROM parking_sessions
		WHERE vehicle_id = @vehicle_id AND stopped_at IS NULL`

	result, err := scanSession(r.db.QueryRow(ctx, q, pgx.NamedArgs{"vehicle_id": vehicleID}))
	if err != nil {
		return domain.ParkingSession{}, fmt.Errorf("repo.SessionRepo.FindActiveByVehicle: %w", err)
	}
	return result, nil
}

// Settle is a compare-and-set on stopped_at IS NULL. When no row is updated
// a follow-up read tells a missing session apart from a settled one.
func (r *pgSessionRepo) Settle(ctx context.Context, userID, sessionID uuid.UUID, stoppedAt time.Time, price int64) (domain.ParkingSession, error) {
	const q = `
		UPDATE parking_sessions
		SET stopped_at = @stopped_at,
		    price      = @price,
		    updated_at = now()
		WHERE id = @id
		  AND user_id = @user_id
		  AND stopped_at IS NULL
		RETURNING ` + sessionColumns

	args := pgx.NamedArgs{
		"id":         sessionID,
		"user_id":    userID,
		"stopped_at": stoppedAt,
		"price":      price,
	}

	result, err := scanSession(r.db.QueryRow(ctx, q, args))
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.ParkingSession{}, fmt.Errorf("repo.SessionRepo.Settle: %w", err)
	}

	if _, err := r.GetByID(ctx, userID, sessionID); err != nil {
		return domain.ParkingSession{}, fmt.Errorf("repo.SessionRepo.Settle: %w", err)
	}
	return domain.ParkingSession{}, fmt.Errorf("repo.SessionRepo.Settle: session already settled: %w", domain.ErrInvalidState)
}

func (r *pgSessionRepo) ListByUserPaged(ctx context.Context, userID uuid.UUID, f domain.SessionFilter, p domain.PaginationParams) ([]domain.ParkingSession, int64, error) {
	const where = `
		WHERE user_id = @user_id
		  AND (@active::boolean IS NULL OR (stopped_at IS NULL) = @active::boolean)`

	const countQ = `SELECT COUNT(*) FROM parking_sessions` + where
	const listQ = `
		SELECT ` + sessionColumns + `
		FROM parking_sessions` + where + `
		ORDER BY started_at DESC, id
		LIMIT @limit OFFSET @offset`

	var active *bool
	if f.Status != nil {
		a := *f.Status == domain.SessionActive
		active = &a
	}

	args := pgx.NamedArgs{
		"user_id": userID,
		"active":  active,
		"limit":   min(max(p.Limit, 0), domain.MaxPageLimit),
		"offset":  p.Offset(),
	}

	var total int64
	if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.SessionRepo.ListByUserPaged: count: %w", err)
	}

	sessions, err := r.list(ctx, listQ, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.SessionRepo.ListByUserPaged: %w", err)
	}
	return sessions, total, nil
}

func (r *pgSessionRepo) ListSettledByUser(ctx context.Context, userID uuid.UUID) ([]domain.ParkingSession, error) {
	const q = `
		SELECT ` + sessionColumns + `
		FROM parking_sessions
		WHERE user_id = @user_id AND stopped_at IS NOT NULL
		ORDER BY started_at, id`

	sessions, err := r.list(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.SessionRepo.ListSettledByUser: %w", err)
	}
	return sessions, nil
}

func (r *pgSessionRepo) list(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.ParkingSession, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []domain.ParkingSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return sessions, nil
}

// scanSession maps a single row into a domain.ParkingSession, converting the
// nullable stopped_at / price pair into pointers.
func scanSession(s scanner) (domain.ParkingSession, error) {
	var (
		ps        domain.ParkingSession
		id        pgtype.UUID
		userID    pgtype.UUID
		vehicleID pgtype.UUID
		zoneID    pgtype.UUID
		stoppedAt pgtype.Timestamptz
		price     pgtype.Int8
	)

	err := s.Scan(&id, &userID, &vehicleID, &zoneID, &ps.StartedAt, &stoppedAt, &price, &ps.CreatedAt, &ps.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ParkingSession{}, domain.ErrNotFound
		}
		return domain.ParkingSession{}, err
	}

	ps.ID = uuid.UUID(id.Bytes)
	ps.UserID = uuid.UUID(userID.Bytes)
	ps.VehicleID = uuid.UUID(vehicleID.Bytes)
	ps.ZoneID = uuid.UUID(zoneID.Bytes)
	ps.StartedAt = ps.StartedAt.UTC()
	if stoppedAt.Valid {
		t := stoppedAt.Time.UTC()
		ps.StoppedAt = &t
	}
	if price.Valid {
		v := price.Int64
		ps.Price = &v
	}
	return ps, nil
}
