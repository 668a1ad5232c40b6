package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/parking-meter/internal/domain"
)

// ZoneRepo is the rate table: it maps a zone to its hourly price.
// Zones are managed outside the session lifecycle; the lifecycle only reads them.
type ZoneRepo interface {
	// GetByID retrieves a single zone by its UUID primary key.
	// Returns domain.ErrNotFound if no zone with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Zone, error)

	// List returns all zones ordered by name.
	List(ctx context.Context) ([]domain.Zone, error)

	// Upsert inserts a zone with a caller-supplied ID, or overwrites the name
	// and rate of the existing zone with that ID.
	Upsert(ctx context.Context, zone domain.Zone) (domain.Zone, error)
}

// pgZoneRepo is the Postgres implementation of ZoneRepo.
type pgZoneRepo struct {
	db db
}

// NewZoneRepo constructs a ZoneRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewZoneRepo(db db) ZoneRepo {
	return &pgZoneRepo{db: db}
}

func (r *pgZoneRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Zone, error) {
	const q = `
		SELECT id, name, hourly_rate, created_at
		FROM zones
		WHERE id = @id`

	z, err := scanZone(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Zone{}, fmt.Errorf("repo.ZoneRepo.GetByID: %w", err)
	}
	return z, nil
}

func (r *pgZoneRepo) List(ctx context.Context) ([]domain.Zone, error) {
	const q = `
		SELECT id, name, hourly_rate, created_at
		FROM zones
		ORDER BY name`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.ZoneRepo.List: %w", err)
	}
	defer rows.Close()

	zones := []domain.Zone{}
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ZoneRepo.List: scan: %w", err)
		}
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ZoneRepo.List: rows: %w", err)
	}
	return zones, nil
}

func (r *pgZoneRepo) Upsert(ctx context.Context, zone domain.Zone) (domain.Zone, error) {
	const q = `
		INSERT INTO zones (id, name, hourly_rate)
		VALUES (@id, @name, @hourly_rate)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, hourly_rate = EXCLUDED.hourly_rate
		RETURNING id, name, hourly_rate, created_at`

	args := pgx.NamedArgs{
		"id":          zone.ID,
		"name":        zone.Name,
		"hourly_rate": zone.HourlyRate,
	}

	z, err := scanZone(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Zone{}, fmt.Errorf("repo.ZoneRepo.Upsert: %w", err)
	}
	return z, nil
}

func scanZone(s scanner) (domain.Zone, error) {
	var (
		z  domain.Zone
		id pgtype.UUID
	)
	if err := s.Scan(&id, &z.Name, &z.HourlyRate, &z.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Zone{}, domain.ErrNotFound
		}
		return domain.Zone{}, err
	}
	z.ID = uuid.UUID(id.Bytes)
	return z, nil
}
