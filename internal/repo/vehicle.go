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

// VehicleRepo defines the persistence operations for Vehicles.
// Every read and delete is scoped by the owning userID.
type VehicleRepo interface {
	// Create inserts a new vehicle and returns the persisted record.
	// Returns domain.ErrConflict if the owner already registered that plate.
	Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)

	// GetByID retrieves a vehicle by ID, scoped to the given owner.
	// Returns domain.ErrNotFound if no such vehicle belongs to userID.
	GetByID(ctx context.Context, userID, vehicleID uuid.UUID) (domain.Vehicle, error)

	// List returns all vehicles of the owner ordered by plate.
	List(ctx context.Context, userID uuid.UUID) ([]domain.Vehicle, error)

	// Delete removes a vehicle, scoped to the given owner.
	// Returns domain.ErrNotFound if it does not exist and domain.ErrConflict
	// if parking sessions still reference it.
	Delete(ctx context.Context, userID, vehicleID uuid.UUID) error
}

// pgVehicleRepo is the Postgres implementation of VehicleRepo.
type pgVehicleRepo struct {
	db db
}

// NewVehicleRepo constructs a VehicleRepo backed by the provided db connection.
func NewVehicleRepo(db db) VehicleRepo {
	return &pgVehicleRepo{db: db}
}

func (r *pgVehicleRepo) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	const q = `
		INSERT INTO vehicles (user_id, plate)
		VALUES (@user_id, @plate)
		RETURNING id, user_id, plate, created_at`

	args := pgx.NamedArgs{
		"user_id": v.UserID,
		"plate":   v.Plate,
	}

	result, err := scanVehicle(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgUniqueViolation {
			return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.Create: plate %q already registered: %w", v.Plate, domain.ErrConflict)
		}
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgVehicleRepo) GetByID(ctx context.Context, userID, vehicleID uuid.UUID) (domain.Vehicle, error) {
	const q = `
		SELECT id, user_id, plate, created_at
		FROM vehicles
		WHERE id = @id AND user_id = @user_id`

	result, err := scanVehicle(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": vehicleID, "user_id": userID}))
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgVehicleRepo) List(ctx context.Context, userID uuid.UUID) ([]domain.Vehicle, error) {
	const q = `
		SELECT id, user_id, plate, created_at
		FROM vehicles
		WHERE user_id = @user_id
		ORDER BY plate`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.VehicleRepo.List: %w", err)
	}
	defer rows.Close()

	vehicles := []domain.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.VehicleRepo.List: scan: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.VehicleRepo.List: rows: %w", err)
	}
	return vehicles, nil
}

func (r *pgVehicleRepo) Delete(ctx context.Context, userID, vehicleID uuid.UUID) error {
	const q = `DELETE FROM vehicles WHERE id = @id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": vehicleID, "user_id": userID})
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
			return fmt.Errorf("repo.VehicleRepo.Delete: vehicle has parking sessions: %w", domain.ErrConflict)
		}
		return fmt.Errorf("repo.VehicleRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.VehicleRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanVehicle(s scanner) (domain.Vehicle, error) {
	var (
		v      domain.Vehicle
		id     pgtype.UUID
		userID pgtype.UUID
	)
	if err := s.Scan(&id, &userID, &v.Plate, &v.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Vehicle{}, domain.ErrNotFound
		}
		return domain.Vehicle{}, err
	}
	v.ID = uuid.UUID(id.Bytes)
	v.UserID = uuid.UUID(userID.Bytes)
	return v, nil
}
