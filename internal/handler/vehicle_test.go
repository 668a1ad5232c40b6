package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/parking-meter/internal/domain"
)

type vehicleJSON struct {
	ID    uuid.UUID `json:"id"`
	Plate string    `json:"plate"`
}

func TestCreateVehicle_201(t *testing.T) {
	v := testVehicle()
	svc := &mockVehicleServicer{
		create: func(_ context.Context, userID uuid.UUID, plate string) (domain.Vehicle, error) {
			require.Equal(t, testUserID, userID)
			require.Equal(t, " ab123cd ", plate)
			return v, nil
		},
	}

	rec := do(t, newHTTPHandler(deps{vehicles: svc}), http.MethodPost, "/vehicles", jsonBody(t, map[string]string{"plate": " ab123cd "}))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp vehicleJSON
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, v.ID, resp.ID)
	assert.Equal(t, "AB123CD", resp.Plate)
}

func TestCreateVehicle_422_ValidationError(t *testing.T) {
	svc := &mockVehicleServicer{
		create: func(context.Context, uuid.UUID, string) (domain.Vehicle, error) {
			return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Create: %w", fmt.Errorf("%w: plate is required", domain.ErrValidation))
		},
	}

	rec := do(t, newHTTPHandler(deps{vehicles: svc}), http.MethodPost, "/vehicles", jsonBody(t, map[string]string{"plate": ""}))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "validation_error", e.Error.Code)
	assert.Equal(t, "plate is required", e.Error.Message)
}

func TestCreateVehicle_409_DuplicatePlate(t *testing.T) {
	svc := &mockVehicleServicer{
		create: func(context.Context, uuid.UUID, string) (domain.Vehicle, error) {
			return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Create: repo.VehicleRepo.Create: plate \"AB123CD\" already registered: %w", domain.ErrConflict)
		},
	}

	rec := do(t, newHTTPHandler(deps{vehicles: svc}), http.MethodPost, "/vehicles", jsonBody(t, map[string]string{"plate": "AB123CD"}))

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, `plate "AB123CD" already registered`, decodeError(t, rec).Error.Message)
}

func TestListVehicles_200(t *testing.T) {
	svc := &mockVehicleServicer{
		list: func(context.Context, uuid.UUID) ([]domain.Vehicle, error) {
			return []domain.Vehicle{testVehicle(), testVehicle()}, nil
		},
	}

	rec := do(t, newHTTPHandler(deps{vehicles: svc}), http.MethodGet, "/vehicles", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []vehicleJSON
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp, 2)
}

func TestGetVehicle_404(t *testing.T) {
	svc := &mockVehicleServicer{
		getByID: func(context.Context, uuid.UUID, uuid.UUID) (domain.Vehicle, error) {
			return domain.Vehicle{}, fmt.Errorf("service.VehicleService.GetByID: %w", domain.ErrNotFound)
		},
	}

	rec := do(t, newHTTPHandler(deps{vehicles: svc}), http.MethodGet, "/vehicles/"+uuid.NewString(), nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "vehicle not found", decodeError(t, rec).Error.Message)
}

func TestDeleteVehicle_204(t *testing.T) {
	id := uuid.New()
	called := false
	svc := &mockVehicleServicer{
		delete: func(_ context.Context, _ uuid.UUID, vehicleID uuid.UUID) error {
			called = true
			require.Equal(t, id, vehicleID)
			return nil
		},
	}

	rec := do(t, newHTTPHandler(deps{vehicles: svc}), http.MethodDelete, "/vehicles/"+id.String(), nil)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, called)
}

func TestDeleteVehicle_409_HasSessions(t *testing.T) {
	svc := &mockVehicleServicer{
		delete: func(context.Context, uuid.UUID, uuid.UUID) error {
			return fmt.Errorf("service.VehicleService.Delete: repo.VehicleRepo.Delete: vehicle has parking sessions: %w", domain.ErrConflict)
		},
	}

	rec := do(t, newHTTPHandler(deps{vehicles: svc}), http.MethodDelete, "/vehicles/"+uuid.NewString(), nil)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "vehicle has parking sessions", decodeError(t, rec).Error.Message)
}
