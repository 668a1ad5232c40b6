package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/parking-meter/internal/domain"
)

// Wire types. Field names and JSON tags mirror spec/openapi.yaml.

type healthResponse struct {
	Status string `json:"status"`
}

type zoneResponse struct {
	ID         openapi_types.UUID `json:"id"`
	Name       string             `json:"name"`
	HourlyRate int64              `json:"hourly_rate"`
}

type vehicleRef struct {
	ID    openapi_types.UUID `json:"id"`
	Plate string             `json:"plate"`
}

type vehicleResponse struct {
	ID        openapi_types.UUID `json:"id"`
	Plate     string             `json:"plate"`
	CreatedAt time.Time          `json:"created_at"`
}

type createVehicleRequest struct {
	Plate string `json:"plate"`
}

type startSessionRequest struct {
	VehicleID *openapi_types.UUID `json:"vehicle_id"`
	ZoneID    *openapi_types.UUID `json:"zone_id"`
}

type sessionResponse struct {
	ID          openapi_types.UUID `json:"id"`
	UserID      openapi_types.UUID `json:"user_id"`
	Vehicle     vehicleRef         `json:"vehicle"`
	Zone        zoneResponse       `json:"zone"`
	StartedAt   time.Time          `json:"started_at"`
	StoppedAt   *time.Time         `json:"stopped_at"`
	Price       int64              `json:"price"`
	PriceIsLive bool               `json:"price_is_live"`
	Status      string             `json:"status"`
}

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type sessionListResponse struct {
	Data       []sessionResponse `json:"data"`
	Pagination pagination        `json:"pagination"`
}

type exportRowResponse struct {
	SessionID     openapi_types.UUID `json:"session_id"`
	Plate         string             `json:"plate"`
	ZoneName      string             `json:"zone_name"`
	HourlyRate    int64              `json:"hourly_rate"`
	StartedAt     time.Time          `json:"started_at"`
	StoppedAt     time.Time          `json:"stopped_at"`
	BilledMinutes int64              `json:"billed_minutes"`
	Price         int64              `json:"price"`
}

func zoneToResponse(z domain.Zone) zoneResponse {
	return zoneResponse{ID: z.ID, Name: z.Name, HourlyRate: z.HourlyRate}
}

func vehicleToResponse(v domain.Vehicle) vehicleResponse {
	return vehicleResponse{ID: v.ID, Plate: v.Plate, CreatedAt: v.CreatedAt}
}

func sessionToResponse(v domain.SessionView) sessionResponse {
	return sessionResponse{
		ID:          v.Session.ID,
		UserID:      v.Session.UserID,
		Vehicle:     vehicleRef{ID: v.Vehicle.ID, Plate: v.Vehicle.Plate},
		Zone:        zoneToResponse(v.Zone),
		StartedAt:   v.Session.StartedAt,
		StoppedAt:   v.Session.StoppedAt,
		Price:       v.Price,
		PriceIsLive: v.PriceIsLive,
		Status:      string(v.Session.Status()),
	}
}

func exportRowToResponse(r domain.ExportRow) exportRowResponse {
	return exportRowResponse{
		SessionID:     r.SessionID,
		Plate:         r.Plate,
		ZoneName:      r.ZoneName,
		HourlyRate:    r.HourlyRate,
		StartedAt:     r.StartedAt,
		StoppedAt:     r.StoppedAt,
		BilledMinutes: r.BilledMinutes,
		Price:         r.Price,
	}
}
