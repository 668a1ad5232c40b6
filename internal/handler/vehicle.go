package handler

import (
	"net/http"

	"github.com/pkordes/parking-meter/internal/middleware"
)

// CreateVehicle handles POST /vehicles.
func (s *Server) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}

	var body createVehicleRequest
	if !decodeBody(w, r, &body) {
		return
	}

	v, err := s.vehicles.Create(r.Context(), userID, body.Plate)
	if err != nil {
		s.fail(w, r, err, "vehicle")
		return
	}
	writeJSON(w, http.StatusCreated, vehicleToResponse(v))
}

// ListVehicles handles GET /vehicles.
func (s *Server) ListVehicles(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}

	vehicles, err := s.vehicles.List(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err, "vehicle")
		return
	}

	out := make([]vehicleResponse, len(vehicles))
	for i, v := range vehicles {
		out[i] = vehicleToResponse(v)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetVehicle handles GET /vehicles/{vehicleId}.
func (s *Server) GetVehicle(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	vehicleID, err := pathUUID(r, "vehicleId")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	v, err := s.vehicles.GetByID(r.Context(), userID, vehicleID)
	if err != nil {
		s.fail(w, r, err, "vehicle")
		return
	}
	writeJSON(w, http.StatusOK, vehicleToResponse(v))
}

// DeleteVehicle handles DELETE /vehicles/{vehicleId}.
// A vehicle that still has parking sessions cannot be deleted (409).
func (s *Server) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	vehicleID, err := pathUUID(r, "vehicleId")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	if err := s.vehicles.Delete(r.Context(), userID, vehicleID); err != nil {
		s.fail(w, r, err, "vehicle")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
