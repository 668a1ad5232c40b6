package handler

import (
	"net/http"

	"github.com/pkordes/parking-meter/internal/domain"
	"github.com/pkordes/parking-meter/internal/middleware"
)

// StartSession handles POST /sessions.
// Returns 409 conflict when the vehicle already has an active session.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}

	var body startSessionRequest
	if !decodeBody(w, r, &body) {
		return
	}
	switch {
	case body.VehicleID == nil:
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "vehicle_id is required")
		return
	case body.ZoneID == nil:
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "zone_id is required")
		return
	}

	view, err := s.sessions.Start(r.Context(), userID, *body.VehicleID, *body.ZoneID)
	if err != nil {
		s.fail(w, r, err, "vehicle or zone")
		return
	}
	writeJSON(w, http.StatusCreated, sessionToResponse(view))
}

// ListSessions handles GET /sessions.
// Supports ?page= and ?limit= (defaults: page=1, limit=20, max=100) and
// ?status=active|settled.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}

	params, err := bindListSessionsParams(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	filter, err := params.filter()
	if err != nil {
		requestError(w, err.Error())
		return
	}
	page := domain.NewPaginationParams(params.Page, params.Limit)

	views, total, err := s.sessions.ListPaged(r.Context(), userID, filter, page)
	if err != nil {
		s.fail(w, r, err, "session")
		return
	}

	data := make([]sessionResponse, len(views))
	for i, v := range views {
		data[i] = sessionToResponse(v)
	}
	writeJSON(w, http.StatusOK, sessionListResponse{
		Data: data,
		Pagination: pagination{
			Page:  page.Page,
			Limit: page.Limit,
			Total: total,
		},
	})
}

// GetSession handles GET /sessions/{sessionId}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	sessionID, err := pathUUID(r, "sessionId")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	view, err := s.sessions.Get(r.Context(), userID, sessionID)
	if err != nil {
		s.fail(w, r, err, "session")
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(view))
}

// StopSession handles POST /sessions/{sessionId}/stop.
// Returns 409 invalid_state when the session is already settled.
func (s *Server) StopSession(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	sessionID, err := pathUUID(r, "sessionId")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	view, err := s.sessions.Stop(r.Context(), userID, sessionID)
	if err != nil {
		s.fail(w, r, err, "session")
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(view))
}

// GetActiveSession handles GET /vehicles/{vehicleId}/session.
// Returns 404 when the vehicle has no active session.
func (s *Server) GetActiveSession(w http.ResponseWriter, r *http.Request) {
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

	view, err := s.sessions.ActiveForVehicle(r.Context(), userID, vehicleID)
	if err != nil {
		s.fail(w, r, err, "active session")
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(view))
}
