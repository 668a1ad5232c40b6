package handler

import "net/http"

// ListZones handles GET /zones.
func (s *Server) ListZones(w http.ResponseWriter, r *http.Request) {
	zones, err := s.zones.List(r.Context())
	if err != nil {
		s.fail(w, r, err, "zone")
		return
	}

	out := make([]zoneResponse, len(zones))
	for i, z := range zones {
		out[i] = zoneToResponse(z)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetZone handles GET /zones/{zoneId}.
func (s *Server) GetZone(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "zoneId")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	zone, err := s.zones.GetByID(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "zone")
		return
	}
	writeJSON(w, http.StatusOK, zoneToResponse(zone))
}
