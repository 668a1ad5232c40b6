package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/parking-meter/spec"
)

// NewRouter registers every API route on a fresh chi router.
//
// /healthz, /openapi.yaml and /metrics are public. Everything else runs
// behind authn, which must place the acting user id in the request context.
// metrics may be nil to disable the exposition endpoint.
func NewRouter(s *Server, authn func(http.Handler) http.Handler, metrics http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(authn)

		r.Get("/zones", s.ListZones)
		r.Get("/zones/{zoneId}", s.GetZone)

		r.Post("/vehicles", s.CreateVehicle)
		r.Get("/vehicles", s.ListVehicles)
		r.Get("/vehicles/{vehicleId}", s.GetVehicle)
		r.Delete("/vehicles/{vehicleId}", s.DeleteVehicle)
		r.Get("/vehicles/{vehicleId}/session", s.GetActiveSession)

		r.Post("/sessions", s.StartSession)
		r.Get("/sessions", s.ListSessions)
		r.Get("/sessions/export", s.ExportSessions)
		r.Get("/sessions/{sessionId}", s.GetSession)
		r.Post("/sessions/{sessionId}/stop", s.StopSession)
	})

	return r
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}
