package middleware_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pkordes/parking-meter/internal/middleware"
)

const testOrigin = "http://localhost:5173"

// parkingAPI is a cut-down session API behind the production middleware
// order: RequestID, SlogLogger, CORS, body cap, then the authenticator on the
// session routes. starts counts requests that reached the start handler.
type parkingAPI struct {
	http.Handler
	starts int
}

func newParkingAPI(log *slog.Logger, limit int64) *parkingAPI {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	api := &parkingAPI{}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewSlogLogger(log))
	r.Use(middleware.NewCORSHandler([]string{testOrigin}))
	r.Use(middleware.NewMaxBodySizeHandler(limit))

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthenticator(testSecret))
		r.Post("/sessions", func(w http.ResponseWriter, r *http.Request) {
			api.starts++
			var req struct {
				VehicleID uuid.UUID `json:"vehicle_id"`
				ZoneID    uuid.UUID `json:"zone_id"`
			}
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					writeErr(w, http.StatusRequestEntityTooLarge, "payload_too_large")
					return
				}
				writeErr(w, http.StatusBadRequest, "bad_request")
				return
			}
			userID, _ := middleware.UserIDFromContext(r.Context())
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"user_id":    userID.String(),
				"vehicle_id": req.VehicleID.String(),
				"status":     "active",
			})
		})
		r.Get("/sessions/export", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", `attachment; filename="sessions.csv"`)
			_, _ = w.Write([]byte("session_id,plate\n"))
		})
		r.Get("/sessions/{sessionId}", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(chi.URLParam(r, "sessionId")))
		})
	})

	api.Handler = r
	return api
}

func writeErr(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"code": code}})
}

func bearer(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	return "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, validClaims(userID.String()))
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(rec *httptest.ResponseRecorder) string {
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	_ = json.NewDecoder(rec.Body).Decode(&body)
	return body.Error.Code
}
