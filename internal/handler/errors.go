package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/parking-meter/internal/domain"
	"github.com/pkordes/parking-meter/internal/middleware"
)

// errorResponse is the envelope every non-2xx JSON response uses.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}

// requestError reports a request rejected before reaching the service layer,
// e.g. a malformed body or an unparsable path parameter.
func requestError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "validation_error", message)
}

// fail maps a service error onto the HTTP error contract. resource names what
// was being looked up so a 404 can say "session not found". Unexpected errors
// are logged and reported as 500 without leaking their text.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, resource string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", resource+" not found")
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", validationMessage(err))
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", reasonFor(err, domain.ErrConflict))
	case errors.Is(err, domain.ErrInvalidState):
		writeError(w, http.StatusConflict, "invalid_state", reasonFor(err, domain.ErrInvalidState))
	case errors.Is(err, middleware.ErrMissingIdentity):
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	default:
		s.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// validationMessage extracts the human-readable part from a wrapped
// validation error.
// e.g. "service.VehicleService.Create: validation error: plate is required" → "plate is required"
func validationMessage(err error) string {
	msg := err.Error()
	marker := domain.ErrValidation.Error() + ": "
	if i := strings.Index(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}

// reasonFor extracts the detail written just before a trailing sentinel.
// e.g. "service.SessionService.Stop: session already settled: invalid state" → "session already settled"
// When no detail was given the sentinel's own text is used.
func reasonFor(err, sentinel error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	if !strings.Contains(msg, " ") {
		return sentinel.Error()
	}
	return msg
}
