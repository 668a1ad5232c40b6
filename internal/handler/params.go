package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/parking-meter/internal/domain"
)

// pathUUID binds a {name} path segment as a UUID using the same "simple"
// style the OpenAPI document declares.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return id, nil
}

// listSessionsParams are the optional query parameters of GET /sessions.
type listSessionsParams struct {
	Page   *int
	Limit  *int
	Status *string
}

func bindListSessionsParams(r *http.Request) (listSessionsParams, error) {
	var p listSessionsParams
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &p.Page); err != nil {
		return p, fmt.Errorf("invalid page: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &p.Limit); err != nil {
		return p, fmt.Errorf("invalid limit: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "status", q, &p.Status); err != nil {
		return p, fmt.Errorf("invalid status: %w", err)
	}
	return p, nil
}

// filter converts the status query parameter into a domain filter.
func (p listSessionsParams) filter() (domain.SessionFilter, error) {
	if p.Status == nil {
		return domain.SessionFilter{}, nil
	}
	st := domain.SessionStatus(*p.Status)
	if st != domain.SessionActive && st != domain.SessionSettled {
		return domain.SessionFilter{}, fmt.Errorf("status must be %q or %q", domain.SessionActive, domain.SessionSettled)
	}
	return domain.SessionFilter{Status: &st}, nil
}

// exportFormat is the ?format= value of GET /sessions/export.
type exportFormat string

const (
	formatJSON exportFormat = "json"
	formatCSV  exportFormat = "csv"
	formatXLSX exportFormat = "xlsx"
)

func bindExportFormat(r *http.Request) (exportFormat, error) {
	var f *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &f); err != nil {
		return "", fmt.Errorf("invalid format: %w", err)
	}
	if f == nil {
		return formatJSON, nil
	}
	switch exportFormat(*f) {
	case formatJSON, formatCSV, formatXLSX:
		return exportFormat(*f), nil
	}
	return "", fmt.Errorf("format must be one of json, csv, xlsx")
}

// decodeBody decodes a JSON request body into dst, rejecting unknown fields
// and trailing data. It writes the error response itself and reports whether
// the handler may continue.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
			return false
		}
		requestError(w, "malformed request body: "+err.Error())
		return false
	}
	if dec.More() {
		requestError(w, "malformed request body: unexpected data after JSON object")
		return false
	}
	return true
}
