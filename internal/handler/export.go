package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pkordes/parking-meter/internal/domain"
	"github.com/pkordes/parking-meter/internal/middleware"
)

// exportHeaders are the column names of the CSV and XLSX renderings.
var exportHeaders = []string{
	"session_id", "plate", "zone_name", "hourly_rate",
	"started_at", "stopped_at", "billed_minutes", "price",
}

const exportSheet = "sessions"

// ExportSessions handles GET /sessions/export.
// It returns every settled session of the acting user as a flat table.
// ?format=csv and ?format=xlsx select the download formats; default is JSON.
func (s *Server) ExportSessions(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	format, err := bindExportFormat(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	rows, err := s.export.Export(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err, "session")
		return
	}

	switch format {
	case formatCSV:
		writeDownload(w, "text/csv", "sessions.csv", buildCSV(rows))
	case formatXLSX:
		body, err := buildXLSX(rows)
		if err != nil {
			s.fail(w, r, fmt.Errorf("handler.ExportSessions: xlsx: %w", err), "")
			return
		}
		writeDownload(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "sessions.xlsx", body)
	default:
		out := make([]exportRowResponse, len(rows))
		for i, row := range rows {
			out[i] = exportRowToResponse(row)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeDownload(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// buildCSV encodes rows as CSV with a header line.
func buildCSV(rows []domain.ExportRow) []byte {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	// bytes.Buffer never fails a write, so csv.Writer errors are impossible here.
	_ = cw.Write(exportHeaders)
	for _, row := range rows {
		_ = cw.Write(exportRecord(row))
	}
	cw.Flush()
	return buf.Bytes()
}

// buildXLSX renders rows into a single-sheet workbook. Numeric columns are
// written as numbers so spreadsheet formulas work on them.
func buildXLSX(rows []domain.ExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", exportSheet)

	header := make([]any, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{
			row.SessionID.String(),
			row.Plate,
			row.ZoneName,
			row.HourlyRate,
			row.StartedAt.UTC().Format(time.RFC3339),
			row.StoppedAt.UTC().Format(time.RFC3339),
			row.BilledMinutes,
			row.Price,
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// exportRecord encodes one row as a flat string slice in exportHeaders order.
func exportRecord(r domain.ExportRow) []string {
	return []string{
		r.SessionID.String(),
		r.Plate,
		r.ZoneName,
		strconv.FormatInt(r.HourlyRate, 10),
		r.StartedAt.UTC().Format(time.RFC3339),
		r.StoppedAt.UTC().Format(time.RFC3339),
		strconv.FormatInt(r.BilledMinutes, 10),
		strconv.FormatInt(r.Price, 10),
	}
}
