package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/perundhu/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of the CSV
// schedule export.
var csvHeaders = []string{
	"bus_id", "bus_name", "bus_number", "from_location", "to_location",
	"departure_time", "arrival_time", "active",
	"stop_order", "stop_name", "stop_location",
	"stop_arrival_time", "stop_departure_time",
}

// ExportSchedules handles GET /api/v1/export/schedules.
// It returns a flat table of every bus and stop combination. Use
// ?format=csv to receive CSV; default is JSON.
func (s *Server) ExportSchedules(w http.ResponseWriter, r *http.Request) {
	rows, err := s.exports.Export(r.Context())
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeCSV(w, rows)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// writeCSV encodes export rows as CSV with a header row. The export is
// buffered so Content-Length is known before the first byte goes out.
func writeCSV(w http.ResponseWriter, rows []domain.ScheduleExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck — bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, row := range rows {
		//nolint:errcheck
		cw.Write(csvRecord(row))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="schedules.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// csvRecord encodes one export row as a flat string slice in csvHeaders
// order. Missing times are already empty strings.
func csvRecord(r domain.ScheduleExportRow) []string {
	return []string{
		strconv.FormatInt(r.BusID, 10),
		r.BusName,
		r.BusNumber,
		r.FromLocation,
		r.ToLocation,
		r.Departure,
		r.Arrival,
		strconv.FormatBool(r.Active),
		strconv.Itoa(r.StopOrder),
		r.StopName,
		r.StopLocation,
		r.StopArrival,
		r.StopDeparture,
	}
}
