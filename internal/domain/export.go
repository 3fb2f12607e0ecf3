package domain

// ScheduleExportRow is a single row in the full schedule export.
// It is a flat, denormalized view: one row per stop, with bus fields repeated
// for every stop on that bus. Buses with no recorded stops yield one row with
// zero values for all stop fields.
//
// Times are pre-formatted "HH:MM" strings, empty when the schedule does not
// include them, so the handler can write rows straight to CSV.
type ScheduleExportRow struct {
	// Bus fields — repeated for every stop on the bus.
	BusID        int64  `json:"bus_id"`
	BusName      string `json:"bus_name"`
	BusNumber    string `json:"bus_number"`
	FromLocation string `json:"from_location"`
	ToLocation   string `json:"to_location"`
	Departure    string `json:"departure_time,omitempty"`
	Arrival      string `json:"arrival_time,omitempty"`
	Active       bool   `json:"active"`

	// Stop fields — zero values when the bus has no stops.
	StopOrder     int    `json:"stop_order,omitempty"`
	StopName      string `json:"stop_name,omitempty"`
	StopLocation  string `json:"stop_location,omitempty"`
	StopArrival   string `json:"stop_arrival_time,omitempty"`
	StopDeparture string `json:"stop_departure_time,omitempty"`
}
