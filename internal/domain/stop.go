package domain

// Stop is one point on a bus's route. StopOrder gives its position within
// the route, ascending and unique per bus. LocationID is zero when the
// crowdsourced stop could not be resolved to a known location; such stops
// contribute nothing to the route graph.
// LocationName, Latitude and Longitude are denormalized from the locations
// table when the repo loads stops for graph builds.
type Stop struct {
	ID           int64      `json:"id"`
	BusID        int64      `json:"bus_id"`
	LocationID   int64      `json:"location_id,omitempty"`
	Name         string     `json:"name,omitempty"`
	LocationName string     `json:"location_name,omitempty"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	Arrival      *TimeOfDay `json:"arrival_time,omitempty"`
	Departure    *TimeOfDay `json:"departure_time,omitempty"`
	StopOrder    int        `json:"stop_order"`
}

// DisplayName returns the resolved location name, falling back to the raw
// crowdsourced stop name when no location is linked.
func (s Stop) DisplayName() string {
	if s.LocationName != "" {
		return s.LocationName
	}
	return s.Name
}
