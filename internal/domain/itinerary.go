package domain

// Leg is one contiguous ride on a single bus within an itinerary. A leg can
// span several consecutive stops of that bus. When both endpoints carry
// times, DurationMinutes is the wall-clock span from first departure to last
// arrival, dwell at the bus's intermediate stops included; otherwise it is
// the sum of the hop durations. DistanceKm is nil when either endpoint
// location lacks coordinates.
type Leg struct {
	BusID           int64      `json:"bus_id"`
	BusName         string     `json:"bus_name"`
	BusNumber       string     `json:"bus_number"`
	OriginStop      string     `json:"origin_stop"`
	DestinationStop string     `json:"destination_stop"`
	Departure       *TimeOfDay `json:"departure_time,omitempty"`
	Arrival         *TimeOfDay `json:"arrival_time,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	DistanceKm      *float64   `json:"distance_km,omitempty"`
}

// Itinerary is one end-to-end journey option. Every leg boundary is a
// vehicle change, so TransferCount is always len(Legs)-1.
// TotalDurationMinutes counts riding time plus the waits spent at transfer
// points; dwell at a bus's own intermediate stops is not part of it, so a
// single leg's wall-clock DurationMinutes can exceed the total.
type Itinerary struct {
	Legs                 []Leg    `json:"legs"`
	TotalDurationMinutes int      `json:"total_duration_minutes"`
	TotalDistanceKm      *float64 `json:"total_distance_km,omitempty"`
	TransferCount        int      `json:"transfer_count"`
}

// RouteQuery carries the parameters of a connecting-route search from the
// HTTP layer down to the routing service.
type RouteQuery struct {
	FromLocationID int64
	ToLocationID   int64
	MaxTransfers   int
	DepartAfter    *TimeOfDay
}
