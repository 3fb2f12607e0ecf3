package domain

import "time"

// Location is a canonical place that buses travel between (a town, a
// junction, a named bus stand). Stops reference locations by ID; a stop
// whose crowdsourced name could not be resolved references none.
// Latitude and Longitude are nil when the location has not been geocoded.
type Location struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	LocalName string    `json:"local_name,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
