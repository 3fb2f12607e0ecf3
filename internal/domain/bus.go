// Package domain contains the core data types for the Perundhu journey
// planner. It depends only on the standard library and is imported by every
// other internal package (repo, routing, service, handler).
package domain

import "time"

// Bus is a single scheduled vehicle run between two locations. Stops belong
// to a bus and describe the points of its route in order. Two runs over the
// same roads at different times are distinct buses with distinct IDs.
// Departure and Arrival are the endpoint times; nil when the crowdsourced
// schedule does not include them.
type Bus struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Number         string     `json:"number"`
	FromLocationID int64      `json:"from_location_id"`
	ToLocationID   int64      `json:"to_location_id"`
	Departure      *TimeOfDay `json:"departure_time,omitempty"`
	Arrival        *TimeOfDay `json:"arrival_time,omitempty"`
	Active         bool       `json:"active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
