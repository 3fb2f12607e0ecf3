// Package routing builds the in-memory transit graph from crowdsourced
// schedules and searches it for connecting journeys. The graph is rebuilt
// as a whole and cached; nothing in this package touches the database
// directly.
package routing

import (
	"time"

	"github.com/google/uuid"

	"github.com/perundhu/backend/internal/domain"
)

// defaultSegmentMinutes is assumed for a hop whose stops carry no usable
// timing information.
const defaultSegmentMinutes = 30

// Place is one end of a segment: the resolved location plus the display
// name and coordinates denormalized onto the stop rows at load time.
type Place struct {
	LocationID int64
	Name       string
	Lat        *float64
	Lon        *float64
}

// Segment is a directed edge: one bus travelling between two consecutive
// resolved stops on its route. Departure is when the bus leaves From,
// Arrival when it reaches To; either is nil when the crowdsourced schedule
// lacks it.
type Segment struct {
	BusID           int64
	BusName         string
	BusNumber       string
	From            Place
	To              Place
	Departure       *domain.TimeOfDay
	Arrival         *domain.TimeOfDay
	DurationMinutes int
}

// Graph is an adjacency-list snapshot of the transit network keyed by
// origin location ID. A snapshot is never mutated after BuildGraph returns,
// so any number of searches can share one without locking.
type Graph struct {
	SnapshotID uuid.UUID
	BuiltAt    time.Time

	adj   map[int64][]Segment
	edges int
}

// BuildGraph assembles a snapshot from active buses and their stops, keyed
// by bus ID and ordered by stop sequence. Each pair of consecutive stops
// with resolved locations becomes one directed segment. A stop without a
// resolved location yields no segment on either side, splitting the bus's
// chain at that point rather than bridging across it.
func BuildGraph(buses []domain.Bus, stopsByBus map[int64][]domain.Stop) *Graph {
	g := &Graph{
		SnapshotID: uuid.New(),
		BuiltAt:    time.Now(),
		adj:        make(map[int64][]Segment),
	}
	for _, bus := range buses {
		stops := stopsByBus[bus.ID]
		for i := 0; i+1 < len(stops); i++ {
			from, to := stops[i], stops[i+1]
			if from.LocationID == 0 || to.LocationID == 0 {
				continue
			}
			seg := Segment{
				BusID:           bus.ID,
				BusName:         bus.Name,
				BusNumber:       bus.Number,
				From:            place(from),
				To:              place(to),
				Departure:       from.Departure,
				Arrival:         to.Arrival,
				DurationMinutes: segmentMinutes(from.Departure, to.Arrival),
			}
			g.adj[from.LocationID] = append(g.adj[from.LocationID], seg)
			g.edges++
		}
	}
	return g
}

func place(s domain.Stop) Place {
	return Place{
		LocationID: s.LocationID,
		Name:       s.DisplayName(),
		Lat:        s.Latitude,
		Lon:        s.Longitude,
	}
}

// segmentMinutes is the scheduled travel time from dep to arr. An arrival
// earlier on the clock than the departure is an overnight hop and wraps
// forward a day. Missing times fall back to defaultSegmentMinutes.
func segmentMinutes(dep, arr *domain.TimeOfDay) int {
	if dep == nil || arr == nil {
		return defaultSegmentMinutes
	}
	return dep.MinutesUntil(*arr)
}

// Outgoing returns the segments departing loc. The slice is shared with the
// graph and must not be modified.
func (g *Graph) Outgoing(loc int64) []Segment {
	return g.adj[loc]
}

// NodeCount returns the number of locations with at least one outgoing segment.
func (g *Graph) NodeCount() int { return len(g.adj) }

// EdgeCount returns the total number of segments.
func (g *Graph) EdgeCount() int { return g.edges }
