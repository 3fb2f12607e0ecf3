package routing

import (
	"container/heap"

	"github.com/perundhu/backend/internal/domain"
)

// Options are the tunables of the path search. Use DefaultOptions as the
// base and override individual knobs; zero values are taken literally.
type Options struct {
	// TransferPenaltyMinutes is added to a path's cost once per transfer,
	// steering the search toward fewer vehicle changes.
	TransferPenaltyMinutes float64
	// PruneFactor discards an expansion whose cost exceeds this multiple of
	// the best cost already recorded at the same location.
	PruneFactor float64
	// MaxJourneyMinutes caps a path's total duration, transfer waits included.
	MaxJourneyMinutes int
	// MinTransferWaitMinutes and MaxTransferWaitMinutes bound the layover
	// accepted at a vehicle change when both timings are known.
	MinTransferWaitMinutes int
	MaxTransferWaitMinutes int
	// DefaultTransferWaitMinutes is charged for a vehicle change with a
	// missing timing on either side; such changes are always accepted.
	DefaultTransferWaitMinutes int
	// ResultCap bounds the number of itineraries returned to a caller. The
	// search collects up to twice this many candidates so the diversity
	// filter has alternatives to choose from.
	ResultCap int
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		TransferPenaltyMinutes:     30,
		PruneFactor:                1.5,
		MaxJourneyMinutes:          12 * 60,
		MinTransferWaitMinutes:     10,
		MaxTransferWaitMinutes:     120,
		DefaultTransferWaitMinutes: 15,
		ResultCap:                  10,
	}
}

// DefaultMaxTransfers is the transfer budget applied when a query does not
// name one. Journeys needing more than two changes are rarely worth riding.
const DefaultMaxTransfers = 2

// SearchParams identify one connecting-route search.
type SearchParams struct {
	From         int64
	To           int64
	MaxTransfers int
}

// Path is one complete candidate journey. DurationMinutes sums segment
// travel times and transfer waits. Cost is the ranking weight: the duration
// plus TransferPenaltyMinutes per transfer.
type Path struct {
	Segs            []Segment
	DurationMinutes int
	Transfers       int
	Cost            float64
}

// FirstDeparture returns the departure time of the path's first segment,
// nil when the path is empty or the first segment is untimed.
func (p Path) FirstDeparture() *domain.TimeOfDay {
	if len(p.Segs) == 0 {
		return nil
	}
	return p.Segs[0].Departure
}

// FindPaths runs a best-first search from p.From to p.To and returns up to
// 2*ResultCap candidate paths in ascending cost order. RankPaths narrows
// them to the final result set.
//
// States are expanded cheapest first, so goal states are popped in cost
// order and the result needs no further sorting. Successor states copy the
// parent's path and bookkeeping; two states never share mutable data.
func FindPaths(g *Graph, p SearchParams, opts Options) []Path {
	if g == nil || p.From == p.To || p.MaxTransfers < 0 {
		return nil
	}
	maxCandidates := 2 * opts.ResultCap

	queue := &stateQueue{{
		loc:     p.From,
		visited: map[int64]bool{p.From: true},
		used:    map[int64]bool{},
	}}
	heap.Init(queue)

	best := make(map[int64]float64)
	var found []Path

	for queue.Len() > 0 && len(found) < maxCandidates {
		st := heap.Pop(queue).(*searchState)

		if st.loc == p.To {
			found = append(found, Path{
				Segs:            st.segs,
				DurationMinutes: st.duration,
				Transfers:       st.transfers,
				Cost:            st.cost,
			})
			continue
		}

		for _, seg := range g.Outgoing(st.loc) {
			next, ok := extend(st, seg, p, opts)
			if !ok {
				continue
			}
			if b, seen := best[next.loc]; !seen || next.cost < b {
				best[next.loc] = next.cost
			} else if next.cost > b*opts.PruneFactor {
				continue
			}
			heap.Push(queue, next)
		}
	}

	return found
}

// searchState is one partial path during the search.
type searchState struct {
	loc       int64
	segs      []Segment
	visited   map[int64]bool // location IDs on the path, origin included
	used      map[int64]bool // bus IDs boarded so far
	duration  int
	transfers int
	cost      float64
}

// extend grows st by seg, returning the successor state. It rejects the
// move when it would revisit a location, re-board a bus the path already
// left, fall outside the transfer window, or break the transfer or duration
// budgets.
func extend(st *searchState, seg Segment, p SearchParams, opts Options) (*searchState, bool) {
	if st.visited[seg.To.LocationID] {
		return nil, false
	}

	wait := 0
	transfer := false
	if n := len(st.segs); n > 0 && seg.BusID != st.segs[n-1].BusID {
		transfer = true
		if st.used[seg.BusID] {
			// Re-boarding a bus this path rode earlier and left again is
			// never a sensible journey.
			return nil, false
		}
		var ok bool
		wait, ok = transferWait(st.segs[n-1].Arrival, seg.Departure, opts)
		if !ok {
			return nil, false
		}
	}

	transfers := st.transfers
	if transfer {
		transfers++
	}
	if transfers > p.MaxTransfers {
		return nil, false
	}

	duration := st.duration + wait + seg.DurationMinutes
	if duration > opts.MaxJourneyMinutes {
		return nil, false
	}

	return &searchState{
		loc:       seg.To.LocationID,
		segs:      appendSeg(st.segs, seg),
		visited:   copyWith(st.visited, seg.To.LocationID),
		used:      copyWith(st.used, seg.BusID),
		duration:  duration,
		transfers: transfers,
		cost:      float64(duration) + float64(transfers)*opts.TransferPenaltyMinutes,
	}, true
}

// transferWait is the layover between arriving on one bus and departing on
// the next. With both timings known the wait must fall inside the
// configured window, measuring forward and wrapping past midnight. With
// either timing missing the default wait applies and the transfer is
// accepted unconditionally.
func transferWait(arr, dep *domain.TimeOfDay, opts Options) (int, bool) {
	if arr == nil || dep == nil {
		return opts.DefaultTransferWaitMinutes, true
	}
	wait := arr.MinutesUntil(*dep)
	if wait < opts.MinTransferWaitMinutes || wait > opts.MaxTransferWaitMinutes {
		return 0, false
	}
	return wait, true
}

// appendSeg copies segs into a fresh slice and appends seg. Successor
// states must never share a backing array with their parent.
func appendSeg(segs []Segment, seg Segment) []Segment {
	out := make([]Segment, len(segs)+1)
	copy(out, segs)
	out[len(segs)] = seg
	return out
}

func copyWith(set map[int64]bool, id int64) map[int64]bool {
	out := make(map[int64]bool, len(set)+1)
	for k := range set {
		out[k] = true
	}
	out[id] = true
	return out
}

// stateQueue is a min-heap of search states ordered by cost.
type stateQueue []*searchState

func (q stateQueue) Len() int           { return len(q) }
func (q stateQueue) Less(i, j int) bool { return q[i].cost < q[j].cost }
func (q stateQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *stateQueue) Push(x any) {
	*q = append(*q, x.(*searchState))
}

func (q *stateQueue) Pop() any {
	old := *q
	n := len(old)
	st := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return st
}
