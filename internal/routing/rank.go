package routing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/perundhu/backend/internal/domain"
)

// RankPaths narrows cost-ordered candidates down to the final result set.
//
// When more candidates than ResultCap exist, a first pass keeps the
// cheapest path of each distinct shape and a second pass backfills the
// remaining slots in cost order, so near-duplicate paths cannot crowd out
// genuinely different ones. A depart-after cutoff then drops candidates
// leaving strictly before the requested time (candidates with no recorded
// first departure are kept). Survivors are ordered by transfer count, then
// total duration.
func RankPaths(paths []Path, departAfter *domain.TimeOfDay, opts Options) []Path {
	sorted := make([]Path, len(paths))
	copy(sorted, paths)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Cost < sorted[j].Cost })

	kept := sorted
	if opts.ResultCap > 0 && len(sorted) > opts.ResultCap {
		kept = diversify(sorted, opts.ResultCap)
	}

	if departAfter != nil {
		kept = dropDepartingBefore(kept, *departAfter)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Transfers != kept[j].Transfers {
			return kept[i].Transfers < kept[j].Transfers
		}
		return kept[i].DurationMinutes < kept[j].DurationMinutes
	})

	if opts.ResultCap > 0 && len(kept) > opts.ResultCap {
		kept = kept[:opts.ResultCap]
	}
	return kept
}

// diversify keeps the cheapest path per signature first, then backfills up
// to limit in cost order regardless of signature repetition.
func diversify(sorted []Path, limit int) []Path {
	kept := make([]Path, 0, limit)
	seen := make(map[string]bool)
	var dupes []Path

	for _, p := range sorted {
		if len(kept) == limit {
			break
		}
		sig := signature(p)
		if seen[sig] {
			dupes = append(dupes, p)
			continue
		}
		seen[sig] = true
		kept = append(kept, p)
	}
	for _, p := range dupes {
		if len(kept) == limit {
			break
		}
		kept = append(kept, p)
	}
	return kept
}

// signature is the shape of a path: its transfer locations, sorted, plus
// its segment count. Two paths share a signature when they chain the same
// places and differ only in which buses serve the hops.
func signature(p Path) string {
	var locs []int64
	for i := 1; i < len(p.Segs); i++ {
		if p.Segs[i].BusID != p.Segs[i-1].BusID {
			locs = append(locs, p.Segs[i].From.LocationID)
		}
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i] < locs[j] })

	var b strings.Builder
	for _, id := range locs {
		fmt.Fprintf(&b, "%d-", id)
	}
	fmt.Fprintf(&b, "n%d", len(p.Segs))
	return b.String()
}

// dropDepartingBefore removes paths whose first departure is strictly
// before cutoff. Paths with no recorded first departure survive.
func dropDepartingBefore(paths []Path, cutoff domain.TimeOfDay) []Path {
	out := make([]Path, 0, len(paths))
	for _, p := range paths {
		if d := p.FirstDeparture(); d != nil && d.Before(cutoff) {
			continue
		}
		out = append(out, p)
	}
	return out
}
