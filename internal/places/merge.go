package places

import (
	"math"
	"sort"

	"github.com/lokeshchintha/nearfind/internal/model"
)

// Merge combines live and synthetic lists per category. Live places always
// rank first in precedence: synthetic fill is added only when a category
// falls short of the minimum, and never within dedupEpsilonDeg of a live
// place on both axes. A category with no live data takes the synthetic list
// outright. Every merged list is distance-sorted and capped at the maximum.
func (a *Aggregator) Merge(live, synthetic map[string][]model.Place) map[string][]model.Place {
	out := make(map[string][]model.Place)
	for _, key := range model.Categories().Keys() {
		out[key] = a.mergeCategory(live[key], synthetic[key])
	}
	return out
}

func (a *Aggregator) mergeCategory(live, synthetic []model.Place) []model.Place {
	merged := make([]model.Place, len(live))
	copy(merged, live)

	if len(merged) < a.perCategoryMin {
		for _, s := range synthetic {
			if len(merged) >= a.perCategoryMin {
				break
			}
			if nearAny(s, merged) {
				continue
			}
			merged = append(merged, s)
		}
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].DistanceKm < merged[j].DistanceKm })
	if len(merged) > a.perCategoryMax {
		merged = merged[:a.perCategoryMax]
	}
	return merged
}

func nearAny(candidate model.Place, existing []model.Place) bool {
	for _, e := range existing {
		if math.Abs(candidate.Coordinate.Lat-e.Coordinate.Lat) < dedupEpsilonDeg &&
			math.Abs(candidate.Coordinate.Lng-e.Coordinate.Lng) < dedupEpsilonDeg {
			return true
		}
	}
	return false
}
