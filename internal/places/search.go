// Package places aggregates live and synthetic place data into the final
// per-category result set.
package places

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lokeshchintha/nearfind/internal/geo"
	"github.com/lokeshchintha/nearfind/internal/model"
	"github.com/lokeshchintha/nearfind/internal/synth"
	"github.com/lokeshchintha/nearfind/pkg/geocode"
	"github.com/lokeshchintha/nearfind/pkg/overpass"
)

const (
	defaultMaxQueryRadiusKm = 1.5
	defaultPerCategoryLive  = 8
	defaultPerCategoryMin   = 6
	defaultPerCategoryMax   = 10
	defaultEnrichBudget     = 15

	// dedupEpsilonDeg is the coordinate proximity, on both axes, at which a
	// synthetic place is considered a duplicate of a live one.
	dedupEpsilonDeg = 0.002
)

// Aggregator runs the live query, classifies raw elements into categories,
// and merges in synthetic fill.
type Aggregator struct {
	overpass *overpass.Client
	geocoder *geocode.Client
	cache    *geocode.Cache

	maxQueryRadiusKm float64
	perCategoryLive  int
	perCategoryMin   int
	perCategoryMax   int
	enrichBudget     int
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithGeocoder wires the reverse-geocode client used for address enrichment.
func WithGeocoder(c *geocode.Client, cache *geocode.Cache) Option {
	return func(a *Aggregator) {
		a.geocoder = c
		a.cache = cache
	}
}

// WithLimits overrides the per-category sizing knobs.
func WithLimits(live, minimum, maximum int) Option {
	return func(a *Aggregator) {
		a.perCategoryLive = live
		a.perCategoryMin = minimum
		a.perCategoryMax = maximum
	}
}

// WithMaxQueryRadiusKm caps the radius sent to the live provider.
func WithMaxQueryRadiusKm(km float64) Option {
	return func(a *Aggregator) { a.maxQueryRadiusKm = km }
}

// WithEnrichBudget caps the total reverse-geocode lookups per search.
func WithEnrichBudget(n int) Option {
	return func(a *Aggregator) { a.enrichBudget = n }
}

// NewAggregator builds an Aggregator over the given live-data client.
func NewAggregator(op *overpass.Client, opts ...Option) *Aggregator {
	a := &Aggregator{
		overpass:         op,
		maxQueryRadiusKm: defaultMaxQueryRadiusKm,
		perCategoryLive:  defaultPerCategoryLive,
		perCategoryMin:   defaultPerCategoryMin,
		perCategoryMax:   defaultPerCategoryMax,
		enrichBudget:     defaultEnrichBudget,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// selectors returns one primary key=value selector per high-value category.
// The composite query stays small enough for mirrors to answer in time.
func selectors() []string {
	defs := model.Categories().HighValue()
	out := make([]string, 0, len(defs))
	for _, def := range defs {
		if len(def.MatchTags) > 0 {
			out = append(out, def.MatchTags[0])
		}
	}
	return out
}

// LiveSearch queries the mirror cascade and classifies the raw elements into
// per-category, distance-sorted lists. Only named elements within radiusKm
// of the center survive. An exhausted cascade returns an error; callers
// treat it as an empty live result.
func (a *Aggregator) LiveSearch(ctx context.Context, center geo.Coordinate, radiusKm float64) (map[string][]model.Place, error) {
	if err := center.Validate(); err != nil {
		return nil, eris.Wrap(err, "places: live search")
	}

	queryKm := radiusKm
	if queryKm > a.maxQueryRadiusKm {
		queryKm = a.maxQueryRadiusKm
	}

	elements, err := a.overpass.Search(ctx, center, int(queryKm*1000), selectors())
	if err != nil {
		return nil, err
	}

	table := model.Categories()
	out := make(map[string][]model.Place)
	for i := range elements {
		el := &elements[i]
		coord, ok := el.Coords()
		if !ok {
			continue
		}
		name := strings.TrimSpace(el.Tags["name"])
		if name == "" {
			continue
		}
		key, ok := table.Classify(el.Tags)
		if !ok {
			continue
		}
		dist := geo.DistanceKm(center, coord)
		if dist > radiusKm {
			continue
		}
		def, _ := table.Lookup(key)
		out[key] = append(out[key], model.Place{
			ID:           model.PlaceID(key, coord, model.SourceLive),
			Name:         name,
			CategoryKey:  key,
			CategoryName: def.DisplayName,
			Icon:         def.Icon,
			Coordinate:   coord,
			DistanceKm:   dist,
			Address:      liveAddress(el.Tags),
			City:         el.Tags["addr:city"],
			Phone:        livePhone(el.Tags),
			Website:      el.Tags["website"],
			OpeningHours: el.Tags["opening_hours"],
			Rating:       synth.RatingFor(fmt.Sprintf("%s/%d", el.Type, el.ID)),
			Source:       model.SourceLive,
		})
	}

	total := 0
	for key, list := range out {
		sort.Slice(list, func(i, j int) bool { return list[i].DistanceKm < list[j].DistanceKm })
		if len(list) > a.perCategoryLive {
			list = list[:a.perCategoryLive]
		}
		out[key] = list
		total += len(list)
	}

	zap.L().Debug("places: live search classified",
		zap.Int("elements", len(elements)),
		zap.Int("kept", total),
	)
	return out, nil
}

func liveAddress(tags map[string]string) string {
	street := tags["addr:street"]
	if street == "" {
		return ""
	}
	if num := tags["addr:housenumber"]; num != "" {
		return num + " " + street
	}
	return street
}

func livePhone(tags map[string]string) string {
	if p := tags["phone"]; p != "" {
		return p
	}
	return tags["contact:phone"]
}
