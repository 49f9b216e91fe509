package synth

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lokeshchintha/nearfind/internal/geo"
	"github.com/lokeshchintha/nearfind/internal/model"
	"github.com/lokeshchintha/nearfind/pkg/geocode"
)

const (
	// regionLookupBudget bounds the single reverse-geocode call used to label
	// generated places with a real city name.
	regionLookupBudget = 3 * time.Second

	// enrichLookupBudget bounds each per-place address verification call.
	enrichLookupBudget = 2 * time.Second

	// enrichTotalCap and enrichPerCategoryCap bound how many generated places
	// get a verified address. The rest keep their synthesized street line.
	enrichTotalCap       = 12
	enrichPerCategoryCap = 2

	enrichConcurrency = 4

	minPerCategory = 6
	maxPerCategory = 10
)

// Generator produces synthetic places around a center. Output is fully
// deterministic per (center, radius, category) except for the optional
// address verification pass, which only upgrades labels.
type Generator struct {
	geocoder *geocode.Client
	cache    *geocode.Cache
}

// Option mutates a Generator under construction.
type Option func(*Generator)

// WithGeocoder wires the reverse-geocode client used for region labels and
// address verification. Without one, generated places keep synthetic labels.
func WithGeocoder(c *geocode.Client, cache *geocode.Cache) Option {
	return func(g *Generator) {
		g.geocoder = c
		g.cache = cache
	}
}

// NewGenerator builds a Generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// region resolves the city and locality labels for a center without any
// network access: a metro bounding box if one matches, otherwise a
// deterministic pick from the fallback city list.
func region(center geo.Coordinate) (city string, localities []string) {
	if m, ok := metroFor(center); ok {
		return m.name, m.localities
	}
	p := newPRNG(seedFor(center.Lat, center.Lng, "region", 0))
	city = fallbackCities[p.intn(len(fallbackCities))]
	return city, []string{city}
}

// Deterministic generates the synthetic place list for one category with no
// I/O. Identical (center, radius, category) inputs yield identical output.
func Deterministic(center geo.Coordinate, radiusKm float64, categoryKey string) []model.Place {
	city, localities := region(center)
	return generate(center, radiusKm, categoryKey, city, localities)
}

func generate(center geo.Coordinate, radiusKm float64, categoryKey, city string, localities []string) []model.Place {
	def, ok := model.Categories().Lookup(categoryKey)
	if !ok {
		return nil
	}

	countPRNG := newPRNG(seedFor(center.Lat, center.Lng, categoryKey, -1))
	count := minPerCategory + countPRNG.intn(maxPerCategory-minPerCategory+1)

	maxDistKm := 0.8 * radiusKm
	minDistKm := math.Min(0.5, maxDistKm/2)

	places := make([]model.Place, 0, count)
	for i := 0; i < count; i++ {
		p := newPRNG(seedFor(center.Lat, center.Lng, categoryKey, i))

		// Spread bearings evenly around the circle, then jitter so the ring
		// does not look machine drawn.
		bearing := 360*float64(i)/float64(count) + (p.float64()-0.5)*30
		distKm := minDistKm + p.float64()*(maxDistKm-minDistKm)
		coord := geo.Destination(center, bearing, distKm)

		locality := localities[p.intn(len(localities))]
		street := fmt.Sprintf(streetTemplates[p.intn(len(streetTemplates))], locality)

		places = append(places, model.Place{
			ID:           model.PlaceID(categoryKey, coord, model.SourceSynthetic),
			Name:         pickName(p, categoryKey, locality),
			CategoryKey:  categoryKey,
			CategoryName: def.DisplayName,
			Icon:         def.Icon,
			Coordinate:   coord,
			DistanceKm:   geo.DistanceKm(center, coord),
			Address:      street,
			City:         city,
			Phone:        fmt.Sprintf("+91 9%d%03d %05d", 7+p.intn(3), p.intn(1000), p.intn(100000)),
			OpeningHours: pickHours(p, categoryKey),
			Rating:       math.Round((3.0+p.float64()*2.0)*10) / 10,
			Source:       model.SourceSynthetic,
		})
	}

	sort.Slice(places, func(a, b int) bool { return places[a].DistanceKm < places[b].DistanceKm })
	return places
}

// Generate produces synthetic places for every category in the table. When a
// geocoder is wired, the center is reverse geocoded once for a real city
// label, and a bounded number of places per category get verified addresses.
func (g *Generator) Generate(ctx context.Context, center geo.Coordinate, radiusKm float64) map[string][]model.Place {
	city, localities := region(center)
	if g.geocoder != nil {
		if addr := g.geocoder.CachedReverse(ctx, g.cache, center, regionLookupBudget); addr != nil && addr.City != "" {
			city = addr.City
		}
	}

	out := make(map[string][]model.Place)
	for _, key := range model.Categories().Keys() {
		out[key] = generate(center, radiusKm, key, city, localities)
	}

	if g.geocoder != nil {
		g.verifyAddresses(ctx, out)
	}
	return out
}

// verifyAddresses replaces synthesized street lines with reverse-geocoded
// ones for the nearest places in each category, within the global budget.
func (g *Generator) verifyAddresses(ctx context.Context, categories map[string][]model.Place) {
	type target struct {
		key   string
		index int
	}
	var targets []target
	keys := model.Categories().Keys()
	for _, key := range keys {
		n := enrichPerCategoryCap
		if len(categories[key]) < n {
			n = len(categories[key])
		}
		for i := 0; i < n && len(targets) < enrichTotalCap; i++ {
			targets = append(targets, target{key: key, index: i})
		}
		if len(targets) >= enrichTotalCap {
			break
		}
	}

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(enrichConcurrency)
	for _, t := range targets {
		place := &categories[t.key][t.index]
		grp.Go(func() error {
			addr := g.geocoder.CachedReverse(grpCtx, g.cache, place.Coordinate, enrichLookupBudget)
			if addr == nil {
				return nil
			}
			if addr.Street != "" {
				place.Address = addr.Street
			}
			if addr.City != "" {
				place.City = addr.City
			}
			place.State = addr.State
			place.VerifiedAddress = true
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		zap.L().Debug("synth: address verification interrupted", zap.Error(err))
	}
}
