// Package service wires the acquisition, discovery, and routing pipeline
// behind one facade shared by the CLI and the HTTP server.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lokeshchintha/nearfind/internal/geo"
	"github.com/lokeshchintha/nearfind/internal/locate"
	"github.com/lokeshchintha/nearfind/internal/model"
	"github.com/lokeshchintha/nearfind/internal/places"
	"github.com/lokeshchintha/nearfind/internal/store"
	"github.com/lokeshchintha/nearfind/internal/synth"
	"github.com/lokeshchintha/nearfind/pkg/geocode"
	"github.com/lokeshchintha/nearfind/pkg/routing"
)

const (
	// searchBudget bounds one whole search: live query, synthetic fill,
	// merge, and enrichment together.
	searchBudget = 30 * time.Second

	// labelBudget bounds the reverse-geocode call that names a fix's city.
	labelBudget = 3 * time.Second

	// Search radii outside this range are clamped into it.
	minSearchRadiusKm = 1.0
	maxSearchRadiusKm = 50.0
)

// Service is the application facade. The store is optional; without one,
// recency features are simply disabled.
type Service struct {
	acquirer   *locate.Acquirer
	geocoder   *geocode.Client
	cache      *geocode.Cache
	aggregator *places.Aggregator
	generator  *synth.Generator
	router     *routing.Router
	store      store.Store

	searchBudget time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithStore enables recency persistence.
func WithStore(st store.Store) Option {
	return func(s *Service) { s.store = st }
}

// WithSearchBudget overrides the whole-search timeout.
func WithSearchBudget(d time.Duration) Option {
	return func(s *Service) { s.searchBudget = d }
}

// New builds the facade over its collaborators.
func New(
	acquirer *locate.Acquirer,
	geocoder *geocode.Client,
	cache *geocode.Cache,
	aggregator *places.Aggregator,
	generator *synth.Generator,
	router *routing.Router,
	opts ...Option,
) *Service {
	s := &Service{
		acquirer:     acquirer,
		geocoder:     geocoder,
		cache:        cache,
		aggregator:   aggregator,
		generator:    generator,
		router:       router,
		searchBudget: searchBudget,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AcquireLocation runs the positioning cascade and labels the fix with a
// city name when one can be resolved in time.
func (s *Service) AcquireLocation(ctx context.Context) (*model.LocationFix, error) {
	fix, err := s.acquirer.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	if fix.CityLabel == "" && s.geocoder != nil {
		if addr := s.geocoder.CachedReverse(ctx, s.cache, fix.Coordinate, labelBudget); addr != nil {
			fix.CityLabel = addr.City
		}
	}

	s.recordLocation(ctx, fix)
	return fix, nil
}

// ResolvePoint turns a free-text place name into a location fix.
func (s *Service) ResolvePoint(ctx context.Context, text string) (*model.LocationFix, error) {
	result, err := s.geocoder.Forward(ctx, text)
	if err != nil {
		return nil, eris.Wrapf(err, "service: resolve %q", text)
	}

	fix := &model.LocationFix{
		Coordinate: result.Coordinate,
		Method:     model.MethodGeocoded,
		CityLabel:  result.DisplayName,
	}
	s.recordLocation(ctx, fix)
	return fix, nil
}

// ManualPoint wraps an explicit coordinate as a location fix.
func (s *Service) ManualPoint(ctx context.Context, coord geo.Coordinate) (*model.LocationFix, error) {
	if err := coord.Validate(); err != nil {
		return nil, eris.Wrap(err, "service: manual point")
	}
	fix := &model.LocationFix{Coordinate: coord, Method: model.MethodManualEntry}
	if s.geocoder != nil {
		if addr := s.geocoder.CachedReverse(ctx, s.cache, coord, labelBudget); addr != nil {
			fix.CityLabel = addr.City
		}
	}
	s.recordLocation(ctx, fix)
	return fix, nil
}

// SearchPlaces produces the merged per-category result set around a center.
// Live-provider failure degrades silently to synthetic data; only an invalid
// center or an expired parent context fails the search.
func (s *Service) SearchPlaces(ctx context.Context, center geo.Coordinate, radiusKm float64) (*model.SearchResult, error) {
	if err := center.Validate(); err != nil {
		return nil, eris.Wrap(err, "service: search")
	}
	if radiusKm <= 0 {
		return nil, eris.New("service: search radius must be positive")
	}
	if radiusKm < minSearchRadiusKm {
		radiusKm = minSearchRadiusKm
	}
	if radiusKm > maxSearchRadiusKm {
		radiusKm = maxSearchRadiusKm
	}

	ctx, cancel := context.WithTimeout(ctx, s.searchBudget)
	defer cancel()

	live, err := s.aggregator.LiveSearch(ctx, center, radiusKm)
	if err != nil {
		zap.L().Info("service: live search unavailable, using synthetic data", zap.Error(err))
		live = nil
	}

	liveCount := 0
	for _, list := range live {
		liveCount += len(list)
	}

	synthetic := s.generator.Generate(ctx, center, radiusKm)
	merged := s.aggregator.Merge(live, synthetic)
	s.aggregator.EnrichAddresses(ctx, merged)

	result := &model.SearchResult{
		Center:     center,
		RadiusKm:   radiusKm,
		Categories: merged,
		LiveCount:  liveCount,
	}

	if s.store != nil {
		if _, err := s.store.RecordSearch(ctx, result); err != nil {
			zap.L().Warn("service: record search", zap.Error(err))
		}
	}

	zap.L().Info("service: search complete",
		zap.Float64("radius_km", radiusKm),
		zap.Int("live_places", liveCount),
	)
	return result, nil
}

// ComputeRoute plans a route and records it. Provider exhaustion never
// fails: the route engine synthesizes directions as a last resort.
func (s *Service) ComputeRoute(ctx context.Context, start *model.LocationFix, end geo.Coordinate, endLabel string, mode model.TravelMode) (*model.RouteResult, error) {
	route, err := s.router.Compute(ctx, start.Coordinate, end, mode)
	if err != nil {
		return nil, eris.Wrap(err, "service: compute route")
	}

	if s.store != nil {
		if _, err := s.store.RecordRoute(ctx, start, endLabel, route, mode); err != nil {
			zap.L().Warn("service: record route", zap.Error(err))
		}
	}
	return route, nil
}

// Suggest returns place completions for partial text: matching labels from
// the recency store first, then forward-geocode results, deduplicated
// case-insensitively and capped at limit.
func (s *Service) Suggest(ctx context.Context, text string, limit int, bias *geo.Coordinate) ([]geocode.ForwardResult, error) {
	text = strings.TrimSpace(text)
	if limit <= 0 {
		limit = 5
	}

	var out []geocode.ForwardResult
	seen := make(map[string]bool)

	if s.store != nil && text != "" {
		needle := strings.ToLower(text)
		records, err := s.store.ListLocations(ctx, 50)
		if err != nil {
			zap.L().Warn("service: list recent locations for suggest", zap.Error(err))
		}
		for _, r := range records {
			label := r.Fix.CityLabel
			if label == "" || !strings.Contains(strings.ToLower(label), needle) {
				continue
			}
			key := strings.ToLower(label)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, geocode.ForwardResult{Coordinate: r.Fix.Coordinate, DisplayName: label})
		}
	}

	remote, err := s.geocoder.Suggest(ctx, text, limit, bias)
	if err != nil {
		if len(out) > 0 {
			zap.L().Debug("service: suggest provider failed, recency only", zap.Error(err))
			return capSuggestions(out, limit), nil
		}
		return nil, err
	}
	for _, r := range remote {
		key := strings.ToLower(r.DisplayName)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return capSuggestions(out, limit), nil
}

func capSuggestions(results []geocode.ForwardResult, limit int) []geocode.ForwardResult {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}

// Store exposes the recency store, or nil when persistence is disabled.
func (s *Service) Store() store.Store { return s.store }

func (s *Service) recordLocation(ctx context.Context, fix *model.LocationFix) {
	if s.store == nil {
		return
	}
	if _, err := s.store.RecordLocation(ctx, fix); err != nil {
		zap.L().Warn("service: record location", zap.Error(err))
	}
}
