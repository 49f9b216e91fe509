package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lokeshchintha/nearfind/internal/locate"
	"github.com/lokeshchintha/nearfind/internal/places"
	"github.com/lokeshchintha/nearfind/internal/service"
	"github.com/lokeshchintha/nearfind/internal/store"
	"github.com/lokeshchintha/nearfind/internal/synth"
	"github.com/lokeshchintha/nearfind/pkg/geocode"
	"github.com/lokeshchintha/nearfind/pkg/iploc"
	"github.com/lokeshchintha/nearfind/pkg/overpass"
	"github.com/lokeshchintha/nearfind/pkg/routing"
)

// appEnv holds the initialized facade and its store for the lifetime of one
// command.
type appEnv struct {
	Service *service.Service
	Store   store.Store
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initApp wires every client from config and builds the service facade.
// Callers should defer env.Close().
func initApp(ctx context.Context) (*appEnv, error) {
	geocoder := geocode.NewClient(
		geocode.WithBaseURL(cfg.Geocode.BaseURL),
		geocode.WithUserAgent(cfg.Geocode.UserAgent),
		geocode.WithCountryCode(cfg.Geocode.CountryCode),
		geocode.WithRateLimit(cfg.Geocode.RatePerSec),
	)
	cache := geocode.NewCache(cfg.Geocode.CacheEntries)

	aggregator := places.NewAggregator(
		overpass.NewClient(
			overpass.WithMirrors(cfg.Places.Mirrors...),
			overpass.WithServerTimeout(time.Duration(cfg.Places.ServerTimeoutSecs)*time.Second),
			overpass.WithClientTimeout(time.Duration(cfg.Places.ClientTimeoutSecs)*time.Second),
			overpass.WithMaxElements(cfg.Places.MaxRawElements),
		),
		places.WithGeocoder(geocoder, cache),
		places.WithLimits(cfg.Places.PerCategoryLive, cfg.Places.PerCategoryMinimum, cfg.Places.PerCategoryMerged),
		places.WithMaxQueryRadiusKm(cfg.Places.MaxQueryRadiusKm),
		places.WithEnrichBudget(cfg.Places.EnrichBudget),
	)

	acquirer := locate.NewAcquirer(
		iploc.NewClient(iploc.WithTimeout(time.Duration(cfg.IPLoc.TimeoutSecs)*time.Second)),
		locate.WithTierTimeouts(
			time.Duration(cfg.Locate.TierATimeoutSecs)*time.Second,
			time.Duration(cfg.Locate.TierBTimeoutSecs)*time.Second,
			time.Duration(cfg.Locate.TierCTimeoutSecs)*time.Second,
		),
	)

	router := routing.NewRouter(
		cfg.Routing.OSRMBaseURL,
		cfg.Routing.ORSBaseURL,
		cfg.Routing.ORSKey,
		routing.WithTimeout(time.Duration(cfg.Routing.TimeoutSecs)*time.Second),
	)

	opts := []service.Option{}
	var st store.Store
	if cfg.Store.Path != "" {
		sqlStore, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, eris.Wrap(err, "open store")
		}
		if err := sqlStore.Migrate(ctx); err != nil {
			_ = sqlStore.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
		st = sqlStore
		opts = append(opts, service.WithStore(st))
	} else {
		zap.L().Debug("store path empty, recency features disabled")
	}

	svc := service.New(
		acquirer,
		geocoder,
		cache,
		aggregator,
		synth.NewGenerator(synth.WithGeocoder(geocoder, cache)),
		router,
		opts...,
	)

	return &appEnv{Service: svc, Store: st}, nil
}
