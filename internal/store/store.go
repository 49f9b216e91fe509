// Package store persists recent activity locally so past positions,
// searches, and routes can be recalled and used for suggestions.
package store

import (
	"context"
	"time"

	"github.com/lokeshchintha/nearfind/internal/model"
)

// SearchRecord is one persisted search with its full per-category results.
type SearchRecord struct {
	ID        string             `json:"id"`
	Result    model.SearchResult `json:"result"`
	CreatedAt time.Time          `json:"created_at"`
}

// LocationRecord is one persisted location fix.
type LocationRecord struct {
	ID        string            `json:"id"`
	Fix       model.LocationFix `json:"fix"`
	CreatedAt time.Time         `json:"created_at"`
}

// RouteRecord is one persisted route computation, without the step detail.
type RouteRecord struct {
	ID              string           `json:"id"`
	Start           model.LocationFix `json:"start"`
	EndLabel        string           `json:"end_label"`
	Mode            model.TravelMode `json:"mode"`
	ProviderUsed    string           `json:"provider_used"`
	TotalDistanceKm float64          `json:"total_distance_km"`
	DurationMinutes float64          `json:"duration_minutes"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Store is the recency persistence interface.
type Store interface {
	RecordSearch(ctx context.Context, result *model.SearchResult) (*SearchRecord, error)
	ListSearches(ctx context.Context, limit int) ([]SearchRecord, error)

	RecordLocation(ctx context.Context, fix *model.LocationFix) (*LocationRecord, error)
	ListLocations(ctx context.Context, limit int) ([]LocationRecord, error)
	LatestLocation(ctx context.Context) (*LocationRecord, error)

	RecordRoute(ctx context.Context, start *model.LocationFix, endLabel string, route *model.RouteResult, mode model.TravelMode) (*RouteRecord, error)
	ListRoutes(ctx context.Context, limit int) ([]RouteRecord, error)

	// Prune drops all but the newest keep rows from every table.
	Prune(ctx context.Context, keep int) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}
