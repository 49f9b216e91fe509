// Package routing computes turn-by-turn routes via live providers with a
// synthesized fallback.
package routing

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lokeshchintha/nearfind/internal/geo"
	"github.com/lokeshchintha/nearfind/internal/model"
	"github.com/lokeshchintha/nearfind/internal/resilience"
)

// Provider is a single routing backend. Adapters normalize their provider's
// wire shape into model.RouteResult.
type Provider interface {
	Name() string
	Route(ctx context.Context, start, end geo.Coordinate, mode model.TravelMode) (*model.RouteResult, error)
}

// Router tries providers in priority order and synthesizes a route when all
// of them fail. Compute never surfaces provider errors: degradation is
// signalled by ProviderUsed == "fallback".
type Router struct {
	providers []Provider
	timeout   time.Duration
}

// Option configures the Router.
type Option func(*Router)

// WithProviders replaces the default provider chain.
func WithProviders(providers ...Provider) Option {
	return func(r *Router) { r.providers = providers }
}

// WithTimeout bounds each provider attempt.
func WithTimeout(d time.Duration) Option {
	return func(r *Router) { r.timeout = d }
}

// NewRouter creates a Router with the default OSRM → ORS provider chain.
func NewRouter(osrmBaseURL, orsBaseURL, orsKey string, opts ...Option) *Router {
	hc := &http.Client{Timeout: 15 * time.Second}
	r := &Router{
		providers: []Provider{
			NewOSRMProvider(osrmBaseURL, hc),
			NewORSProvider(orsBaseURL, orsKey, hc),
		},
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Compute returns a route from start to end for the given travel mode.
func (r *Router) Compute(ctx context.Context, start, end geo.Coordinate, mode model.TravelMode) (*model.RouteResult, error) {
	if err := start.Validate(); err != nil {
		return nil, err
	}
	if err := end.Validate(); err != nil {
		return nil, err
	}

	attempts := make([]resilience.Attempt[*model.RouteResult], 0, len(r.providers))
	for _, p := range r.providers {
		p := p
		attempts = append(attempts, resilience.Attempt[*model.RouteResult]{
			Name:    p.Name(),
			Timeout: r.timeout,
			Run: func(ctx context.Context) (*model.RouteResult, error) {
				return p.Route(ctx, start, end, mode)
			},
		})
	}

	result, provider, err := resilience.First(ctx, "routing-providers", attempts)
	if err == nil {
		zap.L().Debug("route computed", zap.String("provider", provider))
		return result, nil
	}

	zap.L().Info("all routing providers failed, synthesizing route", zap.Error(err))
	return SynthesizeRoute(start, end, mode), nil
}

// statusError classifies a non-200 provider response. Both providers route
// the same request, so a permanent rejection stops the cascade and lets the
// synthesized fallback take over immediately.
func statusError(op string, code int) error {
	err := eris.Errorf("%s returned status %d", op, code)
	if resilience.IsTransientHTTPStatus(code) {
		return err
	}
	return resilience.Permanent(err)
}

// speeds in km/h per mode; the final approach leg assumes congestion.
var (
	cruiseSpeedKmh   = map[model.TravelMode]float64{model.ModeDriving: 50, model.ModeWalking: 5, model.ModeCycling: 15}
	approachSpeedKmh = map[model.TravelMode]float64{model.ModeDriving: 30, model.ModeWalking: 4, model.ModeCycling: 10}
)

// formatDistance renders a distance label, switching to meters under 1 km.
func formatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%.0f m", km*1000)
	}
	return fmt.Sprintf("%.1f km", km)
}

// formatDuration renders a duration label from minutes.
func formatDuration(minutes float64) string {
	if minutes < 1 {
		return "1 min"
	}
	if minutes < 60 {
		return fmt.Sprintf("%.0f min", minutes)
	}
	h := int(minutes) / 60
	m := int(minutes) % 60
	if m == 0 {
		return fmt.Sprintf("%d h", h)
	}
	return fmt.Sprintf("%d h %d min", h, m)
}
