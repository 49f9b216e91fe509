// Package locate acquires the user's position through a tiered sensor
// cascade, or an IP estimate on hosts without a positioning source.
package locate

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lokeshchintha/nearfind/internal/geo"
	"github.com/lokeshchintha/nearfind/internal/model"
	"github.com/lokeshchintha/nearfind/internal/resilience"
	"github.com/lokeshchintha/nearfind/pkg/iploc"
)

// Reading is a raw sensor fix.
type Reading struct {
	Coordinate     geo.Coordinate
	AccuracyMeters float64
}

// ReadOptions tune one sensor attempt.
type ReadOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaxAgeSecs   int
}

// Sensor abstracts a positioning source. A nil Sensor means positioning is
// unsupported on this host and the cascade goes straight to the IP estimate.
type Sensor interface {
	Read(ctx context.Context, opts ReadOptions) (*Reading, error)
}

// Sentinel sensor errors. Anything else is treated as position-unavailable.
var (
	ErrPermissionDenied = errors.New("locate: permission denied")
	ErrUnavailable      = errors.New("locate: position unavailable")
)

// FailureReason classifies why acquisition fell through a tier.
type FailureReason string

const (
	ReasonPermissionDenied    FailureReason = "permission-denied"
	ReasonPositionUnavailable FailureReason = "position-unavailable"
	ReasonTimeout             FailureReason = "timeout"
	ReasonUnsupported         FailureReason = "unavailable"
)

// LocationError carries the classified failure plus a user-facing suggestion.
type LocationError struct {
	Reason     FailureReason
	Suggestion string
	Err        error
}

func (e *LocationError) Error() string {
	if e.Err != nil {
		return string(e.Reason) + ": " + e.Err.Error()
	}
	return string(e.Reason)
}

func (e *LocationError) Unwrap() error { return e.Err }

var suggestions = map[FailureReason]string{
	ReasonPermissionDenied:    "Grant location permission, or pass a place name with --at.",
	ReasonPositionUnavailable: "Positioning hardware gave no fix. Try again outdoors, or pass --at.",
	ReasonTimeout:             "Positioning timed out. Try again, or pass a place name with --at.",
	ReasonUnsupported:         "No positioning source on this host. Pass a place name with --at.",
}

func classify(err error) FailureReason {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return ReasonPermissionDenied
	case resilience.IsTimeout(err):
		return ReasonTimeout
	default:
		return ReasonPositionUnavailable
	}
}

func newLocationError(reason FailureReason, err error) *LocationError {
	return &LocationError{Reason: reason, Suggestion: suggestions[reason], Err: err}
}

// Acquirer runs the acquisition cascade: three progressively more patient
// sensor tiers, or the IP estimate when no sensor exists.
type Acquirer struct {
	sensor Sensor
	iploc  *iploc.Client

	tierATimeout time.Duration
	tierBTimeout time.Duration
	tierCTimeout time.Duration
}

// Option configures an Acquirer.
type Option func(*Acquirer)

// WithSensor wires the positioning source. Omitting it (or passing nil)
// models a host without positioning support.
func WithSensor(s Sensor) Option {
	return func(a *Acquirer) { a.sensor = s }
}

// WithTierTimeouts overrides the per-tier sensor timeouts.
func WithTierTimeouts(tierA, tierB, tierC time.Duration) Option {
	return func(a *Acquirer) {
		a.tierATimeout = tierA
		a.tierBTimeout = tierB
		a.tierCTimeout = tierC
	}
}

// NewAcquirer builds an Acquirer over the given IP-estimate client.
func NewAcquirer(ip *iploc.Client, opts ...Option) *Acquirer {
	a := &Acquirer{
		iploc:        ip,
		tierATimeout: 5 * time.Second,
		tierBTimeout: 3 * time.Second,
		tierCTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// tier describes one sensor attempt and how its accuracy maps to a method.
type tier struct {
	name   string
	opts   ReadOptions
	method func(accuracyMeters float64) model.AcquisitionMethod
}

func (a *Acquirer) tiers() []tier {
	return []tier{
		{
			name: "tier-a",
			opts: ReadOptions{HighAccuracy: true, Timeout: a.tierATimeout},
			method: func(acc float64) model.AcquisitionMethod {
				switch {
				case acc <= 100:
					return model.MethodHighAccuracy
				case acc <= 1000:
					return model.MethodModerateAccuracy
				default:
					return model.MethodPoorAccuracy
				}
			},
		},
		{
			name: "tier-b",
			opts: ReadOptions{HighAccuracy: false, Timeout: a.tierBTimeout},
			method: func(acc float64) model.AcquisitionMethod {
				if acc <= 100 {
					return model.MethodDelayedSensor
				}
				return model.MethodCellAssisted
			},
		},
		{
			name: "tier-c",
			opts: ReadOptions{HighAccuracy: true, Timeout: a.tierCTimeout, MaxAgeSecs: 60},
			method: func(float64) model.AcquisitionMethod {
				return model.MethodFinalAttempt
			},
		},
	}
}

// Acquire walks the sensor tiers in order. A permission denial is terminal;
// other failures advance to the next tier, and exhausting the final tier is
// terminal too. The IP estimate is used only when no sensor is present.
func (a *Acquirer) Acquire(ctx context.Context) (*model.LocationFix, error) {
	if a.sensor == nil {
		return a.ipEstimate(ctx)
	}

	var (
		lastReason FailureReason = ReasonPositionUnavailable
		lastErr    error
	)
	for _, t := range a.tiers() {
		if ctx.Err() != nil {
			return nil, newLocationError(ReasonTimeout, ctx.Err())
		}

		tierCtx, cancel := context.WithTimeout(ctx, t.opts.Timeout)
		reading, err := a.sensor.Read(tierCtx, t.opts)
		cancel()

		if err == nil && reading != nil {
			if vErr := reading.Coordinate.Validate(); vErr != nil {
				zap.L().Warn("locate: sensor returned invalid coordinate",
					zap.String("tier", t.name), zap.Error(vErr))
				lastReason, lastErr = ReasonPositionUnavailable, vErr
				continue
			}
			fix := &model.LocationFix{
				Coordinate:     reading.Coordinate,
				AccuracyMeters: reading.AccuracyMeters,
				Method:         t.method(reading.AccuracyMeters),
			}
			zap.L().Info("locate: sensor fix acquired",
				zap.String("tier", t.name),
				zap.String("method", string(fix.Method)),
				zap.Float64("accuracy_m", fix.AccuracyMeters),
			)
			return fix, nil
		}

		reason := classify(err)
		zap.L().Debug("locate: tier failed",
			zap.String("tier", t.name),
			zap.String("reason", string(reason)),
			zap.Error(err),
		)
		lastReason, lastErr = reason, err
		if reason == ReasonPermissionDenied {
			break
		}
	}

	return nil, newLocationError(lastReason, lastErr)
}

func (a *Acquirer) ipEstimate(ctx context.Context) (*model.LocationFix, error) {
	estimate, err := a.iploc.Locate(ctx)
	if err != nil {
		return nil, newLocationError(ReasonUnsupported, eris.Wrap(err, "locate: ip estimate"))
	}

	zap.L().Info("locate: using ip estimate", zap.String("city", estimate.City))
	return &model.LocationFix{
		Coordinate:     estimate.Coordinate,
		AccuracyMeters: iploc.AccuracyMeters,
		Method:         model.MethodIPEstimate,
		CityLabel:      estimate.City,
	}, nil
}
