// Package resilience provides the ordered-fallback machinery shared by the
// sensor tiers, IP providers, mirror lists, and routing providers.
package resilience

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Attempt is one stage in an ordered fallback cascade.
type Attempt[T any] struct {
	// Name identifies the stage in logs and in the winner tag.
	Name string

	// Timeout bounds this attempt. Zero means inherit the caller's context.
	Timeout time.Duration

	// Run performs the attempt. A context deadline expiry is treated
	// exactly like any other failure: the cascade advances.
	Run func(ctx context.Context) (T, error)

	// Accept optionally rejects a non-error result (e.g. an empty element
	// list from a mirror). A rejected result advances the cascade.
	Accept func(T) bool
}

// ErrExhausted is returned when every attempt in a cascade failed.
var ErrExhausted = eris.New("resilience: all attempts failed")

// First runs attempts strictly in order and returns the first accepted
// result along with the winning attempt's name. Stages never race: each is
// started only after the previous one has failed. Cancellation of the parent
// context stops the cascade immediately, as does a failure marked Permanent.
func First[T any](ctx context.Context, stage string, attempts []Attempt[T]) (T, string, error) {
	var zero T
	var lastErr error

	for _, a := range attempts {
		if ctx.Err() != nil {
			if lastErr == nil {
				lastErr = ctx.Err()
			}
			return zero, "", lastErr
		}

		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if a.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, a.Timeout)
		}

		val, err := a.Run(attemptCtx)
		cancel()

		if err != nil {
			lastErr = err
			if IsPermanent(err) {
				zap.L().Debug("cascade: permanent failure, stopping",
					zap.String("stage", stage),
					zap.String("attempt", a.Name),
					zap.Error(err),
				)
				return zero, "", eris.Wrapf(err, "resilience: %s aborted", stage)
			}
			zap.L().Debug("cascade: attempt failed, advancing",
				zap.String("stage", stage),
				zap.String("attempt", a.Name),
				zap.Error(err),
			)
			continue
		}
		if a.Accept != nil && !a.Accept(val) {
			lastErr = eris.Errorf("resilience: %s rejected result", a.Name)
			zap.L().Debug("cascade: result rejected, advancing",
				zap.String("stage", stage),
				zap.String("attempt", a.Name),
			)
			continue
		}
		return val, a.Name, nil
	}

	if lastErr == nil {
		lastErr = ErrExhausted
	}
	return zero, "", eris.Wrapf(lastErr, "resilience: %s exhausted", stage)
}
