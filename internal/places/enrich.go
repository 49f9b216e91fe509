package places

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lokeshchintha/nearfind/internal/model"
)

// enrichLookupBudget bounds each address lookup so one slow provider call
// cannot starve the remaining places.
const enrichLookupBudget = 2 * time.Second

// EnrichAddresses fills in missing street addresses on live places through
// reverse geocoding, in category-table order, until the global lookup budget
// is spent. Places past the budget keep their tag-derived address or none.
// Lookup failures are skipped silently.
func (a *Aggregator) EnrichAddresses(ctx context.Context, categories map[string][]model.Place) {
	if a.geocoder == nil {
		return
	}

	lookups := 0
	for _, key := range model.Categories().Keys() {
		list := categories[key]
		for i := range list {
			if lookups >= a.enrichBudget {
				zap.L().Debug("places: enrichment budget spent", zap.Int("lookups", lookups))
				return
			}
			p := &list[i]
			if p.Source != model.SourceLive || p.Address != "" {
				continue
			}
			lookups++
			addr := a.geocoder.CachedReverse(ctx, a.cache, p.Coordinate, enrichLookupBudget)
			if addr == nil {
				continue
			}
			if addr.Street != "" {
				p.Address = addr.Street
			}
			if p.City == "" {
				p.City = addr.City
			}
			p.State = addr.State
			p.VerifiedAddress = true
		}
	}
}
