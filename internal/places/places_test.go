package places

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lokeshchintha/nearfind/internal/geo"
	"github.com/lokeshchintha/nearfind/internal/model"
	"github.com/lokeshchintha/nearfind/internal/synth"
	"github.com/lokeshchintha/nearfind/pkg/geocode"
	"github.com/lokeshchintha/nearfind/pkg/overpass"
)

var center = geo.Coordinate{Lat: 28.6139, Lng: 77.2090}

const liveBody = `{"elements":[
	{"type":"node","id":1,"lat":28.6150,"lon":77.2100,"tags":{"name":"Curry Leaf","amenity":"restaurant","addr:street":"Janpath","addr:housenumber":"12","phone":"+91 11 2334 5566"}},
	{"type":"way","id":2,"center":{"lat":28.6120,"lon":77.2080},"tags":{"name":"The Imperial","tourism":"hotel","website":"https://theimperialindia.com"}},
	{"type":"node","id":3,"lat":28.6155,"lon":77.2095,"tags":{"amenity":"restaurant"}},
	{"type":"node","id":4,"lat":28.6160,"lon":77.2110,"tags":{"name":"Mystery Spot","leisure":"dance"}},
	{"type":"node","id":5,"lat":29.9000,"lon":77.2090,"tags":{"name":"Far Dhaba","amenity":"restaurant"}}
]}`

func newAggregator(t *testing.T, body string, opts ...Option) *Aggregator {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return NewAggregator(overpass.NewClient(overpass.WithMirrors(srv.URL)), opts...)
}

func TestLiveSearchClassifies(t *testing.T) {
	a := newAggregator(t, liveBody)
	out, err := a.LiveSearch(context.Background(), center, 10)
	require.NoError(t, err)

	require.Len(t, out["restaurant"], 1)
	r := out["restaurant"][0]
	assert.Equal(t, "Curry Leaf", r.Name)
	assert.Equal(t, model.SourceLive, r.Source)
	assert.Equal(t, "12 Janpath", r.Address)
	assert.Equal(t, "+91 11 2334 5566", r.Phone)
	assert.Equal(t, "Restaurants", r.CategoryName)
	assert.InDelta(t, geo.DistanceKm(center, r.Coordinate), r.DistanceKm, 0.001)

	// The way element is positioned by its computed center.
	require.Len(t, out["hotel"], 1)
	assert.Equal(t, "The Imperial", out["hotel"][0].Name)
	assert.InDelta(t, 28.6120, out["hotel"][0].Coordinate.Lat, 1e-6)

	// Unnamed, unclassifiable, and out-of-radius elements are dropped.
	total := 0
	for _, list := range out {
		total += len(list)
	}
	assert.Equal(t, 2, total)
}

func TestLiveSearchAssignsStableRating(t *testing.T) {
	a := newAggregator(t, liveBody)
	out, err := a.LiveSearch(context.Background(), center, 10)
	require.NoError(t, err)

	first := out["restaurant"][0].Rating
	assert.GreaterOrEqual(t, first, 3.0)
	assert.LessOrEqual(t, first, 5.0)

	again, err := a.LiveSearch(context.Background(), center, 10)
	require.NoError(t, err)
	assert.Equal(t, first, again["restaurant"][0].Rating)
}

func TestLiveSearchCapsPerCategory(t *testing.T) {
	body := `{"elements":[`
	for i := 0; i < 12; i++ {
		if i > 0 {
			body += ","
		}
		body += fmt.Sprintf(`{"type":"node","id":%d,"lat":%f,"lon":77.2090,"tags":{"name":"Cafe %d","amenity":"cafe"}}`,
			i+1, 28.6139+float64(i)*0.0005, i+1)
	}
	body += `]}`

	a := newAggregator(t, body)
	out, err := a.LiveSearch(context.Background(), center, 10)
	require.NoError(t, err)

	require.Len(t, out["cafe"], 8)
	for i := 1; i < len(out["cafe"]); i++ {
		assert.GreaterOrEqual(t, out["cafe"][i].DistanceKm, out["cafe"][i-1].DistanceKm)
	}
}

func TestLiveSearchExhaustedMirrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	a := NewAggregator(overpass.NewClient(overpass.WithMirrors(srv.URL)))
	_, err := a.LiveSearch(context.Background(), center, 10)
	assert.Error(t, err)
}

func TestLiveSearchInvalidCenter(t *testing.T) {
	a := NewAggregator(overpass.NewClient())
	_, err := a.LiveSearch(context.Background(), geo.Coordinate{Lat: 95, Lng: 0}, 10)
	assert.Error(t, err)
}

func syntheticFixture(n int) []model.Place {
	places := make([]model.Place, 0, n)
	for i := 0; i < n; i++ {
		coord := geo.Coordinate{Lat: 28.62 + float64(i)*0.01, Lng: 77.22}
		places = append(places, model.Place{
			ID:          model.PlaceID("cafe", coord, model.SourceSynthetic),
			Name:        fmt.Sprintf("Synthetic Cafe %d", i+1),
			CategoryKey: "cafe",
			Coordinate:  coord,
			DistanceKm:  geo.DistanceKm(center, coord),
			Source:      model.SourceSynthetic,
		})
	}
	return places
}

func liveFixture(n int) []model.Place {
	places := make([]model.Place, 0, n)
	for i := 0; i < n; i++ {
		coord := geo.Coordinate{Lat: 28.60 - float64(i)*0.01, Lng: 77.20}
		places = append(places, model.Place{
			ID:          model.PlaceID("cafe", coord, model.SourceLive),
			Name:        fmt.Sprintf("Live Cafe %d", i+1),
			CategoryKey: "cafe",
			Coordinate:  coord,
			DistanceKm:  geo.DistanceKm(center, coord),
			Source:      model.SourceLive,
		})
	}
	return places
}

func TestMergeFillsToMinimum(t *testing.T) {
	a := NewAggregator(overpass.NewClient())
	merged := a.mergeCategory(liveFixture(2), syntheticFixture(8))

	require.Len(t, merged, 6)
	liveCount := 0
	for _, p := range merged {
		if p.Source == model.SourceLive {
			liveCount++
		}
	}
	assert.Equal(t, 2, liveCount)
	for i := 1; i < len(merged); i++ {
		assert.GreaterOrEqual(t, merged[i].DistanceKm, merged[i-1].DistanceKm)
	}
}

func TestMergeKeepsFullLiveList(t *testing.T) {
	a := NewAggregator(overpass.NewClient())
	merged := a.mergeCategory(liveFixture(8), syntheticFixture(8))

	require.Len(t, merged, 8)
	for _, p := range merged {
		assert.Equal(t, model.SourceLive, p.Source)
	}
}

func TestMergeEmptyLiveTakesSynthetic(t *testing.T) {
	a := NewAggregator(overpass.NewClient())
	merged := a.mergeCategory(nil, syntheticFixture(8))
	require.Len(t, merged, 6)
	for _, p := range merged {
		assert.Equal(t, model.SourceSynthetic, p.Source)
	}
}

func TestMergeDropsNearDuplicates(t *testing.T) {
	live := liveFixture(1)
	dup := live[0]
	dup.ID = model.PlaceID("cafe", dup.Coordinate, model.SourceSynthetic)
	dup.Source = model.SourceSynthetic
	dup.Coordinate.Lat += 0.001 // within epsilon on both axes

	a := NewAggregator(overpass.NewClient())
	merged := a.mergeCategory(live, append([]model.Place{dup}, syntheticFixture(8)...))

	for _, p := range merged {
		assert.NotEqual(t, dup.ID, p.ID)
	}
	require.Len(t, merged, 6)
}

func TestMergeCapsAtMaximum(t *testing.T) {
	a := NewAggregator(overpass.NewClient(), WithLimits(8, 12, 10))
	merged := a.mergeCategory(liveFixture(4), syntheticFixture(10))
	assert.Len(t, merged, 10)
}

func TestMergeAllCategoriesPresent(t *testing.T) {
	a := NewAggregator(overpass.NewClient())
	out := a.Merge(map[string][]model.Place{"cafe": liveFixture(3)}, map[string][]model.Place{
		"cafe": syntheticFixture(8),
	})
	assert.Len(t, out, len(model.Categories().Keys()))
	assert.Len(t, out["cafe"], 6)
	assert.Empty(t, out["restaurant"])
}

func TestEnrichAddressesRespectsBudget(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"lat":"28.61","lon":"77.20","address":{"road":"Baba Kharak Singh Marg","city":"New Delhi","state":"Delhi","country":"India"}}`)
	}))
	defer srv.Close()

	geocoder := geocode.NewClient(geocode.WithBaseURL(srv.URL), geocode.WithRateLimit(1000))
	a := NewAggregator(overpass.NewClient(),
		WithGeocoder(geocoder, geocode.NewCache(64)),
		WithEnrichBudget(3),
	)

	categories := map[string][]model.Place{"cafe": liveFixture(5)}
	a.EnrichAddresses(context.Background(), categories)

	assert.EqualValues(t, 3, calls.Load())
	enriched := 0
	for _, p := range categories["cafe"] {
		if p.VerifiedAddress {
			enriched++
			assert.Equal(t, "Baba Kharak Singh Marg", p.Address)
			assert.Equal(t, "Delhi", p.State)
		}
	}
	assert.Equal(t, 3, enriched)
}

func TestEnrichAddressesSkipsFilledAndSynthetic(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"lat":"28.61","lon":"77.20","address":{"road":"Ring Road","country":"India"}}`)
	}))
	defer srv.Close()

	geocoder := geocode.NewClient(geocode.WithBaseURL(srv.URL), geocode.WithRateLimit(1000))
	a := NewAggregator(overpass.NewClient(), WithGeocoder(geocoder, geocode.NewCache(64)))

	filled := liveFixture(1)
	filled[0].Address = "Already Known Street"
	categories := map[string][]model.Place{
		"cafe":       filled,
		"restaurant": syntheticFixture(2),
	}
	a.EnrichAddresses(context.Background(), categories)

	assert.EqualValues(t, 0, calls.Load())
	assert.Equal(t, "Already Known Street", categories["cafe"][0].Address)
}

func TestEnrichAddressesSkipsFailuresSilently(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	geocoder := geocode.NewClient(geocode.WithBaseURL(srv.URL), geocode.WithRateLimit(1000))
	a := NewAggregator(overpass.NewClient(), WithGeocoder(geocoder, geocode.NewCache(64)))

	categories := map[string][]model.Place{"cafe": liveFixture(2)}
	a.EnrichAddresses(context.Background(), categories)

	for _, p := range categories["cafe"] {
		assert.False(t, p.VerifiedAddress)
		assert.Empty(t, p.Address)
	}
}

func TestMergeWithGeneratedSynthetic(t *testing.T) {
	a := NewAggregator(overpass.NewClient())
	synthetic := map[string][]model.Place{}
	for _, key := range model.Categories().Keys() {
		synthetic[key] = synth.Deterministic(center, 5, key)
	}
	out := a.Merge(nil, synthetic)
	for key, list := range out {
		assert.GreaterOrEqual(t, len(list), 6, key)
		assert.LessOrEqual(t, len(list), 10, key)
	}
}
