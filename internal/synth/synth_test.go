package synth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lokeshchintha/nearfind/internal/geo"
	"github.com/lokeshchintha/nearfind/internal/model"
	"github.com/lokeshchintha/nearfind/pkg/geocode"
)

var delhi = geo.Coordinate{Lat: 28.6139, Lng: 77.2090}

func TestDeterministicIsByteIdentical(t *testing.T) {
	first := Deterministic(delhi, 10, "restaurant")
	second := Deterministic(delhi, 10, "restaurant")

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDeterministicShape(t *testing.T) {
	places := Deterministic(delhi, 10, "cafe")

	require.GreaterOrEqual(t, len(places), 6)
	require.LessOrEqual(t, len(places), 10)

	for i, p := range places {
		assert.Equal(t, "cafe", p.CategoryKey)
		assert.Equal(t, model.SourceSynthetic, p.Source)
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Address)
		assert.NotEmpty(t, p.OpeningHours)
		assert.NotEmpty(t, p.Phone)
		assert.GreaterOrEqual(t, p.Rating, 3.0)
		assert.LessOrEqual(t, p.Rating, 5.0)
		assert.InDelta(t, p.DistanceKm, geo.DistanceKm(delhi, p.Coordinate), 0.001)
		assert.LessOrEqual(t, p.DistanceKm, 0.8*10+0.01)
		if i > 0 {
			assert.GreaterOrEqual(t, p.DistanceKm, places[i-1].DistanceKm)
		}
	}
}

func TestDeterministicVariesByCategory(t *testing.T) {
	cafes := Deterministic(delhi, 10, "cafe")
	hotels := Deterministic(delhi, 10, "hotel")
	require.NotEmpty(t, cafes)
	require.NotEmpty(t, hotels)
	assert.NotEqual(t, cafes[0].Coordinate, hotels[0].Coordinate)
}

func TestDeterministicUnknownCategory(t *testing.T) {
	assert.Nil(t, Deterministic(delhi, 10, "spaceport"))
}

func TestRatingForStableAndBounded(t *testing.T) {
	for _, id := range []string{"node/1", "node/2", "way/40008", ""} {
		r := RatingFor(id)
		assert.GreaterOrEqual(t, r, 3.0)
		assert.LessOrEqual(t, r, 5.0)
		assert.Equal(t, r, RatingFor(id))
	}
	assert.NotEqual(t, RatingFor("node/1"), RatingFor("node/2"))
}

func TestRegionLabels(t *testing.T) {
	city, localities := region(delhi)
	assert.Equal(t, "New Delhi", city)
	assert.Contains(t, localities, "Connaught Place")

	// Outside every metro box the city comes from the fixed fallback list,
	// and the same coordinate always picks the same city.
	remote := geo.Coordinate{Lat: 10.0, Lng: 76.0}
	first, _ := region(remote)
	second, _ := region(remote)
	assert.Equal(t, first, second)
	assert.Contains(t, fallbackCities, first)
}

func TestGenerateWithoutGeocoder(t *testing.T) {
	g := NewGenerator()
	out := g.Generate(context.Background(), delhi, 5)

	require.Len(t, out, len(model.Categories().Keys()))
	for key, places := range out {
		require.NotEmpty(t, places, key)
		for _, p := range places {
			assert.False(t, p.VerifiedAddress)
		}
	}
}

func TestGenerateVerifiesBoundedAddresses(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"lat":"28.61","lon":"77.20","address":{"road":"Janpath","city":"New Delhi","state":"Delhi","country":"India"}}`))
	}))
	defer srv.Close()

	client := geocode.NewClient(
		geocode.WithBaseURL(srv.URL),
		geocode.WithRateLimit(1000),
	)
	g := NewGenerator(WithGeocoder(client, geocode.NewCache(64)))
	out := g.Generate(context.Background(), delhi, 5)

	verified := 0
	for key, places := range out {
		perCategory := 0
		for _, p := range places {
			if p.VerifiedAddress {
				verified++
				perCategory++
				assert.Equal(t, "Janpath", p.Address)
				assert.Equal(t, "New Delhi", p.City)
				assert.Equal(t, "Delhi", p.State)
			}
		}
		assert.LessOrEqual(t, perCategory, 2, key)
	}
	assert.LessOrEqual(t, verified, 12)
	assert.Greater(t, verified, 0)
}

func TestGenerateSurvivesGeocoderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := geocode.NewClient(geocode.WithBaseURL(srv.URL), geocode.WithRateLimit(1000))
	g := NewGenerator(WithGeocoder(client, geocode.NewCache(64)))
	out := g.Generate(context.Background(), delhi, 5)

	require.NotEmpty(t, out)
	for _, places := range out {
		for _, p := range places {
			assert.False(t, p.VerifiedAddress)
		}
	}
}
