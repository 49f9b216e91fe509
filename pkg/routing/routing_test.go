package routing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lokeshchintha/nearfind/internal/geo"
	"github.com/lokeshchintha/nearfind/internal/model"
)

const osrmBody = `{
	"code": "Ok",
	"routes": [{
		"distance": 12500,
		"duration": 900,
		"geometry": {"type": "LineString", "coordinates": [[77.2, 28.6], [77.25, 28.65], [77.3, 28.7]]},
		"legs": [{
			"steps": [
				{"distance": 200, "duration": 30, "name": "Janpath", "maneuver": {"type": "depart", "modifier": ""}},
				{"distance": 12000, "duration": 840, "name": "NH48", "maneuver": {"type": "turn", "modifier": "left"}},
				{"distance": 300, "duration": 30, "name": "", "maneuver": {"type": "arrive", "modifier": ""}}
			]
		}]
	}]
}`

const orsBody = `{
	"features": [{
		"properties": {
			"summary": {"distance": 13000, "duration": 960},
			"segments": [{
				"steps": [
					{"distance": 100, "duration": 20, "type": 11, "instruction": "Head east on Janpath"},
					{"distance": 12500, "duration": 900, "type": 0, "instruction": "left onto NH48"},
					{"distance": 400, "duration": 40, "type": 10, "instruction": "Arrive at destination"}
				]
			}]
		},
		"geometry": {"type": "LineString", "coordinates": [[77.2, 28.6], [77.3, 28.7]]}
	}]
}`

var (
	testStart = geo.Coordinate{Lat: 28.6, Lng: 77.2}
	testEnd   = geo.Coordinate{Lat: 28.7, Lng: 77.3}
)

func TestOSRMProvider_Route(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/route/v1/driving/77.200000,28.600000;77.300000,28.700000")
		assert.Equal(t, "geojson", r.URL.Query().Get("geometries"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, osrmBody)
	}))
	defer srv.Close()

	p := NewOSRMProvider(srv.URL, http.DefaultClient)
	result, err := p.Route(context.Background(), testStart, testEnd, model.ModeDriving)
	require.NoError(t, err)

	assert.Equal(t, "osrm", result.ProviderUsed)
	assert.InDelta(t, 12.5, result.TotalDistanceKm, 0.001)
	assert.InDelta(t, 15, result.TotalDurationMinutes, 0.001)
	require.Len(t, result.Steps, 3)
	assert.Equal(t, model.ManeuverDepart, result.Steps[0].Maneuver)
	assert.Equal(t, model.ManeuverTurnLeft, result.Steps[1].Maneuver)
	assert.Equal(t, "Turn left onto NH48", result.Steps[1].Instruction)
	assert.Equal(t, model.ManeuverArrive, result.Steps[2].Maneuver)
	require.Len(t, result.Path, 3)
	assert.Equal(t, geo.Coordinate{Lat: 28.6, Lng: 77.2}, result.Path[0])
}

func TestPathFromGeoJSON(t *testing.T) {
	path, err := pathFromGeoJSON([]byte(`{"type": "LineString", "coordinates": [[77.2, 28.6], [77.3, 28.7]]}`))
	require.NoError(t, err)
	require.Len(t, path, 2)
	assert.Equal(t, geo.Coordinate{Lat: 28.6, Lng: 77.2}, path[0])
	assert.Equal(t, geo.Coordinate{Lat: 28.7, Lng: 77.3}, path[1])

	path, err = pathFromGeoJSON(nil)
	require.NoError(t, err)
	assert.Nil(t, path)

	_, err = pathFromGeoJSON([]byte(`{"type": "Point", "coordinates": [77.2, 28.6]}`))
	require.Error(t, err)

	_, err = pathFromGeoJSON([]byte(`not json`))
	require.Error(t, err)
}

func TestPathFromGeoJSON_DownsamplesKeepingEndpoints(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"type": "LineString", "coordinates": [`)
	for i := 0; i < 501; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "[%f, %f]", 77.2+float64(i)*0.0001, 28.6+float64(i)*0.0001)
	}
	b.WriteString(`]}`)

	path, err := pathFromGeoJSON([]byte(b.String()))
	require.NoError(t, err)
	assert.LessOrEqual(t, len(path), maxPathPoints+1)
	assert.Equal(t, geo.Coordinate{Lat: 28.6, Lng: 77.2}, path[0])
	last := path[len(path)-1]
	assert.InDelta(t, 28.65, last.Lat, 1e-9)
	assert.InDelta(t, 77.25, last.Lng, 1e-9)
}

func TestOSRMProvider_NonOkCodeFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"code": "NoRoute", "routes": []}`)
	}))
	defer srv.Close()

	p := NewOSRMProvider(srv.URL, http.DefaultClient)
	_, err := p.Route(context.Background(), testStart, testEnd, model.ModeDriving)
	require.Error(t, err)
}

func TestORSProvider_Route(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v2/directions/foot-walking")
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, orsBody)
	}))
	defer srv.Close()

	p := NewORSProvider(srv.URL, "test-key", http.DefaultClient)
	result, err := p.Route(context.Background(), testStart, testEnd, model.ModeWalking)
	require.NoError(t, err)

	assert.Equal(t, "ors", result.ProviderUsed)
	assert.InDelta(t, 13, result.TotalDistanceKm, 0.001)
	require.Len(t, result.Steps, 3)
	assert.Equal(t, model.ManeuverDepart, result.Steps[0].Maneuver)
	assert.Equal(t, "Turn left onto NH48", result.Steps[1].Instruction)
	assert.Equal(t, model.ManeuverTurnLeft, result.Steps[1].Maneuver)
}

func TestORSProvider_MissingKeyFailsFast(t *testing.T) {
	p := NewORSProvider("http://unreachable.invalid", "", http.DefaultClient)
	_, err := p.Route(context.Background(), testStart, testEnd, model.ModeDriving)
	require.Error(t, err)
}

func TestRouter_FirstProviderWins(t *testing.T) {
	osrm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, osrmBody)
	}))
	defer osrm.Close()
	orsCalled := false
	ors := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		orsCalled = true
		_, _ = io.WriteString(w, orsBody)
	}))
	defer ors.Close()

	r := NewRouter(osrm.URL, ors.URL, "test-key")
	result, err := r.Compute(context.Background(), testStart, testEnd, model.ModeDriving)
	require.NoError(t, err)
	assert.Equal(t, "osrm", result.ProviderUsed)
	assert.False(t, orsCalled)
}

func TestRouter_FallsThroughToSecondProvider(t *testing.T) {
	osrm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer osrm.Close()
	ors := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, orsBody)
	}))
	defer ors.Close()

	r := NewRouter(osrm.URL, ors.URL, "test-key")
	result, err := r.Compute(context.Background(), testStart, testEnd, model.ModeWalking)
	require.NoError(t, err)
	assert.Equal(t, "ors", result.ProviderUsed)
}

func TestRouter_AllProvidersFailSynthesizes(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	r := NewRouter(down.URL, down.URL, "test-key")
	result, err := r.Compute(context.Background(), testStart, testEnd, model.ModeWalking)
	require.NoError(t, err, "provider exhaustion must degrade, not error")

	assert.Equal(t, FallbackProvider, result.ProviderUsed)
	require.NotEmpty(t, result.Steps)
	assert.Equal(t, model.ManeuverDepart, result.Steps[0].Maneuver)
	assert.Equal(t, model.ManeuverArrive, result.Steps[len(result.Steps)-1].Maneuver)
}

func TestRouter_RejectedRequestSkipsSecondProvider(t *testing.T) {
	osrm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer osrm.Close()
	orsCalled := false
	ors := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		orsCalled = true
		_, _ = io.WriteString(w, orsBody)
	}))
	defer ors.Close()

	r := NewRouter(osrm.URL, ors.URL, "test-key")
	result, err := r.Compute(context.Background(), testStart, testEnd, model.ModeDriving)
	require.NoError(t, err)
	assert.Equal(t, FallbackProvider, result.ProviderUsed)
	assert.False(t, orsCalled, "a rejected request must go straight to the synthesized route")
}

func TestRouter_InvalidCoordinates(t *testing.T) {
	r := NewRouter("http://unreachable.invalid", "http://unreachable.invalid", "")
	_, err := r.Compute(context.Background(), geo.Coordinate{Lat: 99, Lng: 0}, testEnd, model.ModeDriving)
	require.Error(t, err)
}
