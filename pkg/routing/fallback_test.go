package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lokeshchintha/nearfind/internal/geo"
	"github.com/lokeshchintha/nearfind/internal/model"
)

func TestSynthesizeRoute_ShapeAndProvenance(t *testing.T) {
	start := geo.Coordinate{Lat: 28.6, Lng: 77.2}
	end := geo.Coordinate{Lat: 28.7, Lng: 77.3}

	result := SynthesizeRoute(start, end, model.ModeWalking)

	assert.Equal(t, FallbackProvider, result.ProviderUsed)
	require.NotEmpty(t, result.Steps)
	assert.Equal(t, model.ManeuverDepart, result.Steps[0].Maneuver)
	assert.Equal(t, model.ManeuverArrive, result.Steps[len(result.Steps)-1].Maneuver)
	assert.InDelta(t, geo.DistanceKm(start, end), result.TotalDistanceKm, 0.001)
	assert.Greater(t, result.TotalDurationMinutes, 0.0)
	assert.Equal(t, []geo.Coordinate{start, end}, result.Path)
}

func TestSynthesizeRoute_InitialTurnFollowsBearing(t *testing.T) {
	origin := geo.Coordinate{Lat: 0, Lng: 0}

	// Due east: bearing ~90, expect a right turn.
	east := SynthesizeRoute(origin, geo.Coordinate{Lat: 0, Lng: 0.1}, model.ModeDriving)
	assert.Equal(t, model.ManeuverTurnRight, east.Steps[1].Maneuver)

	// Due west: bearing ~270, expect a left turn.
	west := SynthesizeRoute(origin, geo.Coordinate{Lat: 0, Lng: -0.1}, model.ModeDriving)
	assert.Equal(t, model.ManeuverTurnLeft, west.Steps[1].Maneuver)

	// Due north: bearing 0, expect straight.
	north := SynthesizeRoute(origin, geo.Coordinate{Lat: 0.1, Lng: 0}, model.ModeDriving)
	assert.Equal(t, model.ManeuverStraight, north.Steps[1].Maneuver)

	// Due south: bearing exactly 180, also straight.
	south := SynthesizeRoute(origin, geo.Coordinate{Lat: -0.1, Lng: 0}, model.ModeDriving)
	assert.Equal(t, model.ManeuverStraight, south.Steps[1].Maneuver)
}

func TestSynthesizeRoute_MidStepsScaleWithDistance(t *testing.T) {
	origin := geo.Coordinate{Lat: 28.6, Lng: 77.2}

	countMids := func(r *model.RouteResult) int {
		// depart + initial + mids + final + arrive
		return len(r.Steps) - 4
	}

	short := SynthesizeRoute(origin, geo.Destination(origin, 90, 1), model.ModeDriving)
	assert.Equal(t, 0, countMids(short), "no mid-route steps under 2km")

	medium := SynthesizeRoute(origin, geo.Destination(origin, 90, 5), model.ModeDriving)
	assert.GreaterOrEqual(t, countMids(medium), 1)
	assert.LessOrEqual(t, countMids(medium), 3)

	long := SynthesizeRoute(origin, geo.Destination(origin, 90, 40), model.ModeDriving)
	assert.Equal(t, 3, countMids(long), "mid-route steps cap at 3")
}

func TestSynthesizeRoute_DurationUsesModeSpeeds(t *testing.T) {
	origin := geo.Coordinate{Lat: 28.6, Lng: 77.2}
	dest := geo.Destination(origin, 45, 10)

	driving := SynthesizeRoute(origin, dest, model.ModeDriving)
	walking := SynthesizeRoute(origin, dest, model.ModeWalking)
	cycling := SynthesizeRoute(origin, dest, model.ModeCycling)

	// 10km at ~50/5/15 km/h cruise with a slower final 500m.
	assert.InDelta(t, 12.4, driving.TotalDurationMinutes, 1.0)
	assert.InDelta(t, 121.5, walking.TotalDurationMinutes, 3.0)
	assert.InDelta(t, 41.0, cycling.TotalDurationMinutes, 2.0)

	assert.Less(t, driving.TotalDurationMinutes, cycling.TotalDurationMinutes)
	assert.Less(t, cycling.TotalDurationMinutes, walking.TotalDurationMinutes)
}

func TestSynthesizeRoute_Deterministic(t *testing.T) {
	start := geo.Coordinate{Lat: 12.9716, Lng: 77.5946}
	end := geo.Coordinate{Lat: 13.0827, Lng: 80.2707}

	a := SynthesizeRoute(start, end, model.ModeDriving)
	b := SynthesizeRoute(start, end, model.ModeDriving)
	assert.Equal(t, a, b)
}

func TestFormatLabels(t *testing.T) {
	assert.Equal(t, "350 m", formatDistance(0.35))
	assert.Equal(t, "1.2 km", formatDistance(1.2))
	assert.Equal(t, "1 min", formatDuration(0.2))
	assert.Equal(t, "45 min", formatDuration(45.4))
	assert.Equal(t, "2 h", formatDuration(120))
	assert.Equal(t, "1 h 5 min", formatDuration(65))
}
