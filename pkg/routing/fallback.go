package routing

import (
	"fmt"

	"github.com/lokeshchintha/nearfind/internal/geo"
	"github.com/lokeshchintha/nearfind/internal/model"
)

// FallbackProvider is the value of ProviderUsed on synthesized routes.
const FallbackProvider = "fallback"

// midRoutePhrases is the fixed instruction template set for mid-route steps.
// %s receives a mode-specific road label.
var midRoutePhrases = []string{
	"Continue along the %s",
	"Stay on the %s past the junction",
	"Follow the %s as it curves ahead",
}

// roadLabels are the mode-specific road-type names used in synthesized
// instructions.
var roadLabels = map[model.TravelMode][]string{
	model.ModeDriving: {"main road", "highway", "avenue"},
	model.ModeWalking: {"street", "lane", "walkway"},
	model.ModeCycling: {"cycle track", "street", "side road"},
}

// SynthesizeRoute builds a plausible turn-by-turn route from straight-line
// geometry when every live provider has failed. The sequence is always
// depart, an initial turn chosen from the bearing, zero to three mid-route
// instructions for longer distances, a final turn, and arrive.
func SynthesizeRoute(start, end geo.Coordinate, mode model.TravelMode) *model.RouteResult {
	distKm := geo.DistanceKm(start, end)
	bearing := geo.BearingDegrees(start, end)
	cardinal := geo.CardinalDirection(bearing)

	cruise := cruiseSpeedKmh[mode]
	approach := approachSpeedKmh[mode]
	if cruise == 0 {
		cruise, approach = cruiseSpeedKmh[model.ModeDriving], approachSpeedKmh[model.ModeDriving]
	}

	// The final approach is the shorter of 500m and a tenth of the trip.
	approachKm := 0.5
	if distKm/10 < approachKm {
		approachKm = distKm / 10
	}
	cruiseKm := distKm - approachKm

	var midCount int
	if distKm > 2 {
		midCount = int(distKm / 2)
		if midCount > 3 {
			midCount = 3
		}
	}

	labels := roadLabels[mode]
	// Deterministic picks keyed off the distance so identical inputs yield
	// identical routes.
	pick := int(distKm*10) % len(labels)

	initialKind := model.ManeuverStraight
	switch {
	case bearing > 180:
		initialKind = model.ManeuverTurnLeft
	case bearing > 0 && bearing < 180:
		initialKind = model.ManeuverTurnRight
	}

	// Movement steps that share the cruise distance: depart, initial turn,
	// mids, final turn.
	movSteps := 3 + midCount
	perStepKm := cruiseKm / float64(movSteps)
	perStepMin := perStepKm / cruise * 60

	steps := make([]model.RouteStep, 0, movSteps+1)
	steps = append(steps, model.RouteStep{
		Instruction:   fmt.Sprintf("Head %s toward your destination", cardinal),
		DistanceLabel: formatDistance(perStepKm),
		DurationLabel: formatDuration(perStepMin),
		Maneuver:      model.ManeuverDepart,
	})
	steps = append(steps, model.RouteStep{
		Instruction:   NormalizeInstruction(string(initialKind), ""),
		DistanceLabel: formatDistance(perStepKm),
		DurationLabel: formatDuration(perStepMin),
		Maneuver:      initialKind,
	})

	for i := 0; i < midCount; i++ {
		phrase := midRoutePhrases[(pick+i)%len(midRoutePhrases)]
		label := labels[(pick+i)%len(labels)]
		steps = append(steps, model.RouteStep{
			Instruction:   fmt.Sprintf(phrase, label),
			DistanceLabel: formatDistance(perStepKm),
			DurationLabel: formatDuration(perStepMin),
			Maneuver:      model.ManeuverStraight,
		})
	}

	finalKind := model.ManeuverTurnRight
	if bearing > 180 {
		finalKind = model.ManeuverTurnLeft
	}
	approachMin := approachKm / approach * 60
	steps = append(steps, model.RouteStep{
		Instruction:   NormalizeInstruction(string(finalKind), "") + " toward your destination",
		DistanceLabel: formatDistance(approachKm),
		DurationLabel: formatDuration(approachMin),
		Maneuver:      finalKind,
	})
	steps = append(steps, model.RouteStep{
		Instruction:   NormalizeInstruction("arrive", ""),
		DistanceLabel: formatDistance(0),
		DurationLabel: formatDuration(0),
		Maneuver:      model.ManeuverArrive,
	})

	totalMin := cruiseKm/cruise*60 + approachMin

	return &model.RouteResult{
		TotalDistanceKm:      distKm,
		TotalDurationMinutes: totalMin,
		Steps:                steps,
		ProviderUsed:         FallbackProvider,
		Path:                 []geo.Coordinate{start, end},
	}
}
