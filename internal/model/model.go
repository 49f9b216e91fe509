// Package model defines the domain value objects shared across the pipeline.
package model

import (
	"fmt"

	"github.com/lokeshchintha/nearfind/internal/geo"
)

// SourceKind identifies where a place record came from.
type SourceKind string

const (
	SourceLive      SourceKind = "live"
	SourceSynthetic SourceKind = "synthetic"
)

// AcquisitionMethod identifies which tier of the location cascade produced a fix.
type AcquisitionMethod string

const (
	MethodHighAccuracy     AcquisitionMethod = "high-accuracy-sensor"
	MethodModerateAccuracy AcquisitionMethod = "moderate-accuracy"
	MethodPoorAccuracy     AcquisitionMethod = "poor-accuracy"
	MethodDelayedSensor    AcquisitionMethod = "delayed-sensor"
	MethodCellAssisted     AcquisitionMethod = "cell-assisted"
	MethodFinalAttempt     AcquisitionMethod = "final-attempt"
	MethodIPEstimate       AcquisitionMethod = "ip-estimate"
	MethodManualEntry      AcquisitionMethod = "manual-entry"
	MethodGeocoded         AcquisitionMethod = "geocoded"
)

// LocationFix is one acquired user position. Fixes are immutable; a later
// acquisition supersedes rather than mutates an earlier one.
type LocationFix struct {
	Coordinate     geo.Coordinate    `json:"coordinate"`
	AccuracyMeters float64           `json:"accuracy_meters,omitempty"`
	Method         AcquisitionMethod `json:"method"`
	CityLabel      string            `json:"city_label,omitempty"`
}

// Place is a single point of interest, live or synthetic. Places are value
// objects owned by the caller; only address enrichment fills fields post-hoc.
type Place struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	CategoryKey     string         `json:"category_key"`
	CategoryName    string         `json:"category_name"`
	Icon            string         `json:"icon"`
	Coordinate      geo.Coordinate `json:"coordinate"`
	DistanceKm      float64        `json:"distance_km"`
	Address         string         `json:"address"`
	City            string         `json:"city,omitempty"`
	State           string         `json:"state,omitempty"`
	Phone           string         `json:"phone,omitempty"`
	Website         string         `json:"website,omitempty"`
	OpeningHours    string         `json:"opening_hours,omitempty"`
	Rating          float64        `json:"rating"`
	Source          SourceKind     `json:"source"`
	VerifiedAddress bool           `json:"verified_address"`
}

// PlaceID builds the stable identifier for a place: unique per category,
// coordinate and source.
func PlaceID(categoryKey string, c geo.Coordinate, source SourceKind) string {
	return fmt.Sprintf("%s:%.5f,%.5f:%s", categoryKey, c.Lat, c.Lng, source)
}

// SearchResult maps every category key in the table to its (possibly empty)
// ranked place list.
type SearchResult struct {
	Center     geo.Coordinate     `json:"center"`
	RadiusKm   float64            `json:"radius_km"`
	Categories map[string][]Place `json:"categories"`
	LiveCount  int                `json:"live_count"`
}

// TravelMode is a supported routing profile.
type TravelMode string

const (
	ModeDriving TravelMode = "driving"
	ModeWalking TravelMode = "walking"
	ModeCycling TravelMode = "cycling"
)

// ParseTravelMode validates a mode string.
func ParseTravelMode(s string) (TravelMode, error) {
	switch TravelMode(s) {
	case ModeDriving, ModeWalking, ModeCycling:
		return TravelMode(s), nil
	}
	return "", fmt.Errorf("unknown travel mode %q", s)
}

// ManeuverKind is a canonical turn-by-turn maneuver code.
type ManeuverKind string

const (
	ManeuverDepart          ManeuverKind = "depart"
	ManeuverArrive          ManeuverKind = "arrive"
	ManeuverTurnLeft        ManeuverKind = "turn-left"
	ManeuverTurnRight       ManeuverKind = "turn-right"
	ManeuverSharpLeft       ManeuverKind = "sharp-left"
	ManeuverSharpRight      ManeuverKind = "sharp-right"
	ManeuverSlightLeft      ManeuverKind = "slight-left"
	ManeuverSlightRight     ManeuverKind = "slight-right"
	ManeuverStraight        ManeuverKind = "straight"
	ManeuverMerge           ManeuverKind = "merge"
	ManeuverRamp            ManeuverKind = "ramp"
	ManeuverFork            ManeuverKind = "fork"
	ManeuverRoundaboutEnter ManeuverKind = "roundabout-enter"
	ManeuverRoundaboutExit  ManeuverKind = "roundabout-exit"
	ManeuverUTurn           ManeuverKind = "u-turn"
)

// RouteStep is a single normalized turn-by-turn instruction.
type RouteStep struct {
	Instruction   string       `json:"instruction"`
	DistanceLabel string       `json:"distance_label"`
	DurationLabel string       `json:"duration_label"`
	Maneuver      ManeuverKind `json:"maneuver"`
}

// RouteResult is a computed route. Immutable; replaced wholesale when the
// endpoints or travel mode change.
type RouteResult struct {
	TotalDistanceKm      float64        `json:"total_distance_km"`
	TotalDurationMinutes float64        `json:"total_duration_minutes"`
	Steps                []RouteStep    `json:"steps"`
	ProviderUsed         string         `json:"provider_used"`
	Path                 []geo.Coordinate `json:"path,omitempty"`
}

// Address is a normalized reverse-geocode result.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// DisplayLine flattens the address for single-line display, skipping empty
// components.
func (a Address) DisplayLine() string {
	out := ""
	for _, part := range []string{a.Street, a.City, a.State, a.Country} {
		if part == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += part
	}
	return out
}
