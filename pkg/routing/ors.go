package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/lokeshchintha/nearfind/internal/geo"
	"github.com/lokeshchintha/nearfind/internal/model"
)

// ORSProvider adapts an openrouteservice directions endpoint. Its wire shape
// differs from OSRM's (GeoJSON features, integer instruction types); the
// adapter normalizes both to the same RouteResult.
type ORSProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewORSProvider creates an openrouteservice provider.
func NewORSProvider(baseURL, apiKey string, hc *http.Client) *ORSProvider {
	return &ORSProvider{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, httpClient: hc}
}

// Name implements Provider.
func (p *ORSProvider) Name() string { return "ors" }

var orsProfiles = map[model.TravelMode]string{
	model.ModeDriving: "driving-car",
	model.ModeWalking: "foot-walking",
	model.ModeCycling: "cycling-regular",
}

// orsManeuvers maps openrouteservice integer instruction types.
var orsManeuvers = map[int]model.ManeuverKind{
	0:  model.ManeuverTurnLeft,
	1:  model.ManeuverTurnRight,
	2:  model.ManeuverSharpLeft,
	3:  model.ManeuverSharpRight,
	4:  model.ManeuverSlightLeft,
	5:  model.ManeuverSlightRight,
	6:  model.ManeuverStraight,
	7:  model.ManeuverRoundaboutEnter,
	8:  model.ManeuverRoundaboutExit,
	9:  model.ManeuverUTurn,
	10: model.ManeuverArrive,
	11: model.ManeuverDepart,
	12: model.ManeuverFork,
	13: model.ManeuverFork,
}

type orsResponse struct {
	Features []struct {
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"` // meters
				Duration float64 `json:"duration"` // seconds
			} `json:"summary"`
			Segments []struct {
				Steps []struct {
					Distance    float64 `json:"distance"`
					Duration    float64 `json:"duration"`
					Type        int     `json:"type"`
					Instruction string  `json:"instruction"`
				} `json:"steps"`
			} `json:"segments"`
		} `json:"properties"`
		Geometry json.RawMessage `json:"geometry"`
	} `json:"features"`
}

// Route implements Provider. A missing API key is a normal non-success:
// the cascade advances to the fallback.
func (p *ORSProvider) Route(ctx context.Context, start, end geo.Coordinate, mode model.TravelMode) (*model.RouteResult, error) {
	if p.apiKey == "" {
		return nil, eris.New("routing: ors api key not configured")
	}

	reqURL := fmt.Sprintf("%s/v2/directions/%s?api_key=%s&start=%f,%f&end=%f,%f",
		p.baseURL, orsProfiles[mode], p.apiKey, start.Lng, start.Lat, end.Lng, end.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "routing: ors build request")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "routing: ors request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("routing: ors", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "routing: ors read body")
	}

	var r orsResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, eris.Wrap(err, "routing: ors parse response")
	}
	if len(r.Features) == 0 {
		return nil, eris.New("routing: ors returned no features")
	}

	feature := r.Features[0]
	path, err := pathFromGeoJSON(feature.Geometry)
	if err != nil {
		return nil, err
	}
	result := &model.RouteResult{
		TotalDistanceKm:      feature.Properties.Summary.Distance / 1000,
		TotalDurationMinutes: feature.Properties.Summary.Duration / 60,
		ProviderUsed:         p.Name(),
		Path:                 path,
	}

	for _, seg := range feature.Properties.Segments {
		for _, s := range seg.Steps {
			kind, ok := orsManeuvers[s.Type]
			if !ok {
				kind = model.ManeuverStraight
			}
			result.Steps = append(result.Steps, model.RouteStep{
				Instruction:   NormalizeInstruction("", s.Instruction),
				DistanceLabel: formatDistance(s.Distance / 1000),
				DurationLabel: formatDuration(s.Duration / 60),
				Maneuver:      kind,
			})
		}
	}
	if len(result.Steps) == 0 {
		return nil, eris.New("routing: ors route carried no steps")
	}
	return result, nil
}
