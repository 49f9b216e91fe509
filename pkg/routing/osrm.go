package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	geodom "github.com/lokeshchintha/nearfind/internal/geo"
	"github.com/lokeshchintha/nearfind/internal/model"
)

// OSRMProvider adapts an OSRM routing endpoint.
type OSRMProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewOSRMProvider creates an OSRM provider against the given base URL.
func NewOSRMProvider(baseURL string, hc *http.Client) *OSRMProvider {
	return &OSRMProvider{baseURL: strings.TrimRight(baseURL, "/"), httpClient: hc}
}

// Name implements Provider.
func (p *OSRMProvider) Name() string { return "osrm" }

var osrmProfiles = map[model.TravelMode]string{
	model.ModeDriving: "driving",
	model.ModeWalking: "walking",
	model.ModeCycling: "cycling",
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64         `json:"distance"` // meters
		Duration float64         `json:"duration"` // seconds
		Geometry json.RawMessage `json:"geometry"` // GeoJSON LineString
		Legs []struct {
			Steps []struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
				Name     string  `json:"name"`
				Maneuver struct {
					Type     string `json:"type"`
					Modifier string `json:"modifier"`
				} `json:"maneuver"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// Route implements Provider.
func (p *OSRMProvider) Route(ctx context.Context, start, end geodom.Coordinate, mode model.TravelMode) (*model.RouteResult, error) {
	reqURL := fmt.Sprintf("%s/route/v1/%s/%f,%f;%f,%f?overview=full&geometries=geojson&steps=true",
		p.baseURL, osrmProfiles[mode], start.Lng, start.Lat, end.Lng, end.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "routing: osrm build request")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "routing: osrm request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("routing: osrm", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "routing: osrm read body")
	}

	var r osrmResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, eris.Wrap(err, "routing: osrm parse response")
	}
	if r.Code != "Ok" || len(r.Routes) == 0 {
		return nil, eris.Errorf("routing: osrm code %q with %d routes", r.Code, len(r.Routes))
	}

	route := r.Routes[0]
	path, err := pathFromGeoJSON(route.Geometry)
	if err != nil {
		return nil, err
	}
	result := &model.RouteResult{
		TotalDistanceKm:      route.Distance / 1000,
		TotalDurationMinutes: route.Duration / 60,
		ProviderUsed:         p.Name(),
		Path:                 path,
	}

	for _, leg := range route.Legs {
		for _, s := range leg.Steps {
			kind := osrmManeuverKind(s.Maneuver.Type, s.Maneuver.Modifier)
			result.Steps = append(result.Steps, model.RouteStep{
				Instruction:   NormalizeInstruction(string(kind), osrmStepText(s.Maneuver.Type, s.Maneuver.Modifier, s.Name)),
				DistanceLabel: formatDistance(s.Distance / 1000),
				DurationLabel: formatDuration(s.Duration / 60),
				Maneuver:      kind,
			})
		}
	}
	if len(result.Steps) == 0 {
		return nil, eris.New("routing: osrm route carried no steps")
	}
	return result, nil
}

// osrmManeuverKind maps OSRM maneuver type+modifier to the canonical kind.
func osrmManeuverKind(typ, modifier string) model.ManeuverKind {
	switch typ {
	case "depart":
		return model.ManeuverDepart
	case "arrive":
		return model.ManeuverArrive
	case "merge":
		return model.ManeuverMerge
	case "on ramp", "off ramp":
		return model.ManeuverRamp
	case "fork":
		return model.ManeuverFork
	case "roundabout", "rotary":
		return model.ManeuverRoundaboutEnter
	case "exit roundabout", "exit rotary":
		return model.ManeuverRoundaboutExit
	case "continue":
		if modifier == "uturn" {
			return model.ManeuverUTurn
		}
		return model.ManeuverStraight
	}

	switch modifier {
	case "left":
		return model.ManeuverTurnLeft
	case "right":
		return model.ManeuverTurnRight
	case "sharp left":
		return model.ManeuverSharpLeft
	case "sharp right":
		return model.ManeuverSharpRight
	case "slight left":
		return model.ManeuverSlightLeft
	case "slight right":
		return model.ManeuverSlightRight
	case "uturn":
		return model.ManeuverUTurn
	case "straight":
		return model.ManeuverStraight
	}
	return model.ManeuverStraight
}

// osrmStepText builds the free-text fed to the normalizer when the canonical
// phrase needs a road name appended.
func osrmStepText(typ, modifier, name string) string {
	text := typ
	if modifier != "" {
		text = typ + " " + modifier
	}
	if name != "" {
		text += " onto " + name
	}
	return text
}

// maxPathPoints caps the stored path; longer geometries are downsampled.
const maxPathPoints = 200

// pathFromGeoJSON decodes a provider geometry into the domain path. Both
// providers emit GeoJSON LineStrings; any other geometry type is a wire
// error. Endpoints always survive downsampling.
func pathFromGeoJSON(raw json.RawMessage) ([]geodom.Coordinate, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var g geom.T
	if err := geojson.Unmarshal(raw, &g); err != nil {
		return nil, eris.Wrap(err, "routing: decode geometry")
	}
	line, ok := g.(*geom.LineString)
	if !ok {
		return nil, eris.Errorf("routing: geometry is %T, not a line string", g)
	}

	n := line.NumCoords()
	stride := 1
	if n > maxPathPoints {
		stride = (n + maxPathPoints - 1) / maxPathPoints
	}
	out := make([]geodom.Coordinate, 0, n/stride+2)
	for i := 0; i < n; i += stride {
		c := line.Coord(i)
		out = append(out, geodom.Coordinate{Lat: c.Y(), Lng: c.X()})
	}
	if last := n - 1; last > 0 && last%stride != 0 {
		c := line.Coord(last)
		out = append(out, geodom.Coordinate{Lat: c.Y(), Lng: c.X()})
	}
	return out, nil
}
