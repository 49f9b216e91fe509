package main

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/lokeshchintha/nearfind/internal/geo"
	"github.com/lokeshchintha/nearfind/internal/model"
	"github.com/lokeshchintha/nearfind/internal/service"
)

// resolveOrigin produces the starting fix for a command: an explicit
// coordinate beats a place name, and with neither the positioning cascade
// runs.
func resolveOrigin(ctx context.Context, cmd *cobra.Command, svc *service.Service, at string, lat, lng float64) (*model.LocationFix, error) {
	switch {
	case cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng"):
		if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
			return nil, eris.New("both --lat and --lng are required")
		}
		return svc.ManualPoint(ctx, geo.Coordinate{Lat: lat, Lng: lng})
	case at != "":
		return svc.ResolvePoint(ctx, at)
	default:
		return svc.AcquireLocation(ctx)
	}
}

// parsePoint reads "lat,lng" into a coordinate.
func parsePoint(s string) (geo.Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geo.Coordinate{}, eris.Errorf("invalid point %q, want lat,lng", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.Coordinate{}, eris.Wrapf(err, "invalid latitude in %q", s)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.Coordinate{}, eris.Wrapf(err, "invalid longitude in %q", s)
	}
	coord := geo.Coordinate{Lat: lat, Lng: lng}
	return coord, coord.Validate()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
