package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/lokeshchintha/nearfind/internal/geo"
	"github.com/lokeshchintha/nearfind/internal/model"
	"github.com/lokeshchintha/nearfind/pkg/routing"
)

var (
	routeAt   string
	routeLat  float64
	routeLng  float64
	routeTo   string
	routeMode string
	routeJSON bool
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Plan a route to a destination",
	RunE: func(cmd *cobra.Command, args []string) error {
		if routeTo == "" {
			return eris.New("--to is required (a place name or lat,lng)")
		}
		mode, err := model.ParseTravelMode(routeMode)
		if err != nil {
			return err
		}

		env, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		fix, err := resolveOrigin(cmd.Context(), cmd, env.Service, routeAt, routeLat, routeLng)
		if err != nil {
			return err
		}

		end, endLabel, err := resolveDestination(cmd, env, routeTo)
		if err != nil {
			return err
		}

		route, err := env.Service.ComputeRoute(cmd.Context(), fix, end, endLabel, mode)
		if err != nil {
			return err
		}

		if routeJSON {
			return printJSON(route)
		}

		printRoute(route, endLabel)
		return nil
	},
}

// resolveDestination accepts either an explicit "lat,lng" pair or a place
// name to forward geocode.
func resolveDestination(cmd *cobra.Command, env *appEnv, to string) (geo.Coordinate, string, error) {
	if coord, err := parsePoint(to); err == nil {
		return coord, to, nil
	}
	fix, err := env.Service.ResolvePoint(cmd.Context(), to)
	if err != nil {
		return geo.Coordinate{}, "", err
	}
	label := fix.CityLabel
	if label == "" {
		label = to
	}
	return fix.Coordinate, label, nil
}

func printRoute(route *model.RouteResult, endLabel string) {
	fmt.Printf("Route to %s: %.1f km, about %.0f min", endLabel, route.TotalDistanceKm, route.TotalDurationMinutes)
	if route.ProviderUsed == routing.FallbackProvider {
		fmt.Print(" (estimated directions)")
	}
	fmt.Print("\n\n")

	for i, step := range route.Steps {
		fmt.Printf("%3d. %s", i+1, step.Instruction)
		if step.DistanceLabel != "" {
			fmt.Printf("  (%s, %s)", step.DistanceLabel, step.DurationLabel)
		}
		fmt.Println()
	}
}

func init() {
	routeCmd.Flags().StringVar(&routeAt, "at", "", "start from a place name instead of your position")
	routeCmd.Flags().Float64Var(&routeLat, "lat", 0, "start from an explicit latitude")
	routeCmd.Flags().Float64Var(&routeLng, "lng", 0, "start from an explicit longitude")
	routeCmd.Flags().StringVar(&routeTo, "to", "", "destination place name or lat,lng")
	routeCmd.Flags().StringVar(&routeMode, "mode", "driving", "travel mode: driving, walking, or cycling")
	routeCmd.Flags().BoolVar(&routeJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(routeCmd)
}
