package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lokeshchintha/nearfind/internal/model"
)

var (
	searchAt       string
	searchLat      float64
	searchLng      float64
	searchRadiusKm float64
	searchCategory string
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find nearby places by category",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		fix, err := resolveOrigin(cmd.Context(), cmd, env.Service, searchAt, searchLat, searchLng)
		if err != nil {
			return err
		}

		result, err := env.Service.SearchPlaces(cmd.Context(), fix.Coordinate, searchRadiusKm)
		if err != nil {
			return err
		}

		if searchJSON {
			return printJSON(result)
		}

		printSearchResult(result, searchCategory)
		return nil
	},
}

func printSearchResult(result *model.SearchResult, onlyCategory string) {
	fmt.Printf("Places within %.1f km of %.5f, %.5f (%d live)\n\n",
		result.RadiusKm, result.Center.Lat, result.Center.Lng, result.LiveCount)

	for _, def := range model.Categories().All() {
		if onlyCategory != "" && def.Key != onlyCategory {
			continue
		}
		list := result.Categories[def.Key]
		if len(list) == 0 {
			continue
		}
		fmt.Printf("%s %s\n", def.Icon, def.DisplayName)
		for _, p := range list {
			line := fmt.Sprintf("  %-34s %6.2f km", truncate(p.Name, 34), p.DistanceKm)
			if p.Address != "" {
				line += "  " + p.Address
			}
			if p.Source == model.SourceSynthetic {
				line += "  (estimated)"
			}
			fmt.Println(line)
		}
		fmt.Println()
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n-1]) + "…"
}

func init() {
	searchCmd.Flags().StringVar(&searchAt, "at", "", "search around a place name instead of your position")
	searchCmd.Flags().Float64Var(&searchLat, "lat", 0, "search around an explicit latitude")
	searchCmd.Flags().Float64Var(&searchLng, "lng", 0, "search around an explicit longitude")
	searchCmd.Flags().Float64Var(&searchRadiusKm, "radius", 5, "search radius in km")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "show a single category only")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(searchCmd)
}
