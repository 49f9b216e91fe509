package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lokeshchintha/nearfind/internal/geo"
)

var (
	suggestLimit int
	suggestNear  string
	suggestJSON  bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <text>",
	Short: "Suggest place completions for partial text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		var bias *geo.Coordinate
		if suggestNear != "" {
			coord, err := parsePoint(suggestNear)
			if err != nil {
				return err
			}
			bias = &coord
		}

		results, err := env.Service.Suggest(cmd.Context(), strings.Join(args, " "), suggestLimit, bias)
		if err != nil {
			return err
		}

		if suggestJSON {
			return printJSON(results)
		}

		if len(results) == 0 {
			fmt.Println("No suggestions.")
			return nil
		}
		for _, r := range results {
			fmt.Printf("%-60s %.5f, %.5f\n", truncate(r.DisplayName, 60), r.Coordinate.Lat, r.Coordinate.Lng)
		}
		return nil
	},
}

func init() {
	suggestCmd.Flags().IntVar(&suggestLimit, "limit", 5, "maximum suggestions")
	suggestCmd.Flags().StringVar(&suggestNear, "near", "", "bias results toward lat,lng")
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(suggestCmd)
}
