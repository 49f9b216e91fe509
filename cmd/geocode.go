package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	geocodeReverse bool
	geocodeJSON    bool
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode <query>",
	Short: "Turn a place name into coordinates, or coordinates into an address",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		query := strings.Join(args, " ")

		if geocodeReverse {
			coord, err := parsePoint(query)
			if err != nil {
				return err
			}
			fix, err := env.Service.ManualPoint(cmd.Context(), coord)
			if err != nil {
				return err
			}
			if geocodeJSON {
				return printJSON(fix)
			}
			if fix.CityLabel == "" {
				fmt.Println("No address found.")
				return nil
			}
			fmt.Printf("%.5f, %.5f is near %s\n", coord.Lat, coord.Lng, fix.CityLabel)
			return nil
		}

		fix, err := env.Service.ResolvePoint(cmd.Context(), query)
		if err != nil {
			return err
		}
		if geocodeJSON {
			return printJSON(fix)
		}
		fmt.Printf("%s\n  %.5f, %.5f\n", fix.CityLabel, fix.Coordinate.Lat, fix.Coordinate.Lng)
		return nil
	},
}

func init() {
	geocodeCmd.Flags().BoolVar(&geocodeReverse, "reverse", false, "treat the query as lat,lng and find its address")
	geocodeCmd.Flags().BoolVar(&geocodeJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(geocodeCmd)
}
