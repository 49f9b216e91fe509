package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lokeshchintha/nearfind/internal/locate"
)

var locateJSON bool

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Acquire your current position",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		fix, err := env.Service.AcquireLocation(cmd.Context())
		if err != nil {
			var locErr *locate.LocationError
			if errors.As(err, &locErr) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Could not acquire a position (%s).\n%s\n", locErr.Reason, locErr.Suggestion)
			}
			return err
		}

		if locateJSON {
			return printJSON(fix)
		}

		fmt.Printf("Position: %.5f, %.5f\n", fix.Coordinate.Lat, fix.Coordinate.Lng)
		fmt.Printf("Method:   %s\n", fix.Method)
		if fix.AccuracyMeters > 0 {
			fmt.Printf("Accuracy: ±%.0f m\n", fix.AccuracyMeters)
		}
		if fix.CityLabel != "" {
			fmt.Printf("Near:     %s\n", fix.CityLabel)
		}
		return nil
	},
}

func init() {
	locateCmd.Flags().BoolVar(&locateJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(locateCmd)
}
