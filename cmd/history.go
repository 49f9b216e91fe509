package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyJSON  bool
	historyPrune int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent positions, searches, and routes",
}

var historyLocationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "Show recently acquired positions",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()
		if env.Store == nil {
			return eris.New("recency store is disabled (store.path is empty)")
		}

		records, err := env.Store.ListLocations(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if historyJSON {
			return printJSON(records)
		}
		for _, r := range records {
			line := fmt.Sprintf("%s  %.5f, %.5f  %s",
				r.CreatedAt.Local().Format("2006-01-02 15:04"),
				r.Fix.Coordinate.Lat, r.Fix.Coordinate.Lng, r.Fix.Method)
			if r.Fix.CityLabel != "" {
				line += "  " + r.Fix.CityLabel
			}
			fmt.Println(line)
		}
		return nil
	},
}

var historySearchesCmd = &cobra.Command{
	Use:   "searches",
	Short: "Show recent place searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()
		if env.Store == nil {
			return eris.New("recency store is disabled (store.path is empty)")
		}

		records, err := env.Store.ListSearches(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if historyJSON {
			return printJSON(records)
		}
		for _, r := range records {
			total := 0
			for _, list := range r.Result.Categories {
				total += len(list)
			}
			fmt.Printf("%s  %.5f, %.5f  %.1f km  %d places (%d live)\n",
				r.CreatedAt.Local().Format("2006-01-02 15:04"),
				r.Result.Center.Lat, r.Result.Center.Lng,
				r.Result.RadiusKm, total, r.Result.LiveCount)
		}
		return nil
	},
}

var historyRoutesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Show recently planned routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()
		if env.Store == nil {
			return eris.New("recency store is disabled (store.path is empty)")
		}

		records, err := env.Store.ListRoutes(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if historyJSON {
			return printJSON(records)
		}
		for _, r := range records {
			fmt.Printf("%s  to %s  %.1f km  %.0f min  %s/%s\n",
				r.CreatedAt.Local().Format("2006-01-02 15:04"),
				r.EndLabel, r.TotalDistanceKm, r.DurationMinutes, r.Mode, r.ProviderUsed)
		}
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop all but the newest records",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()
		if env.Store == nil {
			return eris.New("recency store is disabled (store.path is empty)")
		}

		removed, err := env.Store.Prune(cmd.Context(), historyPrune)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d records.\n", removed)
		return nil
	},
}

func init() {
	historyCmd.PersistentFlags().IntVar(&historyLimit, "limit", 20, "maximum records to show")
	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyPruneCmd.Flags().IntVar(&historyPrune, "keep", 50, "records to keep per table")
	historyCmd.AddCommand(historyLocationsCmd, historySearchesCmd, historyRoutesCmd, historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}
