package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lokeshchintha/nearfind/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "nearfind",
	Short: "Discover nearby places and plan routes to them",
	Long:  "Acquires your position, finds nearby places by category from community geodata (with synthetic fill when live data is thin), and plans turn-by-turn routes.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
