package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/station-linker/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "station-linker",
	Short: "Link generation output to renewable accreditation records",
	Long:  "Joins per-unit generation output to the unit-to-station mapping, keeps renewable units, and fuzzy matches each station to the accreditation registry within its region.",
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
