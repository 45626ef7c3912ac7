package cli

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/marketlens/scout/internal/app"
	"github.com/marketlens/scout/internal/config"
)

var rootCmd = &cobra.Command{
	Use:     "scout",
	Short:   "Search Korean second-hand marketplaces and compare prices",
	Long:    `Scout searches danggeun, bunjang, junggonara and coupang concurrently, merges the listings, and reconciles prices against the retail baseline.`,
	Version: "0.1.0",
}

// Execute runs the CLI. The application is initialized lazily in
// PersistentPreRunE so help and version never start browsers.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetApp() != nil {
			return nil
		}
		cfg, err := config.Load(rootCmd)
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		SetApp(a)
		return nil
	}

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		a := GetApp()
		if a == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), a.Config.NavTimeout)
		defer cancel()
		if err := a.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("Shutdown reported errors")
		}
		SetApp(nil)
	}

	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("json", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().String("chrome-path", "", "Path to the Chrome/Chromium binary")
	rootCmd.PersistentFlags().String("region", "", "Region slug for region-scoped marketplaces")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
