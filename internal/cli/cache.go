package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/marketlens/scout/internal/cache"
	"github.com/marketlens/scout/internal/ui"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the result caches",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry counts and hit rates",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		fmt.Printf("\n%sSearch cache%s\n", ui.ColorBold, ui.ColorReset)
		printStats(a.SearchCache.Stats())
		fmt.Printf("\n%sAnalysis cache%s\n", ui.ColorBold, ui.ColorReset)
		printStats(a.AnalysisCache.Stats())
		return nil
	},
}

var cacheClearPrefix string

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached results",
	Example: `  # Everything
  scout cache clear

  # One source's searches only
  scout cache clear --prefix danggeun:`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		removed := a.SearchCache.Clear(cacheClearPrefix) + a.AnalysisCache.Clear(cacheClearPrefix)
		fmt.Printf("%s✓%s Removed %d cached entries\n", ui.ColorGreen, ui.ColorReset, removed)
		return nil
	},
}

var cacheSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Physically remove expired entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		removed := a.SearchCache.Sweep() + a.AnalysisCache.Sweep()
		fmt.Printf("%s✓%s Swept %d expired entries\n", ui.ColorGreen, ui.ColorReset, removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheSweepCmd)

	cacheClearCmd.Flags().StringVar(&cacheClearPrefix, "prefix", "", "Only clear keys with this prefix (e.g. \"bunjang:\")")
}

func printStats(s cache.Stats) {
	total := s.Hits + s.Misses
	rate := 0.0
	if total > 0 {
		rate = float64(s.Hits) / float64(total) * 100
	}
	fmt.Printf("  entries: %d\n  bytes:   %d\n  hits:    %d / %d (%.0f%%)\n", s.Entries, s.Bytes, s.Hits, total, rate)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
