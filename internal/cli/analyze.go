package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marketlens/scout/internal/ui"
	"github.com/marketlens/scout/pkg/models"
)

var (
	analyzeTitle  string
	analyzePrice  int64
	analyzeSource string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [product-url]",
	Short: "Compare a listing's price against the market",
	Long: `Analyze reconciles one listing against reference-marketplace evidence and
reports the market price, the disparity, and the closest comparable listings.

The listing is looked up in the archive by product URL; pass --title and
--price instead to analyze a listing that was never archived.`,
	Example: `  # Analyze an archived listing
  scout analyze https://www.daangn.com/kr/buy-sell/아이폰-13-abc123

  # Ad-hoc analysis without an archived listing
  scout analyze --title "아이폰 13 128GB" --price 450000`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeTitle, "title", "", "Listing title for ad-hoc analysis")
	analyzeCmd.Flags().Int64Var(&analyzePrice, "price", 0, "Listing price in won for ad-hoc analysis")
	analyzeCmd.Flags().StringVar(&analyzeSource, "source", "", "Listing source for ad-hoc analysis")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a := GetApp()

	var subject models.Listing
	switch {
	case len(args) == 1:
		found, err := a.Archive.FindByURL(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if found == nil {
			return fmt.Errorf("listing not archived yet; run a search first or pass --title and --price")
		}
		subject = *found
	case analyzeTitle != "" && analyzePrice > 0:
		subject = models.Listing{
			Title:  analyzeTitle,
			Price:  analyzePrice,
			Source: models.Source(analyzeSource),
		}
	default:
		return fmt.Errorf("pass a product URL or both --title and --price")
	}

	analysis, err := a.Market.Analyze(cmd.Context(), subject)
	if err != nil {
		return err
	}

	printAnalysis(subject, analysis)
	return nil
}

func printAnalysis(subject models.Listing, analysis *models.MarketAnalysis) {
	fmt.Printf("\n%s%s%s\n", ui.ColorBold+ui.ColorCyan, subject.Title, ui.ColorReset)
	fmt.Printf("  Asking price   %s\n", ui.FormatKRW(subject.Price))

	label := "Market price"
	if analysis.Estimated {
		label = "Market price (estimated)"
	}
	fmt.Printf("  %-14s %s\n", label, ui.FormatKRW(analysis.MarketPrice))

	verdict := ui.ColorRed + "above market" + ui.ColorReset
	if analysis.IsLowerThanMarket {
		verdict = ui.ColorGreen + "below market" + ui.ColorReset
	}
	fmt.Printf("  Disparity      %s (%.1f%%, %s)\n", ui.FormatKRW(analysis.Disparity), analysis.DisparityPercentage, verdict)

	if len(analysis.Comparables) > 0 {
		fmt.Printf("\n%sComparable listings%s\n", ui.ColorBold, ui.ColorReset)
		for _, c := range analysis.Comparables {
			fmt.Printf("  %s  %s%s%s\n", ui.FormatKRW(c.Price), ui.ColorDim, c.Title, ui.ColorReset)
		}
	} else if analysis.Estimated {
		fmt.Printf("\n%sNo comparable listings found; estimate derived from category factors.%s\n", ui.ColorDim, ui.ColorReset)
	}
}
