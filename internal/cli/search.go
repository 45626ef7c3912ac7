package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/marketlens/scout/internal/output"
	"github.com/marketlens/scout/internal/search"
	"github.com/marketlens/scout/internal/ui"
	"github.com/marketlens/scout/pkg/models"
)

var (
	searchSources    []string
	searchLimit      int
	searchMinPrice   int64
	searchMaxPrice   int64
	searchOutput     string
	searchFormat     string
	searchSaveImages string
	searchCompare    bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search all marketplaces concurrently",
	Long: `Search runs the query against every supported marketplace at once and
merges the listings. Sources that fail are reported separately; the rest of
the results still come back.`,
	Example: `  # Search everything
  scout search "아이폰 13"

  # Only two sources, capped at 5 listings each
  scout search "닌텐도 스위치" --sources danggeun,bunjang --limit 5

  # Price band plus CSV export
  scout search "맥북 에어" --min-price 500000 --max-price 900000 --output results.csv

  # Compare average prices across sources
  scout search "아이패드" --compare`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringSliceVarP(&searchSources, "sources", "s", nil, "Marketplaces to search (danggeun, bunjang, junggonara, coupang)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 10, "Maximum listings per source")
	searchCmd.Flags().Int64Var(&searchMinPrice, "min-price", 0, "Drop listings priced below this (won)")
	searchCmd.Flags().Int64Var(&searchMaxPrice, "max-price", 0, "Drop listings priced above this (won)")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "", "Save results to a file (.json, .csv, .md)")
	searchCmd.Flags().StringVarP(&searchFormat, "format", "f", "", "Stdout format: json, csv, or markdown (default: table)")
	searchCmd.Flags().StringVar(&searchSaveImages, "save-images", "", "Download listing images into this directory")
	searchCmd.Flags().BoolVar(&searchCompare, "compare", false, "Summarize average prices per source instead of listing results")
}

func parseSources(names []string) ([]models.Source, error) {
	var out []models.Source
	for _, name := range names {
		src := models.Source(strings.ToLower(strings.TrimSpace(name)))
		if !src.Valid() {
			return nil, fmt.Errorf("unknown source %q (want one of: danggeun, bunjang, junggonara, coupang)", name)
		}
		out = append(out, src)
	}
	return out, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	a := GetApp()
	query := args[0]

	sources, err := parseSources(searchSources)
	if err != nil {
		return err
	}

	opts := search.Options{
		Sources: sources,
		Limit:   searchLimit,
		Filters: models.SearchFilters{PriceMin: searchMinPrice, PriceMax: searchMaxPrice},
	}

	total := len(sources)
	if total == 0 {
		total = len(models.AllSources)
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Searching"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionShowCount(),
	)
	opts.OnSourceDone = func(models.Source, int, error) {
		_ = bar.Add(1)
	}

	if searchCompare {
		cmp, err := a.Search.Compare(cmd.Context(), query, opts)
		if err != nil {
			return err
		}
		printComparison(cmp)
		return nil
	}

	result, err := a.Search.Search(cmd.Context(), query, opts)
	if err != nil {
		return err
	}

	if searchSaveImages != "" {
		results := a.Images.ExportListings(cmd.Context(), result.Listings, searchSaveImages)
		saved := 0
		for _, r := range results {
			if r.Err == nil {
				saved++
			}
		}
		fmt.Fprintf(os.Stderr, "%sSaved %d/%d images to %s%s\n", ui.ColorDim, saved, len(results), searchSaveImages, ui.ColorReset)
	}

	if searchOutput != "" {
		if err := output.SaveListings(searchOutput, result); err != nil {
			return err
		}
		fmt.Printf("%s✓%s Saved %d listings to %s\n", ui.ColorGreen, ui.ColorReset, len(result.Listings), searchOutput)
		return nil
	}

	if searchFormat != "" {
		format, err := output.ParseFormat(searchFormat)
		if err != nil {
			return err
		}
		return output.WriteListings(os.Stdout, format, result)
	}

	printListings(result)
	return nil
}

func printListings(result *models.SearchResult) {
	fmt.Printf("\n%s%s%s · %d listings\n\n", ui.ColorBold+ui.ColorCyan, result.Query, ui.ColorReset, len(result.Listings))

	for _, l := range result.Listings {
		fmt.Printf("%s[%s]%s %s\n", ui.ColorYellow, l.Source, ui.ColorReset, l.Title)
		fmt.Printf("  %s%s%s", ui.ColorGreen, ui.FormatKRW(l.Price), ui.ColorReset)
		if l.Location != "" {
			fmt.Printf("  %s%s%s", ui.ColorDim, l.Location, ui.ColorReset)
		}
		fmt.Println()
		if l.ProductURL != "" {
			fmt.Printf("  %s%s%s\n", ui.ColorDim, l.ProductURL, ui.ColorReset)
		}
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\n%sFailed sources%s\n", ui.ColorBold+ui.ColorRed, ui.ColorReset)
		for _, src := range models.AllSources {
			if msg, ok := result.Errors[src]; ok {
				fmt.Printf("  %s: %s\n", src, msg)
			}
		}
	}
}

func printComparison(cmp *models.Comparison) {
	fmt.Printf("\n%s%s%s · price comparison\n\n", ui.ColorBold+ui.ColorCyan, cmp.Query, ui.ColorReset)

	for _, src := range models.AllSources {
		sc, ok := cmp.Sources[src]
		if !ok {
			continue
		}
		marker := " "
		if src == cmp.BestDealSource {
			marker = ui.ColorGreen + "★" + ui.ColorReset
		}
		fmt.Printf("%s %-12s avg %s (%d listings)\n", marker, src, ui.FormatKRW(sc.AveragePrice), len(sc.Listings))
	}

	if cmp.SavingsVsRetail > 0 {
		fmt.Printf("\n%s saves %s vs retail (%.1f%%)\n",
			cmp.BestDealSource, ui.FormatKRW(cmp.SavingsVsRetail), cmp.SavingsPercent)
	}
}
