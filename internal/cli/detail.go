package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marketlens/scout/internal/adapter"
	"github.com/marketlens/scout/internal/ui"
	"github.com/marketlens/scout/internal/urlutil"
)

var (
	detailSaveImages string
	detailJSON       bool
)

var detailCmd = &cobra.Command{
	Use:   "detail <product-url>",
	Short: "Fetch a single product page",
	Long: `Detail scrapes one product page and prints the full record: title, price,
seller, images, and the description converted to markdown. The marketplace
is picked from the URL's host.`,
	Example: `  scout detail https://m.bunjang.co.kr/products/123456789

  # Save the product images alongside
  scout detail https://m.bunjang.co.kr/products/123456789 --save-images ./images`,
	Args: cobra.ExactArgs(1),
	RunE: runDetail,
}

func init() {
	rootCmd.AddCommand(detailCmd)

	detailCmd.Flags().StringVar(&detailSaveImages, "save-images", "", "Download product images into this directory")
	detailCmd.Flags().BoolVar(&detailJSON, "json-output", false, "Print the record as JSON")
}

func runDetail(cmd *cobra.Command, args []string) error {
	a := GetApp()
	productURL := args[0]

	if err := urlutil.ValidateURL(productURL); err != nil {
		return err
	}

	scraper := adapter.ByURL(a.Adapters, productURL)
	if scraper == nil {
		return fmt.Errorf("no marketplace matches host of %s", productURL)
	}

	detail, err := scraper.ProductDetail(cmd.Context(), productURL)
	if err != nil {
		return err
	}

	if detailSaveImages != "" && len(detail.Images) > 0 {
		results := a.Images.ExportURLs(cmd.Context(), detail.Images, detailSaveImages)
		saved := 0
		for _, r := range results {
			if r.Err == nil {
				saved++
			}
		}
		fmt.Fprintf(os.Stderr, "%sSaved %d/%d images to %s%s\n", ui.ColorDim, saved, len(results), detailSaveImages, ui.ColorReset)
	}

	if detailJSON {
		return printJSON(os.Stdout, detail)
	}

	fmt.Printf("\n%s%s%s\n", ui.ColorBold+ui.ColorCyan, detail.Title, ui.ColorReset)
	fmt.Printf("  %s%s%s", ui.ColorGreen, ui.FormatKRW(detail.Price), ui.ColorReset)
	if detail.SellerName != "" {
		fmt.Printf("  %sseller: %s%s", ui.ColorDim, detail.SellerName, ui.ColorReset)
	}
	fmt.Println()
	if len(detail.Images) > 0 {
		fmt.Printf("  %s%d images%s\n", ui.ColorDim, len(detail.Images), ui.ColorReset)
	}
	if detail.Description != "" {
		fmt.Printf("\n%s\n", detail.Description)
	}
	return nil
}
