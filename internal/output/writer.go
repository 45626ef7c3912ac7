package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/marketlens/scout/internal/ui"
	"github.com/marketlens/scout/pkg/models"
)

// Format selects a listing export encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json, csv, or markdown)", s)
	}
}

// FormatForPath infers the export format from a file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatJSON
	}
}

// WriteListings encodes listings to w in the given format.
func WriteListings(w io.Writer, format Format, result *models.SearchResult) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, result.Listings)
	case FormatMarkdown:
		return writeMarkdown(w, result)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(result)
	}
}

// SaveListings writes the result to path, inferring the format from the
// extension.
func SaveListings(path string, result *models.SearchResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := WriteListings(f, FormatForPath(path), result); err != nil {
		return err
	}
	log.Info().Str("path", path).Int("listings", len(result.Listings)).Msg("Results saved")
	return nil
}

var csvHeader = []string{"source", "title", "price", "price_text", "location", "product_url", "image_url", "captured_at"}

func writeCSV(w io.Writer, listings []models.Listing) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, l := range listings {
		record := []string{
			string(l.Source),
			l.Title,
			strconv.FormatInt(l.Price, 10),
			l.PriceText,
			l.Location,
			l.ProductURL,
			l.ImageURL,
			l.CapturedAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeMarkdown(w io.Writer, result *models.SearchResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Search results: %s\n\n", result.Query)
	fmt.Fprintf(&b, "%d listings, captured %s\n\n", len(result.Listings), time.Now().Format("2006-01-02 15:04"))

	b.WriteString("| Source | Title | Price | Location | Link |\n")
	b.WriteString("|--------|-------|-------|----------|------|\n")
	for _, l := range result.Listings {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | [link](%s) |\n",
			l.Source, escapePipes(l.Title), ui.FormatKRW(l.Price), escapePipes(l.Location), l.ProductURL)
	}

	if len(result.Errors) > 0 {
		b.WriteString("\n## Failed sources\n\n")
		for _, src := range models.AllSources {
			if msg, ok := result.Errors[src]; ok {
				fmt.Fprintf(&b, "- **%s**: %s\n", src, escapePipes(msg))
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
