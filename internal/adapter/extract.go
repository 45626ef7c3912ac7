package adapter

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/marketlens/scout/pkg/models"
)

// Attributes probed for lazy-loaded images, in priority order.
var imageAttrs = []string{"src", "data-src", "data-img-src", "data-original", "data-lazy-src", "data-srcset", "data-url"}

// parseListings extracts up to limit listings from rendered search markup.
// Item containers are located with the profile's selector chain; items that
// yield neither a title nor a product URL are skipped.
func parseListings(p Profile, html string, limit int) ([]models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var items *goquery.Selection
	for _, sel := range p.ItemSelectors {
		found := doc.Find(sel)
		if found.Length() > 0 {
			items = found
			break
		}
	}
	if items == nil {
		return nil, nil
	}

	now := time.Now()
	var listings []models.Listing
	items.EachWithBreak(func(_ int, item *goquery.Selection) bool {
		l := extractListing(p, item, now)
		if l.Title == "" && l.ProductURL == "" {
			return true
		}
		listings = append(listings, l)
		return len(listings) < limit
	})

	log.Debug().
		Str("source", string(p.Source)).
		Int("containers", items.Length()).
		Int("extracted", len(listings)).
		Msg("Parsed search markup")
	return listings, nil
}

func extractListing(p Profile, item *goquery.Selection, capturedAt time.Time) models.Listing {
	priceText := firstText(item, p.PriceSelectors)
	return models.Listing{
		Source:     p.Source,
		Title:      firstText(item, p.TitleSelectors),
		Price:      p.parsePrice(priceText),
		PriceText:  priceText,
		ImageURL:   extractImageURL(p, item),
		ProductURL: p.resolveURL(firstHref(p, item)),
		Location:   firstText(item, p.LocationSelectors),
		CapturedAt: capturedAt,
	}
}

// firstText returns the trimmed text of the first selector that matches a
// non-empty node within item.
func firstText(item *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(item.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// firstHref returns the first product link within item. When the container
// itself is the anchor (common on card layouts), its own href is used.
func firstHref(p Profile, item *goquery.Selection) string {
	for _, sel := range p.LinkSelectors {
		if href, ok := item.Find(sel).First().Attr("href"); ok && href != "" {
			return href
		}
	}
	if goquery.NodeName(item) == "a" {
		if href, ok := item.Attr("href"); ok {
			return href
		}
	}
	if href, ok := item.Find("a").First().Attr("href"); ok {
		return href
	}
	return ""
}

// extractImageURL walks the image selector chain and the lazy-load attribute
// chain, skipping inline data URIs and placeholder sources.
func extractImageURL(p Profile, item *goquery.Selection) string {
	for _, sel := range p.ImageSelectors {
		img := item.Find(sel).First()
		if img.Length() == 0 {
			continue
		}
		for _, attr := range imageAttrs {
			val, ok := img.Attr(attr)
			if !ok {
				continue
			}
			val = strings.TrimSpace(val)
			if val == "" || strings.HasPrefix(val, "data:image") {
				continue
			}
			// srcset holds candidates; take the first URL.
			if attr == "data-srcset" {
				if i := strings.IndexAny(val, " ,"); i > 0 {
					val = val[:i]
				}
			}
			return p.resolveURL(val)
		}
	}
	return ""
}
