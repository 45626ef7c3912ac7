package adapter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/marketlens/scout/internal/browser"
	"github.com/marketlens/scout/internal/output"
	"github.com/marketlens/scout/internal/retry"
	"github.com/marketlens/scout/pkg/models"
)

// ProductDetail fetches a product page and extracts the full detail record.
// Only sources with a detail profile support this; others report an error.
func (s *Scraper) ProductDetail(ctx context.Context, productURL string) (*models.ProductDetail, error) {
	dp := s.profile.Detail
	if dp == nil {
		return nil, fmt.Errorf("%s does not support product detail", s.profile.Source)
	}

	var detail *models.ProductDetail
	op := fmt.Sprintf("%s detail", s.profile.Source)
	err := retry.Do(ctx, s.opts.Retry, op, func() error {
		var err error
		detail, err = s.detailOnce(ctx, productURL, dp)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *Scraper) detailOnce(ctx context.Context, productURL string, dp *DetailProfile) (*models.ProductDetail, error) {
	sess, err := s.pool.Acquire(ctx, browser.LaunchOptions{
		UserAgent: randomUserAgent(s.profile.Mobile),
		Mobile:    s.profile.Mobile,
	})
	if err != nil {
		return nil, err
	}
	defer s.pool.Release(sess)

	tabCtx, closeTab := sess.NewTab(ctx)
	defer closeTab()

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, s.profile.Source); err != nil {
			return nil, err
		}
	}

	html, err := s.fetchRendered(tabCtx, productURL, dp.WaitSelectors)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	root := doc.Selection

	priceText := firstText(root, dp.PriceSelectors)
	detail := &models.ProductDetail{
		Listing: models.Listing{
			Source:     s.profile.Source,
			Title:      firstText(root, dp.TitleSelectors),
			Price:      s.profile.parsePrice(priceText),
			PriceText:  priceText,
			ProductURL: productURL,
			SellerName: firstText(root, dp.SellerSelectors),
			CapturedAt: time.Now(),
		},
	}

	for _, sel := range dp.DescriptionSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if raw, err := node.Html(); err == nil && strings.TrimSpace(raw) != "" {
			detail.Description = output.HTMLToMarkdown(raw, s.profile.BaseURL)
			break
		}
	}

	seen := make(map[string]bool)
	for _, sel := range dp.ImageSelectors {
		doc.Find(sel).Each(func(_ int, img *goquery.Selection) {
			for _, attr := range imageAttrs {
				val, ok := img.Attr(attr)
				if !ok {
					continue
				}
				val = strings.TrimSpace(val)
				if val == "" || strings.HasPrefix(val, "data:image") {
					continue
				}
				u := s.profile.resolveURL(val)
				if !seen[u] {
					seen[u] = true
					detail.Images = append(detail.Images, u)
				}
				return
			}
		})
		if len(detail.Images) > 0 {
			break
		}
	}
	if detail.Listing.ImageURL == "" && len(detail.Images) > 0 {
		detail.Listing.ImageURL = detail.Images[0]
	}

	if detail.Listing.Title == "" {
		return nil, fmt.Errorf("no detail content extracted from %s", productURL)
	}

	log.Debug().
		Str("source", string(s.profile.Source)).
		Str("url", productURL).
		Int("images", len(detail.Images)).
		Msg("Product detail extracted")
	return detail, nil
}
