package adapter

import (
	"fmt"
	"net/url"

	"github.com/marketlens/scout/pkg/models"
)

// DanggeunProfile describes the daangn.com neighborhood marketplace. Search
// results are region scoped; the region slug is carried in the query string.
func DanggeunProfile() Profile {
	return Profile{
		Source:  models.SourceDanggeun,
		BaseURL: "https://www.daangn.com",
		SearchURL: func(query, region string) string {
			return fmt.Sprintf("https://www.daangn.com/kr/buy-sell/?in=%s&search=%s",
				url.QueryEscape(region), url.QueryEscape(query))
		},
		WaitSelectors: []string{
			`a[data-gtm="search_article"]`,
			"article",
		},
		ItemSelectors: []string{
			`a[data-gtm="search_article"]`,
			"article",
		},
		TitleSelectors: []string{
			"span.lm809sh",
			`span[class*="title"]`,
			"h2",
		},
		PriceSelectors: []string{
			"span.lm809si",
			`span[class*="price"]`,
		},
		ImageSelectors: []string{
			"img",
		},
		LocationSelectors: []string{
			"span.lm809sj",
			`span[class*="region"]`,
		},
	}
}
