package adapter

import (
	"fmt"
	"net/url"

	"github.com/marketlens/scout/pkg/models"
)

// JunggonaraProfile describes the joongna marketplace web frontend.
func JunggonaraProfile() Profile {
	return Profile{
		Source:  models.SourceJunggonara,
		BaseURL: "https://web.joongna.com",
		SearchURL: func(query, _ string) string {
			return fmt.Sprintf("https://web.joongna.com/search/%s", url.PathEscape(query))
		},
		WaitSelectors: []string{
			"ul.search-results > li",
			`a[href^="/product/"]`,
		},
		ItemSelectors: []string{
			"ul.search-results > li",
			`li:has(a[href^="/product/"])`,
		},
		TitleSelectors: []string{
			"h2",
			`div[class*="title"]`,
		},
		PriceSelectors: []string{
			".text-heading",
			`div[class*="price"]`,
		},
		ImageSelectors: []string{
			"img",
		},
		LinkSelectors: []string{
			`a[href^="/product/"]`,
			"a",
		},
		LocationSelectors: []string{
			".my-1 span",
		},
	}
}
