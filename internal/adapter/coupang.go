package adapter

import (
	"fmt"
	"net/url"

	"github.com/marketlens/scout/pkg/models"
)

// CoupangProfile describes the coupang retail catalog, used as the new-price
// reference source in market analysis. Prices render with decimal notation,
// so fractional parts are truncated.
func CoupangProfile() Profile {
	return Profile{
		Source:  models.SourceCoupang,
		BaseURL: "https://www.coupang.com",
		SearchURL: func(query, _ string) string {
			return fmt.Sprintf("https://www.coupang.com/np/search?component=&q=%s", url.QueryEscape(query))
		},
		WaitSelectors: []string{
			".search-product",
			"#productList",
		},
		ItemSelectors: []string{
			".search-product",
			"li.search-product",
		},
		TitleSelectors: []string{
			".name",
			`div[class*="name"]`,
		},
		PriceSelectors: []string{
			".price-value",
			"strong.price-value",
		},
		ImageSelectors: []string{
			"img.search-product-wrap-img",
			"img",
		},
		LinkSelectors: []string{
			"a.search-product-link",
			"a",
		},
		DecimalPrices: true,
	}
}
