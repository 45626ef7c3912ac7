package adapter

import (
	"fmt"
	"net/url"

	"github.com/marketlens/scout/pkg/models"
)

// BunjangProfile describes the bunjang marketplace through its mobile site,
// which renders with lighter markup than the desktop app shell. Listings may
// also arrive via inline state, so the state fallback is enabled.
func BunjangProfile() Profile {
	return Profile{
		Source:  models.SourceBunjang,
		BaseURL: "https://m.bunjang.co.kr",
		SearchURL: func(query, _ string) string {
			return fmt.Sprintf("https://m.bunjang.co.kr/search/products?q=%s", url.QueryEscape(query))
		},
		Mobile: true,
		WaitSelectors: []string{
			".sc-iBkjds",
			`a[href^="/products/"]`,
		},
		ItemSelectors: []string{
			".sc-iBkjds",
			`a[href^="/products/"]`,
		},
		TitleSelectors: []string{
			".sc-ehvNnt",
			`div[class*="name"]`,
		},
		PriceSelectors: []string{
			".sc-iAvgwm",
			`div[class*="price"]`,
		},
		ImageSelectors: []string{
			"img",
		},
		LinkSelectors: []string{
			`a[href^="/products/"]`,
		},
		StateGlobals:        []string{"__PRELOADED_STATE__", "__NEXT_DATA__"},
		ProductPathTemplate: "/products/%v",
		Detail: &DetailProfile{
			WaitSelectors: []string{
				".sc-kgflAQ",
				"h1",
			},
			TitleSelectors: []string{
				".sc-kgflAQ",
				"h1",
			},
			PriceSelectors: []string{
				".sc-fLlhyt",
				`div[class*="price"]`,
			},
			DescriptionSelectors: []string{
				".sc-iBdmCd",
				`div[class*="description"]`,
			},
			SellerSelectors: []string{
				".sc-cCsOjp",
				`a[href^="/shop/"]`,
			},
			ImageSelectors: []string{
				".sc-jIZahH img",
				`img[src*="media.bunjang"]`,
			},
		},
	}
}
