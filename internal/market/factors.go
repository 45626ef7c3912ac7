package market

import "strings"

// defaultFactor applies when no category keyword matches a title.
const defaultFactor = 0.75

// categoryFactors maps category keywords to the assumed second-hand/retail
// price ratio. Longer keywords are more specific and win over shorter ones.
var categoryFactors = map[string]float64{
	"iphone":      0.80,
	"아이폰":         0.80,
	"galaxy":      0.75,
	"갤럭시":         0.75,
	"phone":       0.85,
	"스마트폰":        0.85,
	"휴대폰":         0.85,
	"macbook":     0.85,
	"맥북":          0.85,
	"laptop":      0.75,
	"노트북":         0.75,
	"ipad":        0.85,
	"아이패드":        0.85,
	"tablet":      0.80,
	"태블릿":         0.80,
	"camera":      0.70,
	"카메라":         0.70,
	"lens":        0.80,
	"렌즈":          0.80,
	"tv":          0.65,
	"티비":          0.65,
	"텔레비전":        0.65,
	"monitor":     0.70,
	"모니터":         0.70,
	"playstation": 0.85,
	"플레이스테이션":     0.85,
	"nintendo":    0.90,
	"닌텐도":         0.90,
	"console":     0.80,
	"게임기":         0.80,
}

// categoryTerms maps product-family keywords to the broader category term
// used when token matching finds nothing in the archive.
var categoryTerms = map[string]string{
	"iphone":      "아이폰",
	"아이폰":         "아이폰",
	"galaxy":      "갤럭시",
	"갤럭시":         "갤럭시",
	"macbook":     "맥북",
	"맥북":          "맥북",
	"그램":          "노트북",
	"laptop":      "노트북",
	"노트북":         "노트북",
	"ipad":        "아이패드",
	"아이패드":        "아이패드",
	"에어팟":         "이어폰",
	"버즈":          "이어폰",
	"playstation": "플레이스테이션",
	"플스":          "플레이스테이션",
	"nintendo":    "닌텐도",
	"스위치":         "닌텐도",
}

// FactorFor returns the markup factor for a title. The longest matching
// keyword wins; titles with no category keyword get the default factor.
func FactorFor(title string) float64 {
	lower := strings.ToLower(title)
	bestLen := 0
	factor := defaultFactor
	for keyword, f := range categoryFactors {
		if !strings.Contains(lower, keyword) {
			continue
		}
		if n := len([]rune(keyword)); n > bestLen {
			bestLen = n
			factor = f
		}
	}
	return factor
}

// CategoryTerm returns the broader category term for a title, or "" when the
// title matches no known product family.
func CategoryTerm(title string) string {
	lower := strings.ToLower(title)
	bestLen := 0
	term := ""
	for keyword, t := range categoryTerms {
		if !strings.Contains(lower, keyword) {
			continue
		}
		if n := len([]rune(keyword)); n > bestLen {
			bestLen = n
			term = t
		}
	}
	return term
}
