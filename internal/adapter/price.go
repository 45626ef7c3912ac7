package adapter

import (
	"strconv"
	"strings"
)

// FormatPrice extracts the digit sequence from a raw price string as an
// integer amount in won. "1,234,000원" becomes 1234000; a string without
// digits yields 0 (the "unparseable" sentinel).
func FormatPrice(raw string) int64 {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// FormatDecimalPrice handles sources that render prices as decimal strings:
// the fractional part is truncated before digit extraction, so "12,900.50"
// becomes 12900 rather than 1290050.
func FormatDecimalPrice(raw string) int64 {
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		raw = raw[:i]
	}
	return FormatPrice(raw)
}

func (p Profile) parsePrice(raw string) int64 {
	if p.DecimalPrices {
		return FormatDecimalPrice(raw)
	}
	return FormatPrice(raw)
}
