package adapter

import "testing"

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"₩10,000", 10000},
		{"10,000원", 10000},
		{"1,234,000원", 1234000},
		{"가격 문의", 0},
		{"", 0},
		{"  3500 ", 3500},
		{"판매완료 99,000", 99000},
	}
	for _, c := range cases {
		if got := FormatPrice(c.in); got != c.want {
			t.Errorf("FormatPrice(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFormatDecimalPrice(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"12,900.50", 12900},
		{"12,900.00", 12900},
		{"12,900", 12900},
		{".99", 0},
		{"", 0},
	}
	for _, c := range cases {
		if got := FormatDecimalPrice(c.in); got != c.want {
			t.Errorf("FormatDecimalPrice(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}
