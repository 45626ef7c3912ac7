package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/marketlens/scout/pkg/models"
)

func sampleResult() *models.SearchResult {
	return &models.SearchResult{
		Query: "아이폰 13",
		Listings: []models.Listing{
			{
				Source:     models.SourceDanggeun,
				Title:      "아이폰 13 128GB | 풀박",
				Price:      450000,
				PriceText:  "450,000원",
				ProductURL: "https://www.daangn.com/p/1",
				Location:   "마장동",
				CapturedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			},
			{
				Source:     models.SourceBunjang,
				Title:      "아이폰 13",
				PriceText:  "가격문의",
				ProductURL: "https://m.bunjang.co.kr/products/2",
				CapturedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			},
		},
		Errors: map[models.Source]string{models.SourceCoupang: "blocked"},
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"":         FormatJSON,
		"json":     FormatJSON,
		"CSV":      FormatCSV,
		"md":       FormatMarkdown,
		"markdown": FormatMarkdown,
	}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestFormatForPath(t *testing.T) {
	if got := FormatForPath("out.csv"); got != FormatCSV {
		t.Errorf("csv path = %v", got)
	}
	if got := FormatForPath("out.MD"); got != FormatMarkdown {
		t.Errorf("md path = %v", got)
	}
	if got := FormatForPath("out.json"); got != FormatJSON {
		t.Errorf("json path = %v", got)
	}
	if got := FormatForPath("out"); got != FormatJSON {
		t.Errorf("default = %v", got)
	}
}

func TestWriteListingsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteListings(&buf, FormatJSON, sampleResult()); err != nil {
		t.Fatalf("write: %v", err)
	}

	var decoded models.SearchResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Query != "아이폰 13" || len(decoded.Listings) != 2 {
		t.Fatalf("roundtrip lost data: %+v", decoded)
	}
	if decoded.Errors[models.SourceCoupang] != "blocked" {
		t.Error("source errors not exported")
	}
}

func TestWriteListingsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteListings(&buf, FormatCSV, sampleResult()); err != nil {
		t.Fatalf("write: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[0][0] != "source" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][2] != "450000" || records[2][2] != "0" {
		t.Errorf("price columns = %q, %q", records[1][2], records[2][2])
	}
}

func TestWriteListingsMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteListings(&buf, FormatMarkdown, sampleResult()); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "# Search results: 아이폰 13") {
		t.Error("missing title heading")
	}
	// Pipes inside titles must not break the table.
	if !strings.Contains(out, `아이폰 13 128GB \| 풀박`) {
		t.Error("pipe in title not escaped")
	}
	if !strings.Contains(out, "450,000원") {
		t.Error("missing formatted price")
	}
	if !strings.Contains(out, "## Failed sources") || !strings.Contains(out, "blocked") {
		t.Error("missing failed-sources section")
	}
}

func TestCleanHTML(t *testing.T) {
	in := `<div><script>alert(1)</script><p>멀쩡한 본문</p><style>p{}</style></div>`
	out := CleanHTML(in)
	if strings.Contains(out, "alert") || strings.Contains(out, "p{}") {
		t.Errorf("script/style survived: %q", out)
	}
	if !strings.Contains(out, "멀쩡한 본문") {
		t.Errorf("content lost: %q", out)
	}
}

func TestHTMLToMarkdown(t *testing.T) {
	in := `<div><h2>상태</h2><p>생활기스 <b>거의 없음</b></p><a href="/p/1">상세</a><script>x()</script></div>`
	out := HTMLToMarkdown(in, "https://m.bunjang.co.kr")

	if !strings.Contains(out, "## 상태") {
		t.Errorf("heading not converted: %q", out)
	}
	if !strings.Contains(out, "**거의 없음**") {
		t.Errorf("bold not converted: %q", out)
	}
	if !strings.Contains(out, "https://m.bunjang.co.kr/p/1") {
		t.Errorf("relative link not resolved: %q", out)
	}
	if strings.Contains(out, "x()") {
		t.Errorf("script leaked: %q", out)
	}
}
