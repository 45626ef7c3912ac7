package headers

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	in := []string{"Accept-Language: ko-KR", "Cache-Control: max-age=0", "BadHeader"}
	out := Parse(in)
	expected := map[string]string{"Accept-Language": "ko-KR", "Cache-Control": "max-age=0"}
	if !reflect.DeepEqual(out, expected) {
		t.Fatalf("unexpected parse result: %#v", out)
	}
}

func TestParseColonsInValue(t *testing.T) {
	out := Parse([]string{"Referer: https://www.daangn.com/kr/buy-sell/"})
	if out["Referer"] != "https://www.daangn.com/kr/buy-sell/" {
		t.Fatalf("value with colons mangled: %q", out["Referer"])
	}
}

func TestParseDropsBlankNamesAndKeepsLastDuplicate(t *testing.T) {
	out := Parse([]string{": orphaned", "  : also orphaned", "X-Scout: one", "X-Scout: two"})
	expected := map[string]string{"X-Scout": "two"}
	if !reflect.DeepEqual(out, expected) {
		t.Fatalf("unexpected parse result: %#v", out)
	}
}

func TestParseEmptyValueAllowed(t *testing.T) {
	out := Parse([]string{"DNT:"})
	if v, ok := out["DNT"]; !ok || v != "" {
		t.Fatalf("expected empty value kept, got %#v", out)
	}
}
