package adapter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
	"github.com/rs/zerolog/log"

	"github.com/marketlens/scout/pkg/models"
)

// stateScriptTimeout caps the execution of one inline script. State
// bootstrap scripts finish in milliseconds; anything still running after
// this long is an event loop or retry spinner that will never settle in
// the stub environment.
var stateScriptTimeout = 2 * time.Second

// stateListings is the fallback extraction path for script-rendered pages
// that ship listings inside inline state instead of markup. Inline scripts
// are executed in a sandboxed JS runtime with stub browser globals, then the
// profile's state globals are probed for listing-shaped records.
func stateListings(ctx context.Context, p Profile, html string, limit int) []models.Listing {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	vm := newStateVM()
	executed := 0
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if ctx.Err() != nil {
			return false
		}
		if _, external := s.Attr("src"); external {
			return true
		}
		src := s.Text()
		if strings.TrimSpace(src) == "" {
			return true
		}
		// Site scripts fail constantly in the stub environment; only the
		// state-assignment ones need to run to completion.
		if runScript(ctx, vm, src) {
			executed++
		}
		return true
	})

	var listings []models.Listing
	for _, global := range p.StateGlobals {
		val := vm.Get(global)
		if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
			continue
		}
		records := collectRecords(val.Export(), 0)
		for _, rec := range records {
			l := listingFromRecord(p, rec)
			if l.Title == "" {
				continue
			}
			listings = append(listings, l)
			if len(listings) >= limit {
				break
			}
		}
		if len(listings) > 0 {
			break
		}
	}

	log.Debug().
		Str("source", string(p.Source)).
		Int("scripts_executed", executed).
		Int("extracted", len(listings)).
		Msg("Inline state extraction")
	return listings
}

// runScript executes one inline script under a hard deadline. The runtime
// is interrupted when the deadline or the caller's ctx expires, so a script
// that spins forever costs at most stateScriptTimeout and contributes no
// state. The interrupt is cleared before returning so the next script runs
// on a clean runtime.
func runScript(ctx context.Context, vm *goja.Runtime, src string) bool {
	scriptCtx, cancel := context.WithTimeout(ctx, stateScriptTimeout)
	defer cancel()

	watchdogDone := make(chan struct{})
	go func() {
		defer close(watchdogDone)
		<-scriptCtx.Done()
		if scriptCtx.Err() == context.DeadlineExceeded || ctx.Err() != nil {
			vm.Interrupt("inline script deadline exceeded")
		}
	}()

	_, err := vm.RunString(src)

	cancel()
	<-watchdogDone
	vm.ClearInterrupt()
	return err == nil
}

// newStateVM builds a JS runtime with just enough browser surface for state
// bootstrap scripts to assign their globals without throwing.
func newStateVM() *goja.Runtime {
	vm := goja.New()
	global := vm.GlobalObject()

	_ = global.Set("window", global)
	_ = global.Set("self", global)
	_ = global.Set("globalThis", global)

	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }

	document := vm.NewObject()
	_ = document.Set("getElementById", noop)
	_ = document.Set("querySelector", noop)
	_ = document.Set("addEventListener", noop)
	_ = document.Set("createElement", func(goja.FunctionCall) goja.Value { return vm.NewObject() })
	_ = global.Set("document", document)

	console := vm.NewObject()
	for _, m := range []string{"log", "warn", "error", "info", "debug"} {
		_ = console.Set(m, noop)
	}
	_ = global.Set("console", console)

	_ = global.Set("setTimeout", noop)
	_ = global.Set("setInterval", noop)
	_ = global.Set("addEventListener", noop)
	_ = global.Set("navigator", vm.NewObject())
	_ = global.Set("location", vm.NewObject())

	return vm
}

// collectRecords walks exported state for maps that look like product
// records: anything carrying both a name-ish and a price-ish key.
func collectRecords(v any, depth int) []map[string]any {
	if depth > 8 {
		return nil
	}
	switch val := v.(type) {
	case map[string]any:
		if isProductRecord(val) {
			return []map[string]any{val}
		}
		var out []map[string]any
		for _, child := range val {
			out = append(out, collectRecords(child, depth+1)...)
		}
		return out
	case []any:
		var out []map[string]any
		for _, child := range val {
			out = append(out, collectRecords(child, depth+1)...)
		}
		return out
	default:
		return nil
	}
}

func isProductRecord(m map[string]any) bool {
	_, hasName := firstKey(m, "name", "title", "productName")
	_, hasPrice := firstKey(m, "price", "salePrice", "amount")
	return hasName && hasPrice
}

func listingFromRecord(p Profile, rec map[string]any) models.Listing {
	title, _ := firstKey(rec, "name", "title", "productName")
	price, _ := firstKey(rec, "price", "salePrice", "amount")
	image, _ := firstKey(rec, "imageUrl", "image", "productImage", "thumbnail")
	location, _ := firstKey(rec, "location", "region", "address")

	l := models.Listing{
		Source:     p.Source,
		Title:      asString(title),
		PriceText:  asString(price),
		ImageURL:   p.resolveURL(asString(image)),
		Location:   asString(location),
		CapturedAt: time.Now(),
	}
	l.Price = p.parsePrice(l.PriceText)

	if u, ok := firstKey(rec, "productUrl", "url", "link"); ok {
		l.ProductURL = p.resolveURL(asString(u))
	} else if id, ok := firstKey(rec, "pid", "id", "productId"); ok && p.ProductPathTemplate != "" {
		l.ProductURL = p.resolveURL(fmt.Sprintf(p.ProductPathTemplate, asString(id)))
	}
	return l
}

func firstKey(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func asString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	case int64:
		return fmt.Sprintf("%d", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
