package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/marketlens/scout/pkg/models"
)

func TestStateListingsFromInlineScript(t *testing.T) {
	fixture := `<html><head>
	<script src="https://cdn.example/app.js"></script>
	<script>
	window.__PRELOADED_STATE__ = {
	  search: {
	    results: [
	      {pid: 271828, name: "에어팟 프로 2세대", price: "189000", location: "서울"},
	      {pid: 314159, name: "에어팟 프로", price: 120000}
	    ]
	  }
	};
	</script>
	<script>this.will.throw.anyway();</script>
	</head><body></body></html>`

	listings := stateListings(context.Background(), BunjangProfile(), fixture, 10)
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings from state, got %d", len(listings))
	}
	if listings[0].Title != "에어팟 프로 2세대" {
		t.Errorf("title = %q", listings[0].Title)
	}
	if listings[0].Price != 189000 {
		t.Errorf("price = %d", listings[0].Price)
	}
	if listings[0].ProductURL != "https://m.bunjang.co.kr/products/271828" {
		t.Errorf("product url = %q", listings[0].ProductURL)
	}
	// Numeric prices survive the string conversion.
	if listings[1].Price != 120000 {
		t.Errorf("numeric price = %d", listings[1].Price)
	}
}

func TestStateListingsHonorsLimit(t *testing.T) {
	fixture := `<html><script>
	window.__PRELOADED_STATE__ = {items: [
	  {name: "a", price: 1000},
	  {name: "b", price: 2000},
	  {name: "c", price: 3000}
	]};
	</script></html>`

	listings := stateListings(context.Background(), BunjangProfile(), fixture, 2)
	if len(listings) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(listings))
	}
}

func TestStateListingsNoState(t *testing.T) {
	if got := stateListings(context.Background(), BunjangProfile(), "<html><body>static</body></html>", 10); len(got) != 0 {
		t.Fatalf("expected no listings, got %d", len(got))
	}
}

func TestStateListingsInterruptsLoopingScript(t *testing.T) {
	old := stateScriptTimeout
	stateScriptTimeout = 100 * time.Millisecond
	defer func() { stateScriptTimeout = old }()

	fixture := `<html>
	<script>while (true) {}</script>
	<script>window.__PRELOADED_STATE__ = {p: {name: "키보드", price: 45000}};</script>
	</html>`

	done := make(chan []models.Listing, 1)
	go func() {
		done <- stateListings(context.Background(), BunjangProfile(), fixture, 10)
	}()

	select {
	case listings := <-done:
		// The looping script is cut off; the rest of the page still runs.
		if len(listings) != 1 {
			t.Fatalf("expected 1 listing after interrupted script, got %d", len(listings))
		}
		if listings[0].Price != 45000 {
			t.Errorf("price = %d", listings[0].Price)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("stateListings did not return; looping script was not interrupted")
	}
}

func TestStateListingsStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fixture := `<html>
	<script>window.__PRELOADED_STATE__ = {p: {name: "모니터", price: 250000}};</script>
	</html>`

	if got := stateListings(ctx, BunjangProfile(), fixture, 10); len(got) != 0 {
		t.Fatalf("expected no extraction after cancellation, got %d listings", len(got))
	}
}

func TestStateVMSurvivesBrowserAPIs(t *testing.T) {
	fixture := `<html><script>
	document.addEventListener("load", function(){});
	console.log("boot");
	setTimeout(function(){}, 100);
	window.__PRELOADED_STATE__ = {p: {name: "선풍기", price: "15,000"}};
	</script></html>`

	listings := stateListings(context.Background(), BunjangProfile(), fixture, 10)
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	if listings[0].Price != 15000 {
		t.Errorf("price = %d", listings[0].Price)
	}
}
