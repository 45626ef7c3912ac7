package export

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/marketlens/scout/pkg/models"
)

func TestFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://img.example.com/photos/cat.jpg", "cat.jpg"},
		{"https://img.example.com/a/b/c/deep.webp", "deep.webp"},
		{"https://img.example.com/no-ext", "no-ext"},
	}
	for _, c := range cases {
		if got := Filename(c.in); got != c.want {
			t.Errorf("Filename(%q) = %q, want %q", c.in, got, c.want)
		}
	}

	// Same path with different queries must not collide.
	a := Filename("https://img.example.com/p.jpg?size=s")
	b := Filename("https://img.example.com/p.jpg?size=l")
	if a == b {
		t.Errorf("query variants collide: %q", a)
	}
	if filepath.Ext(a) != ".jpg" {
		t.Errorf("extension lost: %q", a)
	}

	// Traversal characters are neutralized.
	if got := Filename("../../etc/passwd"); strings.Contains(got, "..") || strings.Contains(got, "/") {
		t.Errorf("unsafe filename %q", got)
	}
}

func TestExportListings(t *testing.T) {
	var served atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "missing") {
			http.NotFound(w, r)
			return
		}
		served.Add(1)
		w.Write([]byte("fake image bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	e := NewImageExporter(3, 5*time.Second, "scout-test")

	listings := []models.Listing{
		{ImageURL: srv.URL + "/one.jpg"},
		{ImageURL: srv.URL + "/two.jpg"},
		{ImageURL: srv.URL + "/missing.jpg"},
		{}, // no image, skipped
	}
	results := e.ExportListings(context.Background(), listings, dir)

	if len(results) != 3 {
		t.Fatalf("expected 3 download attempts, got %d", len(results))
	}
	var ok, failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		ok++
		data, err := os.ReadFile(r.FilePath)
		if err != nil {
			t.Errorf("saved file unreadable: %v", err)
		}
		if string(data) != "fake image bytes" {
			t.Errorf("unexpected content %q", data)
		}
		if r.Size != int64(len("fake image bytes")) {
			t.Errorf("size = %d", r.Size)
		}
	}
	if ok != 2 || failed != 1 {
		t.Errorf("ok=%d failed=%d", ok, failed)
	}
	if served.Load() != 2 {
		t.Errorf("server hits = %d", served.Load())
	}
}

func TestExportURLsEmpty(t *testing.T) {
	e := NewImageExporter(0, 0, "")
	if got := e.ExportURLs(context.Background(), nil, t.TempDir()); len(got) != 0 {
		t.Fatalf("expected no results, got %d", len(got))
	}
}

func TestExportHonorsCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewImageExporter(2, time.Second, "")
	results := e.ExportURLs(ctx, []string{srv.URL + "/a.jpg", srv.URL + "/b.jpg"}, t.TempDir())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Err == nil {
			t.Error("expected error for cancelled context")
		}
	}
}
