// Package export saves listing images to disk with a bounded worker pool.
package export

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/marketlens/scout/pkg/models"
)

// Result is the outcome of one image download.
type Result struct {
	URL      string
	FilePath string
	Size     int64
	Err      error
}

// ImageExporter downloads listing images concurrently with streaming I/O.
type ImageExporter struct {
	client      *http.Client
	userAgent   string
	concurrency int
}

// NewImageExporter builds an exporter with the given worker count.
func NewImageExporter(concurrency int, timeout time.Duration, userAgent string) *ImageExporter {
	if concurrency <= 0 {
		concurrency = 5
	}
	if concurrency > 20 {
		concurrency = 20
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ImageExporter{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent:   userAgent,
		concurrency: concurrency,
	}
}

// ExportListings downloads the primary image of each listing into outputDir.
// Listings without an image URL are skipped.
func (e *ImageExporter) ExportListings(ctx context.Context, listings []models.Listing, outputDir string) []Result {
	var urls []string
	for _, l := range listings {
		if l.ImageURL != "" {
			urls = append(urls, l.ImageURL)
		}
	}
	return e.ExportURLs(ctx, urls, outputDir)
}

// ExportURLs downloads the given image URLs into outputDir.
func (e *ImageExporter) ExportURLs(ctx context.Context, urls []string, outputDir string) []Result {
	if len(urls) == 0 {
		return []Result{}
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		results := make([]Result, len(urls))
		for i, u := range urls {
			results[i] = Result{URL: u, Err: fmt.Errorf("failed to create output directory: %w", err)}
		}
		return results
	}

	jobs := make(chan string, len(urls))
	out := make(chan Result, len(urls))

	var wg sync.WaitGroup
	for w := 0; w < e.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				select {
				case <-ctx.Done():
					out <- Result{URL: u, Err: ctx.Err()}
					continue
				default:
				}
				out <- e.download(ctx, u, outputDir)
			}
		}()
	}

	for _, u := range urls {
		jobs <- u
	}
	close(jobs)
	wg.Wait()
	close(out)

	results := make([]Result, 0, len(urls))
	for r := range out {
		results = append(results, r)
	}
	return results
}

func (e *ImageExporter) download(ctx context.Context, imageURL, outputDir string) Result {
	res := Result{URL: imageURL}

	filePath := filepath.Join(outputDir, Filename(imageURL))
	res.FilePath = filePath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		res.Err = fmt.Errorf("invalid image URL: %w", err)
		return res
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		res.Err = fmt.Errorf("image request failed: %w", err)
		return res
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		res.Err = fmt.Errorf("bad status: %s", resp.Status)
		return res
	}

	f, err := os.Create(filePath)
	if err != nil {
		res.Err = fmt.Errorf("failed to create file: %w", err)
		return res
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		os.Remove(filePath)
		res.Err = fmt.Errorf("failed to write file: %w", err)
		return res
	}
	res.Size = n

	log.Debug().Str("url", imageURL).Str("file", filePath).Int64("bytes", n).Msg("Image saved")
	return res
}

// Filename derives a safe local filename from an image URL. The query string
// is hashed into the name so variant URLs of the same path do not collide.
func Filename(imageURL string) string {
	name := imageURL
	var querySuffix string
	if u, err := url.Parse(imageURL); err == nil && u.Host != "" {
		if parts := strings.Split(u.Path, "/"); len(parts) > 0 {
			name = parts[len(parts)-1]
		}
		if u.RawQuery != "" {
			h := fnv.New32a()
			h.Write([]byte(u.RawQuery))
			querySuffix = fmt.Sprintf("_%08x", h.Sum32())
		}
	}

	for _, c := range []string{"/", "\\", "..", ":", "*", "?", "\"", "<", ">", "|"} {
		name = strings.ReplaceAll(name, c, "_")
	}
	name = strings.Trim(strings.TrimSpace(name), ".")

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if querySuffix != "" {
		name = stem + querySuffix + ext
	}
	if name == "" || name == querySuffix {
		name = fmt.Sprintf("image_%d", time.Now().UnixNano())
	}
	if len(name) > 200 {
		name = name[:200]
	}
	return name
}
