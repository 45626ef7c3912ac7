package adapter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/marketlens/scout/internal/browser"
	"github.com/marketlens/scout/internal/ratelimit"
	"github.com/marketlens/scout/internal/retry"
	"github.com/marketlens/scout/pkg/models"
)

// Resource patterns blocked on every page load. Listings are extracted from
// markup and captured state; pixels are wasted bandwidth.
var blockedURLPatterns = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.svg", "*.ico",
	"*.woff", "*.woff2", "*.ttf", "*.otf",
	"*.mp4", "*.webm", "*.mp3",
	"*google-analytics*", "*googletagmanager*", "*doubleclick*", "*facebook*",
}

// Scraper drives one marketplace through the shared extraction sequence:
// acquire session, open tab, navigate, wait for content, scroll, capture,
// parse. Behavior differences between marketplaces live in the Profile.
type Scraper struct {
	profile Profile
	pool    *browser.Pool
	limiter ratelimit.RateLimiter
	opts    Options
}

// NewScraper builds an adapter from a marketplace profile.
func NewScraper(profile Profile, pool *browser.Pool, limiter ratelimit.RateLimiter, opts Options) *Scraper {
	if opts.NavTimeout <= 0 {
		opts = DefaultOptions()
	}
	return &Scraper{profile: profile, pool: pool, limiter: limiter, opts: opts}
}

// Source returns the marketplace this adapter serves.
func (s *Scraper) Source() models.Source { return s.profile.Source }

// Profile exposes the adapter's capability set.
func (s *Scraper) Profile() Profile { return s.profile }

// Search runs a marketplace search and returns up to limit listings.
// Transient failures are retried with backoff; when retries are exhausted
// the adapter degrades to an empty result rather than failing the caller.
func (s *Scraper) Search(ctx context.Context, query string, limit int) ([]models.Listing, error) {
	if limit <= 0 {
		limit = 10
	}

	var listings []models.Listing
	op := fmt.Sprintf("%s search", s.profile.Source)
	err := retry.Do(ctx, s.opts.Retry, op, func() error {
		var err error
		listings, err = s.searchOnce(ctx, query, limit)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().
			Str("source", string(s.profile.Source)).
			Str("query", query).
			Err(err).
			Msg("Search degraded to empty result")
		return []models.Listing{}, nil
	}
	return listings, nil
}

func (s *Scraper) searchOnce(ctx context.Context, query string, limit int) ([]models.Listing, error) {
	searchURL := s.profile.SearchURL(query, s.opts.Region)

	sess, err := s.pool.Acquire(ctx, browser.LaunchOptions{
		UserAgent: randomUserAgent(s.profile.Mobile),
		Mobile:    s.profile.Mobile,
	})
	if err != nil {
		return nil, err
	}
	defer s.pool.Release(sess)

	tabCtx, closeTab := sess.NewTab(ctx)
	defer closeTab()

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, s.profile.Source); err != nil {
			return nil, err
		}
	}

	html, err := s.fetchRendered(tabCtx, searchURL, s.profile.WaitSelectors)
	if err != nil {
		return nil, err
	}

	listings, err := parseListings(s.profile, html, limit)
	if err != nil {
		return nil, err
	}

	// Script-rendered pages can serve empty markup with listings embedded
	// in inline state. Probe the captured scripts before giving up.
	if len(listings) == 0 && len(s.profile.StateGlobals) > 0 {
		listings = stateListings(ctx, s.profile, html, limit)
	}

	log.Debug().
		Str("source", string(s.profile.Source)).
		Str("query", query).
		Int("count", len(listings)).
		Msg("Search extraction complete")
	return listings, nil
}

// fetchRendered navigates the tab to url and returns the rendered document
// after the wait-and-settle sequence.
func (s *Scraper) fetchRendered(tabCtx context.Context, url string, waitSelectors []string) (string, error) {
	navCtx, cancel := context.WithTimeout(tabCtx, s.opts.NavTimeout)
	defer cancel()

	headers := network.Headers{"Accept-Language": s.opts.Locale}
	for k, v := range s.opts.ExtraHeaders {
		headers[k] = v
	}

	// Pooled sessions are shared across marketplaces, so the launch-time
	// user agent and window size cannot be trusted here. Re-apply both on
	// the tab so a mobile profile gets mobile markup even on a session
	// first launched for a desktop site.
	dev := s.profile.device()
	err := chromedp.Run(navCtx,
		network.Enable(),
		network.SetBlockedURLs(blockedURLPatterns),
		network.SetExtraHTTPHeaders(headers),
		emulation.SetUserAgentOverride(randomUserAgent(s.profile.Mobile)),
		emulation.SetDeviceMetricsOverride(dev.width, dev.height, dev.scale, dev.mobile),
		chromedp.Navigate(url),
	)
	if err != nil {
		// Heavy pages routinely blow the navigation deadline with content
		// already in the DOM. Degrade to extraction unless the tab is gone.
		if tabCtx.Err() != nil {
			return "", tabCtx.Err()
		}
		log.Debug().Str("url", url).Err(err).Msg("Navigation did not complete cleanly")
	}

	s.waitForContent(tabCtx, waitSelectors)
	s.scrollAndSettle(tabCtx)

	var html string
	captureCtx, cancelCapture := context.WithTimeout(tabCtx, s.opts.SelectorTimeout)
	defer cancelCapture()
	if err := chromedp.Run(captureCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("failed to capture document: %w", err)
	}
	return html, nil
}

// waitForContent tries each wait selector with an individual timeout and
// returns as soon as one matches. No selector matching is not an error;
// extraction decides what the page actually held.
func (s *Scraper) waitForContent(tabCtx context.Context, selectors []string) {
	for _, sel := range selectors {
		waitCtx, cancel := context.WithTimeout(tabCtx, s.opts.SelectorTimeout)
		err := chromedp.Run(waitCtx, chromedp.WaitVisible(sel, chromedp.ByQuery))
		cancel()
		if err == nil {
			return
		}
		if tabCtx.Err() != nil {
			return
		}
	}
	log.Debug().Str("source", string(s.profile.Source)).Msg("No wait selector matched, proceeding anyway")
}

// scrollAndSettle triggers lazy loading with a bounded number of scroll
// steps, then leaves a settle window for late-arriving content.
func (s *Scraper) scrollAndSettle(tabCtx context.Context) {
	for i := 0; i < s.opts.ScrollSteps; i++ {
		stepCtx, cancel := context.WithTimeout(tabCtx, s.opts.SelectorTimeout)
		err := chromedp.Run(stepCtx,
			chromedp.Evaluate(`window.scrollBy(0, window.innerHeight)`, nil),
			chromedp.Sleep(s.opts.ScrollDelay),
		)
		cancel()
		if err != nil {
			return
		}
	}
	select {
	case <-time.After(s.opts.SettleDelay):
	case <-tabCtx.Done():
	}
}

// device is the viewport emulated for one adapter invocation.
type device struct {
	width  int64
	height int64
	scale  float64
	mobile bool
}

// device returns the viewport matching the profile's site variant. Mobile
// profiles need mobile metrics or the site serves the desktop markup and
// none of the selectors match.
func (p Profile) device() device {
	if p.Mobile {
		return device{width: 390, height: 844, scale: 3, mobile: true}
	}
	return device{width: 1366, height: 768, scale: 1, mobile: false}
}

// resolveURL turns a possibly relative href into an absolute product URL.
func (p Profile) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return strings.TrimRight(p.BaseURL, "/") + "/" + strings.TrimLeft(href, "/")
}
