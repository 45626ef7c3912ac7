package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
)

// Baseline argument set applied to every launched process. Sandboxing is
// disabled so the pool works inside containers; the viewport is fixed so
// marketplaces serve a consistent layout to extract against.
func (p *Pool) baseAllocOpts(opts LaunchOptions) []chromedp.ExecAllocatorOption {
	width, height := 1366, 768
	if opts.Mobile {
		width, height = 390, 844
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-accelerated-2d-canvas", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("window-size", fmt.Sprintf("%d,%d", width, height)),
		chromedp.Flag("disk-cache-size", "0"),
	}

	if p.chromePath == "" {
		p.chromePath = FindChrome()
	}
	if p.chromePath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(p.chromePath)}, allocOpts...)
	}

	if p.headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}

	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	return append(allocOpts, opts.ExtraArgs...)
}

// launchChrome starts one Chrome process and warms it up. It is the
// default value of Pool.launch.
func (p *Pool) launchChrome(opts LaunchOptions) (*Session, error) {
	allocOpts := p.baseAllocOpts(opts)

	proxyAddr := p.proxies.Next()
	if proxyAddr != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(proxyAddr))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	cancelAll := func() {
		browserCancel()
		allocCancel()
	}

	// Warm up; this is also where a missing or broken Chrome binary fails.
	if err := chromedp.Run(browserCtx, chromedp.Navigate("about:blank")); err != nil {
		cancelAll()
		p.proxies.MarkFailed(proxyAddr)
		return nil, fmt.Errorf("browser warm-up failed: %w", err)
	}

	return &Session{
		state:      StateAvailable,
		userAgent:  opts.UserAgent,
		proxyAddr:  proxyAddr,
		browserCtx: browserCtx,
		cancelAll:  cancelAll,
	}, nil
}
