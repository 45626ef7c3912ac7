// internal/browser/pool.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/marketlens/scout/internal/proxy"
)

// ErrPoolClosed is returned by Acquire after the pool has been shut down.
var ErrPoolClosed = errors.New("browser pool is closed")

// State is the lifecycle state of a pooled session.
type State int

const (
	StateAvailable State = iota
	StateInUse
	StateDisconnected
)

// Session is a leased handle to one running headless-Chrome process.
// A session is used by exactly one adapter invocation at a time; the
// adapter opens a tab via NewTab and must close it on every exit path.
type Session struct {
	id         int
	state      State
	userAgent  string
	proxyAddr  string
	browserCtx context.Context
	cancelAll  context.CancelFunc
}

// NewTab opens a fresh tab in the session's browser. The returned context
// carries cancellation from both the session and the caller's ctx; the
// cancel func closes the tab.
func (s *Session) NewTab(ctx context.Context) (context.Context, context.CancelFunc) {
	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)
	// Tie the tab to the caller's cancellation as well.
	stop := context.AfterFunc(ctx, tabCancel)
	return tabCtx, func() {
		stop()
		tabCancel()
	}
}

// UserAgent returns the user agent the session was launched with.
func (s *Session) UserAgent() string { return s.userAgent }

func (s *Session) alive() bool {
	select {
	case <-s.browserCtx.Done():
		return false
	default:
		return true
	}
}

// LaunchOptions customizes a session launch; fields merge over the pool's
// baseline Chrome argument set.
type LaunchOptions struct {
	UserAgent string
	Mobile    bool
	ExtraArgs []chromedp.ExecAllocatorOption
}

// Options configures the pool.
type Options struct {
	MaxInstances int
	Headless     bool
	ChromePath   string
	PollInterval time.Duration
	Proxies      *proxy.Pool
}

// Pool bounds the number of concurrently running browser processes and
// hands out exclusive session leases to adapters. Sessions are launched
// on demand up to MaxInstances; when the pool is saturated, Acquire polls
// until a lease is returned. Dead sessions are pruned lazily on the next
// acquire scan.
type Pool struct {
	mu        sync.Mutex
	sessions  []*Session
	launching int
	nextID    int
	closed    bool

	max          int
	pollInterval time.Duration
	headless     bool
	chromePath   string
	proxies      *proxy.Pool

	// launch is swapped out in tests to avoid starting real browsers.
	launch func(opts LaunchOptions) (*Session, error)
}

// NewPool creates a session pool. No browser is started until the first Acquire.
func NewPool(opts Options) *Pool {
	if opts.MaxInstances <= 0 {
		opts.MaxInstances = 3
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	if opts.Proxies == nil {
		opts.Proxies = proxy.NewPool(nil)
	}

	p := &Pool{
		max:          opts.MaxInstances,
		pollInterval: opts.PollInterval,
		headless:     opts.Headless,
		chromePath:   opts.ChromePath,
		proxies:      opts.Proxies,
	}
	p.launch = p.launchChrome
	return p
}

// Acquire returns an exclusive lease on a live session. If every live
// session is leased and the pool is at capacity, it polls until a slot
// frees. There is no internal timeout; callers bound the wait through ctx.
func (p *Pool) Acquire(ctx context.Context, opts LaunchOptions) (*Session, error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrPoolClosed
		}

		p.pruneLocked()

		if s := p.pickAvailableLocked(); s != nil {
			s.state = StateInUse
			p.mu.Unlock()
			log.Debug().Int("session_id", s.id).Msg("Browser session acquired")
			return s, nil
		}

		if len(p.sessions)+p.launching < p.max {
			p.launching++
			p.mu.Unlock()

			s, err := p.launch(opts)

			p.mu.Lock()
			p.launching--
			if err != nil {
				p.mu.Unlock()
				return nil, fmt.Errorf("failed to launch browser: %w", err)
			}
			if p.closed {
				p.mu.Unlock()
				s.cancelAll()
				return nil, ErrPoolClosed
			}
			s.id = p.nextID
			p.nextID++
			s.state = StateInUse
			p.sessions = append(p.sessions, s)
			p.mu.Unlock()

			log.Info().Int("session_id", s.id).Str("proxy", s.proxyAddr).Msg("Browser session launched")
			return s, nil
		}
		p.mu.Unlock()

		select {
		case <-time.After(p.pollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Release returns a leased session to the pool. Dead sessions are dropped
// on the next acquire scan rather than here.
func (p *Pool) Release(s *Session) {
	if s == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if !s.alive() {
		s.state = StateDisconnected
		return
	}
	s.state = StateAvailable
	log.Debug().Int("session_id", s.id).Msg("Browser session released")
}

// ReleaseAll terminates every tracked session. The pool stays usable:
// subsequent Acquire calls launch fresh sessions.
func (p *Pool) ReleaseAll() {
	p.mu.Lock()
	sessions := p.sessions
	p.sessions = nil
	p.mu.Unlock()

	for _, s := range sessions {
		s.cancelAll()
	}
	log.Info().Int("terminated", len(sessions)).Msg("All browser sessions terminated")
}

// Close shuts the pool down for good; Acquire fails afterwards.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	sessions := p.sessions
	p.sessions = nil
	p.mu.Unlock()

	for _, s := range sessions {
		s.cancelAll()
	}
}

// Live returns the number of tracked live sessions.
func (p *Pool) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pruneLocked()
	return len(p.sessions)
}

func (p *Pool) pickAvailableLocked() *Session {
	var avail []*Session
	for _, s := range p.sessions {
		if s.state == StateAvailable {
			avail = append(avail, s)
		}
	}
	if len(avail) == 0 {
		return nil
	}
	// Random pick; every live session is a candidate each call, so no
	// session can be starved.
	return avail[rand.Intn(len(avail))]
}

func (p *Pool) pruneLocked() {
	kept := p.sessions[:0]
	for _, s := range p.sessions {
		if s.alive() && s.state != StateDisconnected {
			kept = append(kept, s)
			continue
		}
		s.cancelAll()
		log.Warn().Int("session_id", s.id).Msg("Pruned dead browser session")
	}
	p.sessions = kept
}
