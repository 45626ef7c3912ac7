package browser

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeSession builds a Session backed by a plain cancellable context so
// tests never launch a real browser.
func fakeSession() *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{state: StateAvailable, browserCtx: ctx, cancelAll: cancel}
}

func newFakePool(max int, launched *atomic.Int32) *Pool {
	p := NewPool(Options{MaxInstances: max, PollInterval: 5 * time.Millisecond})
	p.launch = func(LaunchOptions) (*Session, error) {
		if launched != nil {
			launched.Add(1)
		}
		return fakeSession(), nil
	}
	return p
}

func TestPoolBoundsLiveSessions(t *testing.T) {
	var launched atomic.Int32
	p := newFakePool(3, &launched)
	defer p.Close()

	ctx := context.Background()

	// Saturate the pool.
	var leased []*Session
	for i := 0; i < 3; i++ {
		s, err := p.Acquire(ctx, LaunchOptions{})
		if err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
		leased = append(leased, s)
	}
	if got := launched.Load(); got != 3 {
		t.Fatalf("expected 3 launches, got %d", got)
	}

	// The fourth acquire must block until a lease is returned.
	acquired := make(chan *Session, 1)
	go func() {
		s, err := p.Acquire(ctx, LaunchOptions{})
		if err != nil {
			t.Errorf("blocked acquire failed: %v", err)
		}
		acquired <- s
	}()

	select {
	case <-acquired:
		t.Fatal("acquire should block while pool is saturated")
	case <-time.After(50 * time.Millisecond):
	}

	p.Release(leased[0])

	select {
	case s := <-acquired:
		if s == nil {
			t.Fatal("expected a session after release")
		}
	case <-time.After(time.Second):
		t.Fatal("acquire did not resume after release")
	}

	if got := launched.Load(); got != 3 {
		t.Errorf("expected no extra launches, got %d", got)
	}
}

func TestPoolConcurrentAcquireNeverExceedsMax(t *testing.T) {
	var launched atomic.Int32
	p := newFakePool(3, &launched)
	defer p.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := p.Acquire(context.Background(), LaunchOptions{})
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			time.Sleep(10 * time.Millisecond)
			p.Release(s)
		}()
	}
	wg.Wait()

	if got := launched.Load(); got > 3 {
		t.Errorf("launched %d sessions, max is 3", got)
	}
}

func TestPoolAcquireHonorsContext(t *testing.T) {
	p := newFakePool(1, nil)
	defer p.Close()

	s, err := p.Acquire(context.Background(), LaunchOptions{})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer p.Release(s)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if _, err := p.Acquire(ctx, LaunchOptions{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestPoolPrunesDeadSessions(t *testing.T) {
	p := newFakePool(2, nil)
	defer p.Close()

	s, err := p.Acquire(context.Background(), LaunchOptions{})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	p.Release(s)

	// Simulate an unexpected process exit.
	s.cancelAll()

	if live := p.Live(); live != 0 {
		t.Errorf("expected dead session to be pruned, live=%d", live)
	}

	// A fresh acquire must launch a replacement rather than hand out the corpse.
	s2, err := p.Acquire(context.Background(), LaunchOptions{})
	if err != nil {
		t.Fatalf("acquire after prune: %v", err)
	}
	if s2 == s {
		t.Fatal("pool reused a disconnected session")
	}
}

func TestPoolUsableAfterReleaseAll(t *testing.T) {
	var launched atomic.Int32
	p := newFakePool(2, &launched)
	defer p.Close()

	s, err := p.Acquire(context.Background(), LaunchOptions{})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	p.Release(s)

	p.ReleaseAll()
	if live := p.Live(); live != 0 {
		t.Fatalf("expected empty pool after ReleaseAll, live=%d", live)
	}

	// Pool is not poisoned: a new acquire launches a fresh session.
	if _, err := p.Acquire(context.Background(), LaunchOptions{}); err != nil {
		t.Fatalf("acquire after ReleaseAll: %v", err)
	}
	if got := launched.Load(); got != 2 {
		t.Errorf("expected 2 launches total, got %d", got)
	}
}

func TestPoolLaunchFailurePropagates(t *testing.T) {
	p := NewPool(Options{MaxInstances: 1})
	defer p.Close()

	boom := errors.New("no chrome")
	p.launch = func(LaunchOptions) (*Session, error) { return nil, boom }

	if _, err := p.Acquire(context.Background(), LaunchOptions{}); !errors.Is(err, boom) {
		t.Fatalf("expected launch error, got %v", err)
	}
}

func TestPoolClosed(t *testing.T) {
	p := newFakePool(1, nil)
	p.Close()

	if _, err := p.Acquire(context.Background(), LaunchOptions{}); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
}
