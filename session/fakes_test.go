package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/agbs2k8/eostre/authapi"
	"github.com/agbs2k8/eostre/session"
	"github.com/agbs2k8/eostre/token/keys"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

var epoch = time.Unix(1_700_000_000, 0)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: epoch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) session.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), delay: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward and runs due callbacks on the calling goroutine.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

func (c *fakeClock) Pending() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var pending []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			pending = append(pending, t)
		}
	}
	return pending
}

func (c *fakeClock) All() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*fakeTimer(nil), c.timers...)
}

type fakeAuth struct {
	mu           sync.Mutex
	loginToken   string
	loginErr     error
	refreshToken string
	refreshErr   error
	logoutErr    error

	// refreshStarted receives a value when Refresh is entered; refreshGate
	// blocks Refresh until closed.
	refreshStarted chan struct{}
	refreshGate    chan struct{}

	logins, refreshes, logouts int
}

var _ session.AuthAPI = (*fakeAuth)(nil)

func (f *fakeAuth) Login(_ context.Context, creds authapi.Credentials) (*oauth2.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &oauth2.Token{AccessToken: f.loginToken, TokenType: "Bearer"}, nil
}

func (f *fakeAuth) Refresh(ctx context.Context) (*oauth2.Token, error) {
	f.mu.Lock()
	f.refreshes++
	started, gate := f.refreshStarted, f.refreshGate
	f.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &oauth2.Token{AccessToken: f.refreshToken, TokenType: "Bearer"}, nil
}

func (f *fakeAuth) Logout(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	return f.logoutErr
}

func (f *fakeAuth) counts() (logins, refreshes, logouts int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logins, f.refreshes, f.logouts
}

func (f *fakeAuth) set(fn func(f *fakeAuth)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

// mint signs an access token for username. A zero exp omits the claim.
func mint(t *testing.T, sub, username string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": sub, "username": username, "iat": epoch.Unix()}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	raw, err := keys.NewHMACSigner("test-secret").Sign(claims)
	require.NoError(t, err)
	return raw
}
