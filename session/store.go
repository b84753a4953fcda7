// Package session owns the client-side authentication state: the current
// access token, the identity decoded from it, and the watchdog that refreshes
// the token shortly before it expires.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/agbs2k8/eostre/authapi"
	apperrors "github.com/agbs2k8/eostre/internal/errors"
	"github.com/agbs2k8/eostre/token"
	"github.com/agbs2k8/eostre/tokenstore"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultStorageKey      = "ACCESS_TOKEN"
	DefaultRefreshLead     = 30 * time.Second
	DefaultMinRefreshDelay = 5 * time.Second
)

// AuthAPI is the part of the auth backend the store talks to.
type AuthAPI interface {
	Login(ctx context.Context, creds authapi.Credentials) (*oauth2.Token, error)
	Refresh(ctx context.Context) (*oauth2.Token, error)
	Logout(ctx context.Context) error
}

// Session is an installed access token together with its decoded identity.
// Values are never mutated after installation.
type Session struct {
	AccessToken string
	Identity    token.Identity
}

// State is what subscribers receive after every transition.
type State struct {
	Authenticated bool
	Identity      *token.Identity
}

type Options struct {
	Auth    AuthAPI
	Decoder token.Decoder
	// Repo persists the access token. Nil disables persistence.
	Repo            tokenstore.Repo
	StorageKey      string
	Clock           Clock
	RefreshLead     time.Duration
	MinRefreshDelay time.Duration
}

// Store is the single owner of the session. It is safe for concurrent use.
type Store struct {
	auth    AuthAPI
	decoder token.Decoder
	repo    tokenstore.Repo
	key     string
	clock   Clock
	lead    time.Duration
	floor   time.Duration

	mu         sync.RWMutex
	current    *Session
	timer      Timer
	generation uint64
	// epoch changes on login, logout and restore; a refresh that started in
	// an older epoch must not install its result.
	epoch  uint64
	closed bool

	// seq numbers transitions; notifications are delivered in seq order.
	seq uint64

	// persistMu serialises storage writes; persisted is the seq of the last
	// transition written, so a late write for an older one is skipped.
	persistMu sync.Mutex
	persisted uint64

	subMu       sync.Mutex
	subCond     *sync.Cond
	subscribers map[int]func(State)
	nextSubID   int
	delivered   uint64

	refreshGroup singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc
}

var _ oauth2.TokenSource = (*Store)(nil)

func New(opts Options) (*Store, error) {
	if opts.Auth == nil {
		return nil, errors.New("session: auth api is required")
	}
	if opts.Decoder == nil {
		opts.Decoder = token.NewDecoder()
	}
	if opts.StorageKey == "" {
		opts.StorageKey = DefaultStorageKey
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.RefreshLead <= 0 {
		opts.RefreshLead = DefaultRefreshLead
	}
	if opts.MinRefreshDelay <= 0 {
		opts.MinRefreshDelay = DefaultMinRefreshDelay
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		auth:        opts.Auth,
		decoder:     opts.Decoder,
		repo:        opts.Repo,
		key:         opts.StorageKey,
		clock:       opts.Clock,
		lead:        opts.RefreshLead,
		floor:       opts.MinRefreshDelay,
		subscribers: make(map[int]func(State)),
		ctx:         ctx,
		cancel:      cancel,
	}
	s.subCond = sync.NewCond(&s.subMu)
	return s, nil
}

// Login exchanges credentials for an access token and installs it. Any
// failure leaves the store anonymous.
func (s *Store) Login(ctx context.Context, username, password string) error {
	tok, err := s.auth.Login(ctx, authapi.Credentials{Username: username, Password: password})
	if err != nil {
		log.Info().Err(err).Str("user", username).Msg("session: login failed")
		s.install(ctx, nil)
		return err
	}

	id, err := s.decoder.Decode(ctx, tok.AccessToken)
	if err != nil {
		log.Warn().Err(err).Str("user", username).Msg("session: login returned an unusable token")
		s.install(ctx, nil)
		return err
	}

	if !s.install(ctx, &Session{AccessToken: tok.AccessToken, Identity: *id}) {
		return fmt.Errorf("%w: issued token is already past its exp claim", apperrors.ErrTokenExpired)
	}
	log.Info().Str("user", id.Username).Str("sub", id.Subject).Msg("session: logged in")
	return nil
}

// Logout notifies the backend and clears the session. Backend failures are
// logged only; the local session is always cleared.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.epoch++
	s.stopWatchdogLocked()
	s.mu.Unlock()

	if err := s.auth.Logout(ctx); err != nil {
		log.Warn().Err(err).Msg("session: backend logout failed, clearing local session anyway")
	}

	s.install(ctx, nil)
	log.Info().Msg("session: logged out")
}

// Refresh exchanges the refresh credential for a new access token. Concurrent
// calls share one backend round trip. On failure the session is cleared and
// the returned error wraps ErrRefreshFailed.
//
// The shared round trip is not bound to any caller's context. A caller whose
// ctx ends gets ctx.Err() while the refresh carries on for everyone else.
func (s *Store) Refresh(ctx context.Context) error {
	ch := s.refreshGroup.DoChan("refresh", func() (any, error) {
		return nil, s.refresh(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Shared {
			log.Debug().Msg("session: joined in-flight refresh")
		}
		return res.Err
	case <-ctx.Done():
		log.Debug().Err(ctx.Err()).Msg("session: stopped waiting for refresh")
		return ctx.Err()
	}
}

func (s *Store) refresh(ctx context.Context) error {
	s.mu.RLock()
	epoch := s.epoch
	s.mu.RUnlock()

	var next *Session
	tok, err := s.auth.Refresh(ctx)
	if err == nil {
		var id *token.Identity
		if id, err = s.decoder.Decode(ctx, tok.AccessToken); err == nil {
			next = &Session{AccessToken: tok.AccessToken, Identity: *id}
		} else {
			err = fmt.Errorf("%w: %w", apperrors.ErrRefreshFailed, err)
		}
	}

	s.mu.Lock()
	if epoch != s.epoch || s.closed {
		authenticated := s.current != nil
		s.mu.Unlock()
		log.Debug().Msg("session: discarding refresh result from a previous session")
		if authenticated {
			return nil
		}
		return fmt.Errorf("%w: %w", apperrors.ErrRefreshFailed, apperrors.ErrNotAuthenticated)
	}
	installed := s.applyLocked(next)
	ticket, current, state := s.snapshotLocked()
	s.mu.Unlock()
	s.commit(ctx, ticket, current, state)

	if err != nil {
		log.Info().Err(err).Msg("session: refresh failed, session cleared")
		return err
	}
	if !installed {
		return fmt.Errorf("%w: %w", apperrors.ErrRefreshFailed, apperrors.ErrTokenExpired)
	}
	log.Debug().Str("user", next.Identity.Username).Msg("session: token refreshed")
	return nil
}

// Restore reloads a persisted token. Missing or undecodable tokens leave the
// store anonymous; undecodable ones are removed from storage.
func (s *Store) Restore(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	raw, err := s.repo.Get(ctx, s.key)
	if errors.Is(err, tokenstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.Wrapf(err, "session: read persisted token")
	}

	id, err := s.decoder.Decode(ctx, raw)
	if err != nil {
		log.Info().Err(err).Msg("session: discarding unreadable persisted token")
		s.install(ctx, nil)
		return nil
	}

	if s.install(ctx, &Session{AccessToken: raw, Identity: *id}) {
		log.Info().Str("user", id.Username).Msg("session: restored")
	}
	return nil
}

// install starts a new epoch with next (nil means anonymous) and notifies
// subscribers. It reports whether a session is installed afterwards.
func (s *Store) install(ctx context.Context, next *Session) bool {
	s.mu.Lock()
	s.epoch++
	installed := s.applyLocked(next)
	ticket, current, state := s.snapshotLocked()
	s.mu.Unlock()
	s.commit(ctx, ticket, current, state)
	return installed
}

// applyLocked performs a transition. A token already past its exp claim goes
// straight to anonymous without a backend call. Caller holds s.mu.
func (s *Store) applyLocked(next *Session) bool {
	s.stopWatchdogLocked()

	if next != nil && next.Identity.Expired(s.clock.Now()) {
		log.Info().Str("user", next.Identity.Username).Time("expires_at", next.Identity.ExpiresAt).
			Msg("session: token expired")
		next = nil
	}

	s.current = next
	if next == nil {
		return false
	}
	if !s.closed {
		s.armWatchdogLocked(next)
	}
	return true
}

// commit writes transition ticket to storage and then notifies subscribers.
// It runs without s.mu held.
func (s *Store) commit(ctx context.Context, ticket uint64, current *Session, state State) {
	s.persist(context.WithoutCancel(ctx), ticket, current)
	s.notify(ticket, state)
}

func (s *Store) persist(ctx context.Context, ticket uint64, sess *Session) {
	if s.repo == nil {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if ticket <= s.persisted {
		return
	}
	s.persisted = ticket

	if sess == nil {
		if err := s.repo.Delete(ctx, s.key); err != nil {
			log.Err(err).Str("key", s.key).Msg("session: failed to remove persisted token")
		}
		return
	}
	if err := s.repo.Set(ctx, s.key, sess.AccessToken, sess.Identity.ExpiresAt); err != nil {
		log.Err(err).Str("key", s.key).Msg("session: failed to persist token")
	}
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// AccessToken returns the raw bearer token or "" when anonymous.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.AccessToken
}

// Identity returns a copy of the decoded identity or nil when anonymous.
func (s *Store) Identity() *token.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	id := s.current.Identity
	return &id
}

// Token implements oauth2.TokenSource.
func (s *Store) Token() (*oauth2.Token, error) {
	sess, ok := s.Current()
	if !ok {
		return nil, apperrors.ErrNotAuthenticated
	}
	return &oauth2.Token{
		AccessToken: sess.AccessToken,
		TokenType:   "Bearer",
		Expiry:      sess.Identity.ExpiresAt,
	}, nil
}

// Subscribe registers fn for every subsequent transition. Callbacks run
// synchronously and must not call Login, Logout, Refresh or Restore.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

// snapshotLocked numbers the transition just applied. Caller holds s.mu.
func (s *Store) snapshotLocked() (uint64, *Session, State) {
	s.seq++
	if s.current == nil {
		return s.seq, nil, State{}
	}
	id := s.current.Identity
	return s.seq, s.current, State{Authenticated: true, Identity: &id}
}

// notify waits for the previous transition to be delivered, then runs the
// subscribers without holding any store lock.
func (s *Store) notify(ticket uint64, state State) {
	s.subMu.Lock()
	for s.delivered+1 != ticket {
		s.subCond.Wait()
	}
	subs := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(state)
	}

	s.subMu.Lock()
	s.delivered = ticket
	s.subCond.Broadcast()
	s.subMu.Unlock()
}

// Close stops the watchdog. The session itself is left in place.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.stopWatchdogLocked()
	s.mu.Unlock()
	s.cancel()
}
