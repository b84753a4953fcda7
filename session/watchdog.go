package session

import (
	"time"

	"github.com/rs/zerolog/log"
)

// RefreshDelay returns how long the watchdog waits before refreshing a token
// with secondsLeft until expiry: lead before the exp claim, but never sooner
// than floor.
func RefreshDelay(secondsLeft int64, lead, floor time.Duration) time.Duration {
	delay := time.Duration(secondsLeft)*time.Second - lead
	if delay < floor {
		return floor
	}
	return delay
}

// armWatchdogLocked schedules the single refresh for sess. Caller holds s.mu
// and has already stopped the previous timer.
func (s *Store) armWatchdogLocked(sess *Session) {
	if !sess.Identity.HasExpiry() {
		return
	}

	delay := RefreshDelay(sess.Identity.SecondsLeft(s.clock.Now()), s.lead, s.floor)
	gen := s.generation
	s.timer = s.clock.AfterFunc(delay, func() { s.fireWatchdog(gen) })

	log.Debug().
		Str("user", sess.Identity.Username).
		Dur("refresh_in", delay).
		Time("expires_at", sess.Identity.ExpiresAt).
		Msg("session: watchdog armed")
}

// stopWatchdogLocked cancels the pending timer. Bumping the generation also
// disarms a callback that already started but has not taken the lock yet.
func (s *Store) stopWatchdogLocked() {
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Store) fireWatchdog(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	if err := s.Refresh(s.ctx); err != nil {
		log.Warn().Err(err).Msg("session: scheduled refresh failed")
	}
}
