package config

import (
	"strconv"
	"time"
)

type SessionConfig interface {
	GetRefreshLeadTime() time.Duration
	GetMinRefreshDelay() time.Duration
	GetTokenStorageKey() string
	GetVerifyKeyFile() string
	GetTokenIssuer() string
}

type Session struct {
	src *source
}

var _ SessionConfig = Session{}

// GetRefreshLeadTime is how long before the exp claim the watchdog refreshes.
func (s Session) GetRefreshLeadTime() time.Duration {
	return duration(s.src.get("EOSTRE_REFRESH_LEAD", ""), 30*time.Second)
}

// GetMinRefreshDelay is the floor applied to every watchdog delay.
func (s Session) GetMinRefreshDelay() time.Duration {
	return duration(s.src.get("EOSTRE_REFRESH_FLOOR", ""), 5*time.Second)
}

func (s Session) GetTokenStorageKey() string {
	return s.src.get("EOSTRE_TOKEN_KEY", "ACCESS_TOKEN")
}

// GetVerifyKeyFile names a PEM public key. When set, access tokens must carry
// a valid signature from it before they are accepted.
func (s Session) GetVerifyKeyFile() string {
	return s.src.get("EOSTRE_VERIFY_KEY_FILE", "")
}

func (s Session) GetTokenIssuer() string {
	return s.src.get("EOSTRE_TOKEN_ISSUER", "")
}

func duration(raw string, defaultValue time.Duration) time.Duration {
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	// bare numbers are seconds
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
