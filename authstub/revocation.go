package authstub

import (
	"sync"
	"time"
)

// RevokedTokens remembers access token ids that were logged out before their
// exp claim.
type RevokedTokens interface {
	Add(jti string, exp time.Time)
	IsRevoked(jti string) bool
	Cleanup() // Remove entries past their expiry
}

type memoryRevokedTokens struct {
	revoked map[string]time.Time
	mu      sync.RWMutex
}

func NewMemoryRevokedTokens() RevokedTokens {
	return &memoryRevokedTokens{
		revoked: make(map[string]time.Time),
	}
}

func (c *memoryRevokedTokens) Add(jti string, exp time.Time) {
	if jti == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[jti] = exp
}

func (c *memoryRevokedTokens) IsRevoked(jti string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.revoked[jti]
	return exists
}

func (c *memoryRevokedTokens) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := NowTimeFunc()
	for jti, exp := range c.revoked {
		if now.After(exp) {
			delete(c.revoked, jti)
		}
	}
}
