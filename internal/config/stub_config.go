package config

import (
	"strconv"
	"time"
)

// StubConfig drives the development auth backend in cmd/authstub.
type StubConfig interface {
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetRefreshTokenLength() int
	GetSigningSecret() string
	GetSigningKeyFile() string
	GetSeedUsername() string
	GetSeedPassword() string
}

type Stub struct {
	src *source
}

var _ StubConfig = Stub{}

func (s Stub) GetAccessTokenExpiry() time.Duration {
	return duration(s.src.get("ACCESS_TOKEN_EXPIRE", ""), 15*time.Minute)
}

func (s Stub) GetRefreshTokenExpiry() time.Duration {
	return duration(s.src.get("REFRESH_TOKEN_EXPIRE", ""), 24*time.Hour)
}

func (s Stub) GetRefreshTokenLength() int {
	n, err := strconv.Atoi(s.src.get("REFRESH_TOKEN_LENGTH", "32"))
	if err != nil || n < 16 {
		return 32 // 32 bytes = 256 bits
	}
	return n
}

// GetSigningSecret is the HMAC secret used when no RSA key file is configured.
func (s Stub) GetSigningSecret() string {
	return s.src.get("JWT_SECRET", "dev-secret-change-me")
}

func (s Stub) GetSigningKeyFile() string {
	return s.src.get("JWT_PRIVATE_KEY_FILE", "")
}

func (s Stub) GetSeedUsername() string {
	return s.src.get("SEED_USERNAME", "alice")
}

func (s Stub) GetSeedPassword() string {
	return s.src.get("SEED_PASSWORD", "pw")
}
