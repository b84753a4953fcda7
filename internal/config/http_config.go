package config

import "time"

type HTTPConfig interface {
	GetRequestTimeout() time.Duration
	GetLoginPath() string
	GetRefreshPath() string
	GetLogoutPath() string
}

type HTTP struct {
	src *source
}

var _ HTTPConfig = HTTP{}

// GetRequestTimeout returns zero unless set, leaving timeouts to the transport.
func (h HTTP) GetRequestTimeout() time.Duration {
	return duration(h.src.get("EOSTRE_REQUEST_TIMEOUT", ""), 0)
}

func (h HTTP) GetLoginPath() string {
	return h.src.get("EOSTRE_LOGIN_PATH", "/auth/login")
}

func (h HTTP) GetRefreshPath() string {
	return h.src.get("EOSTRE_REFRESH_PATH", "/auth/refresh")
}

func (h HTTP) GetLogoutPath() string {
	return h.src.get("EOSTRE_LOGOUT_PATH", "/auth/logout")
}
