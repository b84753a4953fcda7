package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

type settings struct {
	APIBaseURL     string        `validate:"required,url"`
	TokenStore     string        `validate:"oneof=file redis memory"`
	TokenKey       string        `validate:"required"`
	RefreshLead    time.Duration `validate:"gte=0"`
	MinRefresh     time.Duration `validate:"gt=0"`
	RequestTimeout time.Duration `validate:"gte=0"`
	RedisAddr      string        `validate:"omitempty,hostname_port"`
	LoginPath      string        `validate:"required,startswith=/"`
	RefreshPath    string        `validate:"required,startswith=/"`
	LogoutPath     string        `validate:"required,startswith=/"`
}

// Validate checks the resolved client settings.
func Validate(c Config) error {
	s := settings{
		APIBaseURL:     c.GetAPIBaseURL(),
		TokenStore:     c.GetTokenStoreBackend(),
		TokenKey:       c.GetTokenStorageKey(),
		RefreshLead:    c.GetRefreshLeadTime(),
		MinRefresh:     c.GetMinRefreshDelay(),
		RequestTimeout: c.GetRequestTimeout(),
		RedisAddr:      c.GetRedisAddr(),
		LoginPath:      c.GetLoginPath(),
		RefreshPath:    c.GetRefreshPath(),
		LogoutPath:     c.GetLogoutPath(),
	}
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("config: invalid settings: %w", err)
	}
	return nil
}
