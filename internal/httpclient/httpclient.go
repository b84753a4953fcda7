// Package httpclient builds the resty client shared by the auth API and the
// request gateway. Sharing one client means sharing one cookie jar, which is
// where the backend's refresh cookie lives.
package httpclient

import (
	"fmt"
	"net/http/cookiejar"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"
)

const userAgent = "eostre-client/1.0"

type Options struct {
	BaseURL string
	Timeout time.Duration
	Debug   bool
}

func New(opts Options) (*resty.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("httpclient: failed to create cookie jar: %w", err)
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetCookieJar(jar).
		SetHeader("User-Agent", userAgent).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		SetLogger(restyLogger{log.With().Str("component", "http").Logger()}).
		SetDebug(opts.Debug)

	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	return client, nil
}

// restyLogger routes resty's own diagnostics through zerolog.
type restyLogger struct {
	logger zerolog.Logger
}

var _ resty.Logger = restyLogger{}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Msgf(format, v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Msgf(format, v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(format, v...)
}
