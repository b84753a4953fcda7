// Package app wires configuration into the session client and the
// development auth backend.
package app

import (
	"context"
	"fmt"

	"github.com/agbs2k8/eostre/adminapi"
	"github.com/agbs2k8/eostre/authapi"
	"github.com/agbs2k8/eostre/gateway"
	"github.com/agbs2k8/eostre/internal/config"
	"github.com/agbs2k8/eostre/internal/httpclient"
	"github.com/agbs2k8/eostre/session"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Client is a fully wired session client.
type Client struct {
	Config  config.Config
	HTTP    *resty.Client
	Auth    *authapi.Client
	Session *session.Store
	Gateway *gateway.Gateway
	Admin   *adminapi.Client

	closeStore func() error
}

type ClientOption func(*session.Options)

// WithClock replaces the session clock.
func WithClock(clock session.Clock) ClientOption {
	return func(o *session.Options) { o.Clock = clock }
}

// NewClient builds the client stack from cfg and restores any persisted
// session.
func NewClient(ctx context.Context, cfg config.Config, opts ...ClientOption) (*Client, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	httpClient, err := httpclient.New(httpclient.Options{
		BaseURL: cfg.GetAPIBaseURL(),
		Timeout: cfg.GetRequestTimeout(),
		Debug:   cfg.GetLogLevel() == "trace",
	})
	if err != nil {
		return nil, err
	}

	repo, closeStore, err := NewTokenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	decoder, err := NewDecoder(cfg)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	auth := authapi.New(httpClient, authapi.PathsFromConfig(cfg))
	sessOpts := session.Options{
		Auth:            auth,
		Decoder:         decoder,
		Repo:            repo,
		StorageKey:      cfg.GetTokenStorageKey(),
		RefreshLead:     cfg.GetRefreshLeadTime(),
		MinRefreshDelay: cfg.GetMinRefreshDelay(),
	}
	for _, opt := range opts {
		opt(&sessOpts)
	}

	store, err := session.New(sessOpts)
	if err != nil {
		_ = closeStore()
		return nil, err
	}
	if err := store.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("could not restore the persisted session")
	}

	gw := gateway.New(httpClient, store)
	return &Client{
		Config:     cfg,
		HTTP:       httpClient,
		Auth:       auth,
		Session:    store,
		Gateway:    gw,
		Admin:      adminapi.New(gw),
		closeStore: closeStore,
	}, nil
}

// Close stops the watchdog and releases the token store. The persisted
// session is kept for the next run.
func (c *Client) Close() error {
	c.Session.Close()
	if err := c.closeStore(); err != nil {
		return fmt.Errorf("app: close token store: %w", err)
	}
	return nil
}
