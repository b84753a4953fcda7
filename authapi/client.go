// Package authapi talks to the backend's /auth endpoints. The refresh
// credential is an HTTP-only cookie, so every call must go through the same
// resty client (and therefore the same cookie jar).
package authapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/agbs2k8/eostre/internal/config"
	apperrors "github.com/agbs2k8/eostre/internal/errors"
	"github.com/agbs2k8/eostre/internal/httpclient"
	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

type Paths struct {
	Login   string
	Refresh string
	Logout  string
}

func DefaultPaths() Paths {
	return Paths{
		Login:   "/auth/login",
		Refresh: "/auth/refresh",
		Logout:  "/auth/logout",
	}
}

// PathsFromConfig reads the endpoint paths from configuration.
func PathsFromConfig(c config.HTTPConfig) Paths {
	return Paths{
		Login:   c.GetLoginPath(),
		Refresh: c.GetRefreshPath(),
		Logout:  c.GetLogoutPath(),
	}
}

type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Client struct {
	http     *resty.Client
	paths    Paths
	validate *validator.Validate
}

func New(client *resty.Client, paths Paths) *Client {
	return &Client{
		http:     client,
		paths:    paths,
		validate: validator.New(),
	}
}

// Login exchanges credentials for an access token. Rejected credentials
// (4xx, or empty input) wrap ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, creds Credentials) (*oauth2.Token, error) {
	if err := c.validate.Struct(creds); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidCredentials, err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(creds).
		Post(c.paths.Login)
	if err != nil {
		return nil, fmt.Errorf("authapi: login request: %w", err)
	}

	if !resp.IsSuccess() {
		rf := httpclient.RequestFailed(resp)
		if resp.StatusCode() >= http.StatusBadRequest && resp.StatusCode() < http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidCredentials, rf)
		}
		return nil, fmt.Errorf("authapi: login: %w", rf)
	}

	return decodeToken(resp.Body())
}

// Refresh trades the refresh cookie for a new access token. Every failure,
// including transport errors, wraps ErrRefreshFailed.
func (c *Client) Refresh(ctx context.Context) (*oauth2.Token, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{}).
		Post(c.paths.Refresh)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrRefreshFailed, err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrRefreshFailed, httpclient.RequestFailed(resp))
	}

	tok, err := decodeToken(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrRefreshFailed, err)
	}
	return tok, nil
}

// Logout asks the backend to invalidate the refresh cookie.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Post(c.paths.Logout)
	if err != nil {
		return fmt.Errorf("authapi: logout request: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("authapi: logout: %w", httpclient.RequestFailed(resp))
	}
	return nil
}

func decodeToken(body []byte) (*oauth2.Token, error) {
	tok := &oauth2.Token{}
	if err := json.Unmarshal(body, tok); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "decode token response: %v", err)
	}
	if tok.AccessToken == "" {
		return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "missing access_token in response")
	}
	if tok.TokenType == "" {
		tok.TokenType = "Bearer"
	}
	if tok.Expiry.IsZero() && tok.ExpiresIn > 0 {
		tok.Expiry = NowTimeFunc().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	return tok, nil
}
