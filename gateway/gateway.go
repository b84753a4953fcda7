// Package gateway sends authenticated requests to the eostre backend. A 401
// triggers exactly one token refresh and one retry.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/agbs2k8/eostre/internal/httpclient"
	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// SessionSource supplies the bearer token and refreshes it on demand.
// *session.Store satisfies it.
type SessionSource interface {
	AccessToken() string
	Refresh(ctx context.Context) error
}

// Options describe one request. Body may be []byte or string, sent verbatim,
// or any value, sent as JSON.
type Options struct {
	Method  string
	Headers map[string]string
	Query   url.Values
	Body    any
}

type Gateway struct {
	http    *resty.Client
	session SessionSource
}

func New(client *resty.Client, session SessionSource) *Gateway {
	return &Gateway{
		http:    client,
		session: session,
	}
}

// Request issues the call described by opts against path. It never panics on
// backend errors; the outcome is always described by the returned Result.
func (g *Gateway) Request(ctx context.Context, path string, opts Options) Result {
	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}

	body, err := encodeBody(opts.Body)
	if err != nil {
		return Result{Kind: RequestError, Err: fmt.Errorf("gateway: encode %s %s body: %w", method, path, err)}
	}

	resp, err := g.send(ctx, method, path, opts, body)
	if err != nil {
		return transportError(method, path, err)
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		log.Debug().Str("method", method).Str("path", path).Msg("gateway: unauthorized, refreshing token")
		if err := g.session.Refresh(ctx); err != nil {
			log.Info().Err(err).Str("path", path).Msg("gateway: refresh after 401 failed")
			return Result{Kind: RefreshError, Status: resp.StatusCode(), Body: resp.Body(), Header: resp.Header(), Err: err}
		}

		resp, err = g.send(ctx, method, path, opts, body)
		if err != nil {
			return transportError(method, path, err)
		}
	}

	if !resp.IsSuccess() {
		log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode()).Msg("gateway: request failed")
		return Result{
			Kind:   RequestError,
			Status: resp.StatusCode(),
			Body:   resp.Body(),
			Header: resp.Header(),
			Err:    httpclient.RequestFailed(resp),
		}
	}

	return Result{Kind: Success, Status: resp.StatusCode(), Body: resp.Body(), Header: resp.Header()}
}

func (g *Gateway) send(ctx context.Context, method, path string, opts Options, body []byte) (*resty.Response, error) {
	req := g.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json")

	// Read on every attempt so the retry carries the refreshed token.
	if tok := g.session.AccessToken(); tok != "" {
		req.SetHeader("Authorization", "Bearer "+tok)
	}
	req.SetHeaders(opts.Headers)

	if len(opts.Query) > 0 {
		req.SetQueryParamsFromValues(opts.Query)
	}
	if body != nil {
		req.SetBody(body)
	}
	return req.Execute(method, path)
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		return json.Marshal(b)
	}
}

func transportError(method, path string, err error) Result {
	log.Warn().Err(err).Str("method", method).Str("path", path).Msg("gateway: transport error")
	return Result{Kind: RequestError, Err: fmt.Errorf("gateway: %s %s: %w", method, path, err)}
}

// Do runs Request and decodes a successful JSON body into T.
func Do[T any](ctx context.Context, g *Gateway, path string, opts Options) (T, error) {
	var out T

	res := g.Request(ctx, path, opts)
	if !res.OK() {
		return out, res.Err
	}
	if len(res.Body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(res.Body, &out); err != nil {
		return out, fmt.Errorf("gateway: decode %s response: %w", path, err)
	}
	return out, nil
}
