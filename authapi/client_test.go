package authapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agbs2k8/eostre/authapi"
	apperrors "github.com/agbs2k8/eostre/internal/errors"
	"github.com/agbs2k8/eostre/internal/httpclient"
	"github.com/stretchr/testify/require"
)

type backend struct {
	logouts atomic.Int32
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds authapi.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if creds.Username != "alice" || creds.Password != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "rt-1", Path: "/", HttpOnly: true})
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "at-1", "token_type": "Bearer", "expires_in": 900})
	})
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("refresh_token")
		if err != nil || c.Value != "rt-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid or expired token"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "at-2"})
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		b.logouts.Add(1)
		http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "", Path: "/", MaxAge: -1})
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /broken/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("POST /empty/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token_type":"Bearer"}`))
	})
	return mux
}

func newClient(t *testing.T, paths authapi.Paths) (*authapi.Client, *backend) {
	t.Helper()
	b := &backend{}
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	rc, err := httpclient.New(httpclient.Options{BaseURL: srv.URL})
	require.NoError(t, err)
	return authapi.New(rc, paths), b
}

func TestLoginRefreshLogout(t *testing.T) {
	fixed := time.Unix(1_700_000_000, 0)
	authapi.NowTimeFunc = func() time.Time { return fixed }
	defer func() { authapi.NowTimeFunc = time.Now }()

	c, b := newClient(t, authapi.DefaultPaths())
	ctx := context.Background()

	_, err := c.Refresh(ctx)
	require.ErrorIs(t, err, apperrors.ErrRefreshFailed)
	require.Equal(t, http.StatusUnauthorized, apperrors.StatusOf(err))

	tok, err := c.Login(ctx, authapi.Credentials{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, "at-1", tok.AccessToken)
	require.Equal(t, "Bearer", tok.TokenType)
	require.Equal(t, fixed.Add(15*time.Minute), tok.Expiry)

	// the refresh cookie set by login is replayed from the jar
	tok, err = c.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, "at-2", tok.AccessToken)
	require.Equal(t, "Bearer", tok.TokenType)

	require.NoError(t, c.Logout(ctx))
	require.Equal(t, int32(1), b.logouts.Load())

	_, err = c.Refresh(ctx)
	require.ErrorIs(t, err, apperrors.ErrRefreshFailed)
}

func TestLogin_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("rejected credentials", func(t *testing.T) {
		c, _ := newClient(t, authapi.DefaultPaths())
		_, err := c.Login(ctx, authapi.Credentials{Username: "alice", Password: "nope"})
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		require.Contains(t, err.Error(), "Invalid credentials")
	})

	t.Run("empty credentials never reach the backend", func(t *testing.T) {
		c, _ := newClient(t, authapi.DefaultPaths())
		_, err := c.Login(ctx, authapi.Credentials{Username: "alice"})
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("server error is not a credential problem", func(t *testing.T) {
		c, _ := newClient(t, authapi.Paths{Login: "/broken/login"})
		_, err := c.Login(ctx, authapi.Credentials{Username: "alice", Password: "pw"})
		require.Error(t, err)
		require.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
		require.Equal(t, http.StatusServiceUnavailable, apperrors.StatusOf(err))
	})

	t.Run("missing access token", func(t *testing.T) {
		c, _ := newClient(t, authapi.Paths{Login: "/empty/login"})
		_, err := c.Login(ctx, authapi.Credentials{Username: "alice", Password: "pw"})
		require.ErrorIs(t, err, apperrors.ErrMalformedToken)
	})
}
