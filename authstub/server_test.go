package authstub_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agbs2k8/eostre/authstub"
	"github.com/agbs2k8/eostre/internal/config"
	"github.com/agbs2k8/eostre/token"
	"github.com/agbs2k8/eostre/token/keys"
	refreshrepofake "github.com/agbs2k8/eostre/token/refresh/repofake"
	fakeuserrepo "github.com/agbs2k8/eostre/users/repofake"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

type stubFixture struct {
	srv *httptest.Server
}

func newStub(t *testing.T, signer keys.Signer) *stubFixture {
	t.Helper()
	t.Setenv("ENV", "TEST")
	cfg := config.New()

	repos := authstub.Repos{
		Users:   fakeuserrepo.NewFakeUserRepo(),
		Refresh: refreshrepofake.NewFakeRefreshTokenRepo(),
	}
	_, err := authstub.Seed(repos.Users, cfg)
	require.NoError(t, err)

	if signer == nil {
		signer = keys.NewHMACSigner("test-secret")
	}
	s, err := authstub.New(cfg, repos, signer)
	require.NoError(t, err)

	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return &stubFixture{srv: srv}
}

type response struct {
	status  int
	body    map[string]any
	raw     string
	cookies []*http.Cookie
}

func (f *stubFixture) do(t *testing.T, method, path, body string, headers map[string]string, cookies ...*http.Cookie) response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, f.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := response{status: resp.StatusCode, raw: string(raw), cookies: resp.Cookies()}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out.body))
	}
	return out
}

func (r response) cookie(name string) *http.Cookie {
	for _, c := range r.cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (f *stubFixture) login(t *testing.T) response {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/auth/login", `{"username":"alice","password":"pw"}`, nil)
	require.Equal(t, http.StatusOK, resp.status, resp.raw)
	return resp
}

func bearer(tok any) map[string]string {
	return map[string]string{"Authorization": "Bearer " + tok.(string)}
}

func TestLogin(t *testing.T) {
	f := newStub(t, nil)

	resp := f.login(t)
	require.Equal(t, "Bearer", resp.body["token_type"])
	require.EqualValues(t, 900, resp.body["expires_in"])
	require.NotEmpty(t, resp.body["refresh_token"])

	rc := resp.cookie("refresh_token")
	require.NotNil(t, rc)
	require.True(t, rc.HttpOnly)
	require.Equal(t, resp.body["refresh_token"], rc.Value)
	require.NotNil(t, resp.cookie("access_token"))

	id, err := token.NewDecoder().Decode(context.Background(), resp.body["access_token"].(string))
	require.NoError(t, err)
	require.Equal(t, "alice", id.Username)
	require.Equal(t, "1", id.Subject)
	require.Equal(t, "person", id.Type)
	require.Equal(t, "1", id.AccountID)
	require.True(t, id.Can("1", "location:write"))
	require.Equal(t, int64(900), id.ExpiresAt.Unix()-id.IssuedAt.Unix())
}

func TestLogin_Rejected(t *testing.T) {
	f := newStub(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "wrong password", body: `{"username":"alice","password":"nope"}`, status: http.StatusUnauthorized},
		{name: "unknown user", body: `{"username":"mallory","password":"pw"}`, status: http.StatusUnauthorized},
		{name: "missing password", body: `{"username":"alice"}`, status: http.StatusBadRequest},
		{name: "not json", body: `username=alice`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, http.MethodPost, "/auth/login", tt.body, nil)
			require.Equal(t, tt.status, resp.status)
			require.NotEmpty(t, resp.body["error"])
			require.Nil(t, resp.cookie("refresh_token"))
		})
	}
}

func TestRefresh_RotatesCookie(t *testing.T) {
	f := newStub(t, nil)
	first := f.login(t).cookie("refresh_token")

	resp := f.do(t, http.MethodPost, "/auth/refresh", `{}`, nil, first)
	require.Equal(t, http.StatusOK, resp.status, resp.raw)
	require.NotEmpty(t, resp.body["access_token"])
	require.Nil(t, resp.body["refresh_token"])

	second := resp.cookie("refresh_token")
	require.NotNil(t, second)
	require.NotEqual(t, first.Value, second.Value)

	replay := f.do(t, http.MethodPost, "/auth/refresh", `{}`, nil, first)
	require.Equal(t, http.StatusUnauthorized, replay.status)
	require.Equal(t, "Invalid or expired token", replay.body["error"])

	resp = f.do(t, http.MethodPost, "/auth/refresh", `{}`, nil, second)
	require.Equal(t, http.StatusOK, resp.status)
}

func TestRefresh_BodyToken(t *testing.T) {
	f := newStub(t, nil)
	rt := f.login(t).body["refresh_token"].(string)

	resp := f.do(t, http.MethodPost, "/auth/refresh", `{"refresh_token":"`+rt+`"}`, nil)
	require.Equal(t, http.StatusOK, resp.status)
}

func TestRefresh_MissingToken(t *testing.T) {
	f := newStub(t, nil)

	resp := f.do(t, http.MethodPost, "/auth/refresh", `{}`, nil)
	require.Equal(t, http.StatusUnauthorized, resp.status)
	require.Equal(t, "Missing token", resp.body["error"])
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	f := newStub(t, nil)
	rc := f.login(t).cookie("refresh_token")

	resp := f.do(t, http.MethodPost, "/auth/logout", "", nil, rc)
	require.Equal(t, http.StatusOK, resp.status)
	cleared := resp.cookie("refresh_token")
	require.NotNil(t, cleared)
	require.Negative(t, cleared.MaxAge)

	resp = f.do(t, http.MethodPost, "/auth/refresh", `{}`, nil, rc)
	require.Equal(t, http.StatusUnauthorized, resp.status)

	// Logging out without a session still succeeds
	resp = f.do(t, http.MethodPost, "/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, resp.status)
}

func TestLogout_RevokesAccessToken(t *testing.T) {
	f := newStub(t, nil)
	access := f.login(t).body["access_token"]

	resp := f.do(t, http.MethodGet, "/api/v1/hello-token", "", bearer(access))
	require.Equal(t, http.StatusOK, resp.status)

	resp = f.do(t, http.MethodPost, "/auth/logout", "", bearer(access))
	require.Equal(t, http.StatusOK, resp.status)

	resp = f.do(t, http.MethodGet, "/api/v1/hello-token", "", bearer(access))
	require.Equal(t, http.StatusUnauthorized, resp.status)
	require.Equal(t, "Token has been revoked", resp.body["error"])
}

func TestRequireAuth(t *testing.T) {
	f := newStub(t, nil)
	access := f.login(t).body["access_token"]

	resp := f.do(t, http.MethodGet, "/api/v1/hello-token", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.status)

	resp = f.do(t, http.MethodGet, "/api/v1/hello-token", "", map[string]string{"Authorization": "Basic abc"})
	require.Equal(t, http.StatusUnauthorized, resp.status)

	resp = f.do(t, http.MethodGet, "/api/v1/hello-token", "", bearer("garbage"))
	require.Equal(t, http.StatusUnauthorized, resp.status)

	forged, err := keys.NewHMACSigner("other-secret").Sign(&token.Claims{Username: "alice"})
	require.NoError(t, err)
	resp = f.do(t, http.MethodGet, "/api/v1/hello-token", "", bearer(forged))
	require.Equal(t, http.StatusUnauthorized, resp.status)

	resp = f.do(t, http.MethodGet, "/api/v1/hello-token", "", bearer(access))
	require.Equal(t, http.StatusOK, resp.status)
	require.Equal(t, "Hello, alice", resp.body["message"])
	require.Equal(t, "1", resp.body["account_id"])
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	f := newStub(t, nil)

	authstub.NowTimeFunc = func() time.Time { return time.Now().Add(-time.Hour) }
	t.Cleanup(func() { authstub.NowTimeFunc = time.Now })
	access := f.login(t).body["access_token"]
	authstub.NowTimeFunc = time.Now

	resp := f.do(t, http.MethodGet, "/api/v1/hello-token", "", bearer(access))
	require.Equal(t, http.StatusUnauthorized, resp.status)
	require.Equal(t, "Invalid or expired token", resp.body["error"])
}

func TestUserMe(t *testing.T) {
	f := newStub(t, nil)
	auth := bearer(f.login(t).body["access_token"])

	resp := f.do(t, http.MethodGet, "/api/v1/user/me", "", auth)
	require.Equal(t, http.StatusOK, resp.status, resp.raw)
	require.Equal(t, "alice", resp.body["name"])
	require.Equal(t, "person", resp.body["type"])
	require.NotNil(t, resp.body["permissions"])
	require.NotContains(t, resp.raw, "PasswordHash")

	resp = f.do(t, http.MethodPost, "/api/v1/user/me", `{"display_name":"Alice A.","family_names":"Liddell"}`, auth)
	require.Equal(t, http.StatusOK, resp.status, resp.raw)
	require.Equal(t, "Alice A.", resp.body["display_name"])
	require.Equal(t, "Liddell", resp.body["family_names"])

	resp = f.do(t, http.MethodGet, "/api/v1/user/me", "", auth)
	require.Equal(t, "Alice A.", resp.body["display_name"])

	resp = f.do(t, http.MethodPost, "/api/v1/user/me", `{"display_name":""}`, auth)
	require.Equal(t, http.StatusBadRequest, resp.status)
}

func TestAuthorizedAccountsAndRoles(t *testing.T) {
	f := newStub(t, nil)
	auth := bearer(f.login(t).body["access_token"])

	resp := f.do(t, http.MethodGet, "/api/v1/user/authorized_accounts", "", auth)
	require.Equal(t, http.StatusOK, resp.status)
	require.JSONEq(t, `[{"id":"1","name":"eostre","display_name":"Eostre","active":true}]`, resp.raw)

	resp = f.do(t, http.MethodGet, "/api/v1/role", "", auth)
	require.Equal(t, http.StatusOK, resp.status)
	require.Contains(t, resp.raw, `"name":"admin"`)
	require.Contains(t, resp.raw, `"name":"viewer"`)
}

func TestAccountUsers(t *testing.T) {
	f := newStub(t, nil)

	resp := f.do(t, http.MethodGet, "/api/v1/account/user", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.status)

	resp = f.do(t, http.MethodGet, "/api/v1/account/user", "", bearer(f.login(t).body["access_token"]))
	require.Equal(t, http.StatusOK, resp.status)

	var members []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.raw), &members))
	require.Len(t, members, 1)
	require.Equal(t, "alice", members[0]["name"])
	require.Equal(t, "alice@example.com", members[0]["email"])
	require.Len(t, members[0]["grants"], 1)
}

func TestCors(t *testing.T) {
	f := newStub(t, nil)

	resp := f.do(t, http.MethodOptions, "/auth/login", "", map[string]string{"Origin": "http://localhost:3000"})
	require.Equal(t, http.StatusNoContent, resp.status)

	req, err := http.NewRequest(http.MethodOptions, f.srv.URL+"/auth/refresh", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, "http://localhost:3000", res.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", res.Header.Get("Access-Control-Allow-Credentials"))
	require.Contains(t, res.Header.Get("Access-Control-Allow-Headers"), "Authorization")

	req.Header.Set("Origin", "http://evil.example")
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Empty(t, res.Header.Get("Access-Control-Allow-Origin"))
}

func TestJWKS(t *testing.T) {
	f := newStub(t, nil)
	resp := f.do(t, http.MethodGet, "/.well-known/jwks.json", "", nil)
	require.Equal(t, http.StatusNotFound, resp.status)

	kp, err := keys.GenerateRSAKeyPair("kid-1", 2048)
	require.NoError(t, err)
	f = newStub(t, keys.NewKeyPairSigner(kp))

	resp = f.do(t, http.MethodGet, "/.well-known/jwks.json", "", nil)
	require.Equal(t, http.StatusOK, resp.status)
	require.Contains(t, resp.raw, `"kid":"kid-1"`)

	access := f.login(t).body["access_token"]
	resp = f.do(t, http.MethodGet, "/api/v1/hello-token", "", bearer(access))
	require.Equal(t, http.StatusOK, resp.status)
}

func TestHealth(t *testing.T) {
	f := newStub(t, nil)
	resp := f.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.status)
	require.Equal(t, "ok", resp.body["status"])
}
