package authstub

import (
	"net/http"
	"strings"
	"time"

	"github.com/agbs2k8/eostre/token/keys"
	"github.com/agbs2k8/eostre/users"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := s.repos.Users.GetByName(req.Username)
	if err != nil || !user.CanLogin() || !user.CheckPassword(req.Password) {
		log.Info().Str("username", req.Username).Msg("login rejected")
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	refreshToken, err := s.refresh.Create(user.ID, user.DefaultAccountID)
	if err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("failed to create refresh token")
		writeError(w, http.StatusInternalServerError, "Unable to create session")
		return
	}

	resp, ok := s.issueAccessToken(w, r, user, user.DefaultAccountID)
	if !ok {
		return
	}
	resp.RefreshToken = refreshToken
	s.setTokenCookie(w, r, refreshCookieName, refreshToken, s.config.GetRefreshTokenExpiry())

	updated := *user
	updated.LastLogin = NowTimeFunc()
	if err := s.repos.Users.Upsert(&updated); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	}

	log.Info().Str("user_id", user.ID).Str("username", user.Name).Msg("user logged in")
	writeJSON(w, http.StatusOK, resp)
}

// RefreshHandler rotates the refresh cookie and issues a new access token.
// A refresh_token field in the body is accepted when no cookie is sent.
func (s *Server) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var raw string
	if c, err := r.Cookie(refreshCookieName); err == nil {
		raw = c.Value
	}
	if raw == "" {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		raw = body.RefreshToken
	}
	if raw == "" {
		writeError(w, http.StatusUnauthorized, "Missing token")
		return
	}

	rt, next, err := s.refresh.Rotate(raw)
	if err != nil {
		log.Debug().Err(err).Msg("refresh rejected")
		s.clearTokenCookie(w, r, refreshCookieName)
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	user, err := s.repos.Users.GetByID(rt.UserID)
	if err != nil || !user.CanLogin() {
		_ = s.refresh.Revoke(next)
		s.clearTokenCookie(w, r, refreshCookieName)
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	resp, ok := s.issueAccessToken(w, r, user, rt.AccountID)
	if !ok {
		return
	}
	s.setTokenCookie(w, r, refreshCookieName, next, s.config.GetRefreshTokenExpiry())
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(refreshCookieName); err == nil && c.Value != "" {
		if err := s.refresh.Revoke(c.Value); err != nil {
			log.Err(err).Msg("failed to revoke refresh token")
		}
	}
	s.revokeAccessToken(r)
	s.revoked.Cleanup()
	s.clearTokenCookie(w, r, refreshCookieName)
	s.clearTokenCookie(w, r, accessCookieName)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// revokeAccessToken blocks the caller's still valid access token, taken from
// the bearer header or the access cookie.
func (s *Server) revokeAccessToken(r *http.Request) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if raw == "" {
		if c, err := r.Cookie(accessCookieName); err == nil {
			raw = c.Value
		}
	}
	if raw == "" {
		return
	}
	claims, err := s.issuer.Verify(raw)
	if err != nil {
		return
	}
	s.revoked.Add(claims.ID, claims.ExpiresAt.Time)
	log.Debug().Str("jti", claims.ID).Msg("access token revoked")
}

func (s *Server) JWKSHandler(w http.ResponseWriter, r *http.Request) {
	signer, ok := s.signer.(*keys.KeyPairSigner)
	if !ok {
		writeError(w, http.StatusNotFound, "No public keys")
		return
	}
	jwks, err := signer.GetJWKS()
	if err != nil {
		log.Err(err).Msg("failed to build JWKS")
		writeError(w, http.StatusInternalServerError, "Unable to load keys")
		return
	}
	writeJSON(w, http.StatusOK, jwks)
}

// issueAccessToken signs a token for user and sets the access cookie. It
// writes the error response itself and reports false on failure.
func (s *Server) issueAccessToken(w http.ResponseWriter, r *http.Request, user *users.User, accountID string) (tokenResponse, bool) {
	access, exp, err := s.issuer.Issue(user, accountID)
	if err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("failed to issue access token")
		writeError(w, http.StatusInternalServerError, "Unable to issue token")
		return tokenResponse{}, false
	}

	expiresIn := exp.Sub(NowTimeFunc()).Round(time.Second)
	s.setTokenCookie(w, r, accessCookieName, access, expiresIn)
	return tokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(expiresIn.Seconds()),
	}, true
}
