// Package authstub is a development stand-in for the eostre auth backend. It
// issues signed access tokens, keeps refresh tokens in HTTP-only cookies and
// serves the few user endpoints the client needs for end to end runs.
package authstub

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/agbs2k8/eostre/internal/config"
	"github.com/agbs2k8/eostre/token/keys"
	"github.com/agbs2k8/eostre/token/refresh"
	"github.com/agbs2k8/eostre/users"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

type Repos struct {
	Users   users.UserRepo
	Refresh refresh.Repo
}

type Server struct {
	env      string // Environment (e.g. "DEV", "PROD")
	mux      *http.ServeMux
	handler  http.HandlerFunc
	routes   []string
	config   config.Config
	repos    Repos
	signer   keys.Signer
	issuer   *Issuer
	refresh  *refresh.Manager
	revoked  RevokedTokens
	validate *validator.Validate
}

func New(cfg config.Config, repos Repos, signer keys.Signer) (*Server, error) {
	if repos.Users == nil || repos.Refresh == nil {
		return nil, fmt.Errorf("[authstub New] user and refresh token repos are required")
	}
	if signer == nil {
		return nil, fmt.Errorf("[authstub New] a token signer is required")
	}

	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		repos:    repos,
		signer:   signer,
		issuer:   NewIssuer(signer, cfg.GetTokenIssuer(), cfg.GetAccessTokenExpiry()),
		refresh:  refresh.NewManager(repos.Refresh, cfg),
		revoked:  NewMemoryRevokedTokens(),
		validate: validator.New(),
	}

	s.initRoutes()
	s.logRoutes()
	// CORS runs ahead of the mux so preflight requests never reach routing.
	s.handler = ChainMiddleware(s.mux.ServeHTTP, s.StdMiddleware()...)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Debug().Msg(formatRoute(parts[0], parts[1]))
		} else {
			log.Debug().Msg(formatRoute("", parts[0]))
		}
	}
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
