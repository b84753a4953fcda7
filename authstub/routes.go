package authstub

import (
	"net/http"

	"github.com/agbs2k8/eostre/token/keys"
)

func (s *Server) initRoutes() {
	authed := []func(http.HandlerFunc) http.HandlerFunc{s.RequireAuth()}

	s.RegisterRouteFunc("POST "+s.config.GetLoginPath(), s.LoginHandler)
	s.RegisterRouteFunc("POST "+s.config.GetRefreshPath(), s.RefreshHandler)
	s.RegisterRouteFunc("POST "+s.config.GetLogoutPath(), s.LogoutHandler)

	s.RegisterRouteFunc("GET "+RouteUserMe, ChainMiddleware(s.GetMeHandler, authed...))
	s.RegisterRouteFunc("POST "+RouteUserMe, ChainMiddleware(s.UpdateMeHandler, authed...))
	s.RegisterRouteFunc("GET "+RouteAuthorizedAccounts, ChainMiddleware(s.AuthorizedAccountsHandler, authed...))
	s.RegisterRouteFunc("GET "+RouteAccountUsers, ChainMiddleware(s.AccountUsersHandler, authed...))
	s.RegisterRouteFunc("GET "+RouteRoles, ChainMiddleware(s.RolesHandler, authed...))
	s.RegisterRouteFunc("GET "+RouteHelloToken, ChainMiddleware(s.HelloTokenHandler, authed...))

	if _, ok := s.signer.(*keys.KeyPairSigner); ok {
		s.RegisterRouteFunc("GET "+RouteJWKS, s.JWKSHandler)
	}
	s.RegisterRouteFunc("GET "+RouteHealth, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
