package authstub

const (
	RouteUserMe             = "/api/v1/user/me"
	RouteAuthorizedAccounts = "/api/v1/user/authorized_accounts"
	RouteAccountUsers       = "/api/v1/account/user"
	RouteRoles              = "/api/v1/role"
	RouteHelloToken         = "/api/v1/hello-token"
	RouteJWKS               = "/.well-known/jwks.json"
	RouteHealth             = "/health"
)

const (
	refreshCookieName = "refresh_token"
	accessCookieName  = "access_token"
)
