package server

const (
	RouteAuthorize  = "/oauth/authorize"
	RouteToken      = "/oauth/token"
	RouteIntrospect = "/oauth/introspect"
	RouteCallback   = "/callback"
)
