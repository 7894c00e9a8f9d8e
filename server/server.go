// Package server is a thin HTTP surface over the claims/scopes/token engine.
// It wires the authorization-code flow end to end: state validation, code
// issuance, redemption, ID-token assembly and bearer-token signing, plus the
// external identity-provider callback feeding the token bridge.
package server

import (
	"net/http"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-oidc-core/auth"
	"github.com/jrsteele09/go-oidc-core/authcode"
	"github.com/jrsteele09/go-oidc-core/authcode/repocache"
	"github.com/jrsteele09/go-oidc-core/clients"
	"github.com/jrsteele09/go-oidc-core/external"
	"github.com/jrsteele09/go-oidc-core/identity"
	"github.com/jrsteele09/go-oidc-core/internal/config"
	"github.com/jrsteele09/go-oidc-core/scopes"
	"github.com/jrsteele09/go-oidc-core/sessions"
	"github.com/jrsteele09/go-oidc-core/token"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

type Server struct {
	mux      *http.ServeMux
	config   config.Config
	registry scopes.Registry

	clients      *clients.Registry
	users        identity.Repo
	validator    *auth.Validator
	codes        *authcode.Issuer
	codeRepo     authcode.Repo
	generator    *token.Generator
	sessionRepo  sessions.Repo
	bridge       *external.Bridge
	claimCreator *external.ClaimCreator

	idpOnce     sync.Once
	idpErr      error
	idpProvider *oidc.Provider
	idpOAuth    *oauth2.Config
}

func New(cfg config.Config, clientRegistry *clients.Registry, users identity.Repo) (*Server, error) {
	if cfg.GetTokenSecret() == "" {
		return nil, errors.New("[Server New] TOKEN_SECRET is required")
	}

	registry := scopes.DefaultRegistry()

	codes, err := authcode.NewIssuer(authcode.SHA256KeyGenerator{},
		authcode.WithLifetime(cfg.GetAuthorizationCodeLifetime()))
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] code issuer")
	}

	generator, err := token.NewGenerator(token.NewHMACSigner(cfg.GetTokenSecret()),
		token.WithLifetime(cfg.GetAccessTokenLifetime()),
		token.WithIssuer(cfg.GetIssuer()),
		token.WithAudience(cfg.GetAudience()))
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] token generator")
	}

	bridge := external.NewBridge()
	claimCreator, err := external.NewClaimCreator(bridge, newProtector(cfg.GetProtectSecret()))
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] claim creator")
	}

	s := &Server{
		mux:          http.NewServeMux(),
		config:       cfg,
		registry:     registry,
		clients:      clientRegistry,
		users:        users,
		validator:    auth.NewValidator(clientRegistry, clientRegistry, registry),
		codes:        codes,
		codeRepo:     repocache.New(),
		generator:    generator,
		sessionRepo:  sessions.NewInMemoryRepo(),
		bridge:       bridge,
		claimCreator: claimCreator,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc(RouteAuthorize, s.LoggingMiddleware(s.AuthorizeHandler()))
	s.mux.HandleFunc(RouteToken, s.LoggingMiddleware(s.TokenHandler()))
	s.mux.HandleFunc(RouteIntrospect, s.LoggingMiddleware(s.IntrospectHandler()))
	s.mux.HandleFunc(RouteCallback, s.LoggingMiddleware(s.CallbackHandler()))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
