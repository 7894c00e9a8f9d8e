package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-oidc-core/auth"
	"github.com/jrsteele09/go-oidc-core/authcode"
	"github.com/jrsteele09/go-oidc-core/claims"
	"github.com/jrsteele09/go-oidc-core/identity"
	"github.com/jrsteele09/go-oidc-core/idtoken"
	"github.com/jrsteele09/go-oidc-core/internal/utils"
	"github.com/jrsteele09/go-oidc-core/scopes"
	"github.com/rs/zerolog/log"
)

// Claim types internal to the flow, stored in the code record alongside the
// identity claims and stripped back out at redemption.
const (
	grantScopeClaimType = "grant.scope"
	grantNonceClaimType = "grant.nonce"
	grantAuthClaimType  = "grant.auth_time"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token,omitempty"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// AuthorizeHandler validates the authorization request, authenticates the
// resource owner and redirects back with a fresh authorization code.
func (s *Server) AuthorizeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "malformed request", http.StatusBadRequest)
			return
		}

		state := &auth.State{
			ResponseType:  auth.ResponseType(r.FormValue("response_type")),
			ClientID:      r.FormValue("client_id"),
			RedirectURI:   r.FormValue("redirect_uri"),
			Scopes:        strings.Fields(r.FormValue("scope")),
			ExternalState: r.FormValue("state"),
			Nonce:         r.FormValue("nonce"),
		}

		if violations := s.validator.ValidateState(state); len(violations) > 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"violations": violations})
			return
		}

		user, err := s.login(r.FormValue("email"), r.FormValue("password"))
		if err != nil {
			http.Error(w, "authentication failed", http.StatusUnauthorized)
			return
		}

		identityClaims := append([]claims.Claim{claims.New("sub", user.ID)}, user.Claims()...)
		identityClaims = s.appendExternalTokenClaim(identityClaims, r.FormValue("session_id"))

		code, err := s.codes.Generate()
		if err != nil {
			http.Error(w, "failed to issue code", http.StatusInternalServerError)
			return
		}

		// Grant metadata rides in the record next to the identity claims.
		recorded := append(identityClaims,
			claims.New(grantScopeClaimType, strings.Join(state.Scopes, " ")),
			claims.New(grantNonceClaimType, state.Nonce),
			claims.New(grantAuthClaimType, strconv.FormatInt(time.Now().UTC().Unix(), 10)),
		)
		if err := s.codeRepo.Store(authcode.ToRecord(code, recorded)); err != nil {
			http.Error(w, "failed to store code", http.StatusInternalServerError)
			return
		}

		redirect, _ := url.Parse(state.RedirectURI)
		query := redirect.Query()
		query.Set("code", code.Value)
		if state.ExternalState != "" {
			query.Set("state", state.ExternalState)
		}
		redirect.RawQuery = query.Encode()
		http.Redirect(w, r, redirect.String(), http.StatusFound)
	}
}

// TokenHandler redeems authorization codes and serves the client-credentials
// grant.
func (s *Server) TokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "malformed request", http.StatusBadRequest)
			return
		}

		clientID := r.FormValue("client_id")
		client, err := s.clients.Get(clientID)
		if err != nil || client.Secret != r.FormValue("client_secret") {
			http.Error(w, "invalid client credentials", http.StatusUnauthorized)
			return
		}

		switch r.FormValue("grant_type") {
		case "client_credentials":
			s.clientCredentialsGrant(w, clientID, strings.Fields(r.FormValue("scope")))
		case "authorization_code":
			s.authorizationCodeGrant(w, clientID, r.FormValue("code"))
		default:
			http.Error(w, "unsupported grant type", http.StatusBadRequest)
		}
	}
}

func (s *Server) clientCredentialsGrant(w http.ResponseWriter, clientID string, scopeNames []string) {
	issued, err := s.generator.GenerateForClient(clientID, scopeNames)
	if err != nil {
		http.Error(w, "failed to issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: issued.AccessToken,
		TokenType:   issued.TokenType,
		ExpiresIn:   int(time.Until(issued.Expires).Seconds()),
		Scope:       strings.Join(scopeNames, " "),
	})
}

func (s *Server) authorizationCodeGrant(w http.ResponseWriter, clientID, codeValue string) {
	record, err := s.codeRepo.Redeem(codeValue)
	if err != nil {
		http.Error(w, "invalid authorization code", http.StatusBadRequest)
		return
	}

	code, recorded := authcode.FromRecord(*record)
	if time.Now().After(code.Expires) {
		http.Error(w, "authorization code expired", http.StatusBadRequest)
		return
	}

	identityClaims, grantedScopes, nonce, authTime := splitGrantMetadata(recorded)

	subject := ""
	if subs := claims.OfType("sub", identityClaims); len(subs) > 0 {
		subject = subs[0].Value
	}

	builder, err := idtoken.NewBuilder(subject, authTime,
		idtoken.WithSupportedScopes(s.registry),
		idtoken.WithGrantedScopes(grantedScopes))
	if err != nil {
		http.Error(w, "failed to build id token", http.StatusInternalServerError)
		return
	}
	builder.WithNonce(nonce).WithAuthorizedParty(clientID)
	for _, name := range grantedScopes {
		if scope, ok := s.registry[name]; ok {
			builder.WithCustomClaimsFilteredByScope(scope, identityClaims)
		}
	}
	idClaims, err := builder.Build()
	if err != nil {
		http.Error(w, "failed to build id token", http.StatusInternalServerError)
		return
	}

	idToken, err := s.generator.Generate(idClaims)
	if err != nil {
		http.Error(w, "failed to sign id token", http.StatusInternalServerError)
		return
	}

	accessClaims := scopes.Select(s.registry, grantedScopes, identityClaims)
	accessToken, err := s.generator.Generate(accessClaims)
	if err != nil {
		http.Error(w, "failed to sign access token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: accessToken.AccessToken,
		IDToken:     idToken.AccessToken,
		TokenType:   accessToken.TokenType,
		ExpiresIn:   int(time.Until(accessToken.Expires).Seconds()),
		Scope:       strings.Join(grantedScopes, " "),
	})
}

// IntrospectHandler reports metadata about locally-issued tokens.
func (s *Server) IntrospectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "malformed request", http.StatusBadRequest)
			return
		}

		introspection, err := s.generator.Introspect(r.FormValue("token"))
		if err != nil {
			introspection.Active = false
		}
		log.Debug().Str("sub", utils.Value(introspection.Sub)).Bool("active", introspection.Active).Msg("token introspected")
		writeJSON(w, http.StatusOK, introspection)
	}
}

func (s *Server) login(email, password string) (*identity.User, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user.Blocked || !user.Verified {
		return nil, errAuthenticationFailed
	}
	if !identity.CheckPasswordHash(password, user.PasswordHash) {
		return nil, errAuthenticationFailed
	}
	return user, nil
}

func (s *Server) appendExternalTokenClaim(identityClaims []claims.Claim, sessionID string) []claims.Claim {
	if sessionID == "" {
		return identityClaims
	}
	items, err := s.sessionRepo.Items(sessionID)
	if err != nil || !s.bridge.CanBuild(items) {
		return identityClaims
	}
	externalClaim, err := s.claimCreator.Create(items)
	if err != nil {
		log.Warn().Err(err).Msg("failed to wrap external token claim")
		return identityClaims
	}
	return append(identityClaims, *externalClaim)
}

func splitGrantMetadata(recorded []claims.Claim) (identityClaims []claims.Claim, grantedScopes []string, nonce string, authTime time.Time) {
	for _, c := range recorded {
		switch c.Type {
		case grantScopeClaimType:
			grantedScopes = strings.Fields(c.Value)
		case grantNonceClaimType:
			nonce = c.Value
		case grantAuthClaimType:
			if seconds, err := strconv.ParseInt(c.Value, 10, 64); err == nil {
				authTime = time.Unix(seconds, 0).UTC()
			}
		default:
			identityClaims = append(identityClaims, c)
		}
	}
	return identityClaims, grantedScopes, nonce, authTime
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
