package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-oidc-core/external"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

var errAuthenticationFailed = errors.New("authentication failed")

// CallbackHandler completes an external identity-provider login: it exchanges
// the provider's authorization code, verifies the returned ID token and
// stashes the provider token as session items for the token bridge.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.FormValue("code")
		if code == "" {
			http.Error(w, "Missing code parameter", http.StatusBadRequest)
			return
		}
		if errorParam := r.FormValue("error"); errorParam != "" {
			http.Error(w, fmt.Sprintf("Authorization failed: %s - %s", errorParam, r.FormValue("error_description")), http.StatusBadRequest)
			return
		}

		provider, oauthConfig, err := s.idpConfig(r.Context())
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get IdP config: %v", err), http.StatusInternalServerError)
			return
		}

		providerToken, err := oauthConfig.Exchange(r.Context(), code)
		if err != nil {
			http.Error(w, fmt.Sprintf("Token exchange failed: %v", err), http.StatusInternalServerError)
			return
		}

		rawIDToken, ok := providerToken.Extra("id_token").(string)
		if !ok {
			http.Error(w, "No ID token in response", http.StatusInternalServerError)
			return
		}

		verifier := provider.Verifier(&oidc.Config{ClientID: oauthConfig.ClientID})
		if _, err := verifier.Verify(r.Context(), rawIDToken); err != nil {
			http.Error(w, fmt.Sprintf("ID token verification failed: %v", err), http.StatusUnauthorized)
			return
		}

		sessionID := uuid.NewString()
		items := map[string]string{
			external.ProviderItem:    s.config.GetIdpProvider(),
			external.TokenTypeItem:   providerToken.TokenType,
			external.AccessTokenItem: providerToken.AccessToken,
		}
		if providerToken.RefreshToken != "" {
			items[external.RefreshTokenItem] = providerToken.RefreshToken
		}
		if !providerToken.Expiry.IsZero() {
			items[external.ExpiresAtItem] = providerToken.Expiry.UTC().Format(time.RFC3339)
		} else {
			items[external.ExpiresInItem] = strconv.Itoa(int(time.Hour.Seconds()))
		}
		for key, value := range items {
			if err := s.sessionRepo.Put(sessionID, key, value); err != nil {
				http.Error(w, "Failed to create session", http.StatusInternalServerError)
				return
			}
		}

		writeJSON(w, http.StatusOK, map[string]string{"session_id": sessionID})
	}
}

// idpConfig lazily discovers the external identity provider.
func (s *Server) idpConfig(ctx context.Context) (*oidc.Provider, *oauth2.Config, error) {
	s.idpOnce.Do(func() {
		provider, err := oidc.NewProvider(ctx, s.config.GetIdpIssuer())
		if err != nil {
			s.idpErr = errors.Wrap(err, "Server.idpConfig NewProvider")
			return
		}
		s.idpProvider = provider
		s.idpOAuth = &oauth2.Config{
			ClientID:     s.config.GetIdpClientID(),
			ClientSecret: s.config.GetIdpClientSecret(),
			RedirectURL:  s.config.GetIdpRedirectURL(),
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		}
	})
	if s.idpErr != nil {
		return nil, nil, s.idpErr
	}
	return s.idpProvider, s.idpOAuth, nil
}
