// Package external bridges third-party identity-provider tokens into the
// local session. A provider token stashed as loosely-typed session items is
// reconstructed into an oauth2.Token and wrapped as a single opaque protected
// claim on the local identity.
package external

import (
	"strconv"
	"time"

	"github.com/jrsteele09/go-oidc-core/sessions"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// Session item keys written by the external login callback.
const (
	ProviderItem     = "external.provider"
	TokenTypeItem    = "external.token_type"
	AccessTokenItem  = "external.access_token"
	RefreshTokenItem = "external.refresh_token"
	ExpiresAtItem    = "external.expires_at" // RFC3339
	ExpiresInItem    = "external.expires_in" // seconds from now
)

// Provider names recorded in the session.
const (
	ProviderMicrosoft = "microsoft"
	ProviderGoogle    = "google"
)

// Bridge reconstructs provider tokens from session items.
type Bridge struct {
	nowFunc func() time.Time
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithNowFunc sets the now time function (primarily for testing).
func WithNowFunc(nowFunc func() time.Time) BridgeOption {
	return func(b *Bridge) {
		b.nowFunc = nowFunc
	}
}

// NewBridge creates a bridge.
func NewBridge(options ...BridgeOption) *Bridge {
	bridge := &Bridge{nowFunc: time.Now}
	for _, opt := range options {
		opt(bridge)
	}
	return bridge
}

// CanBuild reports whether the session items carry a token type, an access
// token and at least one expiry representation.
func (b *Bridge) CanBuild(items sessions.Items) bool {
	if items[TokenTypeItem] == "" || items[AccessTokenItem] == "" {
		return false
	}
	return items[ExpiresAtItem] != "" || items[ExpiresInItem] != ""
}

// Build reconstructs the provider token. The token is refreshable when a
// refresh token item is present. An absolute expires-at item takes precedence
// over a relative expires-in item.
func (b *Bridge) Build(items sessions.Items) (*oauth2.Token, error) {
	if !b.CanBuild(items) {
		return nil, errors.New("[Bridge.Build] session items do not describe a token")
	}

	expiry, err := b.resolveExpiry(items)
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		TokenType:    items[TokenTypeItem],
		AccessToken:  items[AccessTokenItem],
		RefreshToken: items[RefreshTokenItem],
		Expiry:       expiry,
	}, nil
}

func (b *Bridge) resolveExpiry(items sessions.Items) (time.Time, error) {
	if at := items[ExpiresAtItem]; at != "" {
		expiry, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return time.Time{}, errors.Wrap(err, "Bridge.Build parse expires_at")
		}
		return expiry, nil
	}

	seconds, err := strconv.ParseInt(items[ExpiresInItem], 10, 64)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "Bridge.Build parse expires_in")
	}
	return b.nowFunc().Add(time.Duration(seconds) * time.Second), nil
}
