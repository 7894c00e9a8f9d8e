package external_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-oidc-core/external"
	"github.com/jrsteele09/go-oidc-core/sessions"
	"github.com/stretchr/testify/require"
)

func tokenItems() sessions.Items {
	return sessions.Items{
		external.ProviderItem:    external.ProviderGoogle,
		external.TokenTypeItem:   "Bearer",
		external.AccessTokenItem: "ya29.access-token",
		external.ExpiresInItem:   "3600",
	}
}

func TestBridge_CanBuild(t *testing.T) {
	bridge := external.NewBridge()

	t.Run("complete items", func(t *testing.T) {
		require.True(t, bridge.CanBuild(tokenItems()))
	})

	t.Run("missing token type", func(t *testing.T) {
		items := tokenItems()
		delete(items, external.TokenTypeItem)
		require.False(t, bridge.CanBuild(items))
	})

	t.Run("missing access token", func(t *testing.T) {
		items := tokenItems()
		delete(items, external.AccessTokenItem)
		require.False(t, bridge.CanBuild(items))
	})

	t.Run("missing both expiry representations", func(t *testing.T) {
		items := tokenItems()
		delete(items, external.ExpiresInItem)
		require.False(t, bridge.CanBuild(items))
	})

	t.Run("absolute expiry alone is enough", func(t *testing.T) {
		items := tokenItems()
		delete(items, external.ExpiresInItem)
		items[external.ExpiresAtItem] = "2024-06-01T12:00:00Z"
		require.True(t, bridge.CanBuild(items))
	})
}

func TestBridge_Build(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bridge := external.NewBridge(external.WithNowFunc(func() time.Time { return now }))

	t.Run("plain token from relative expiry", func(t *testing.T) {
		providerToken, err := bridge.Build(tokenItems())
		require.NoError(t, err)
		require.Equal(t, "Bearer", providerToken.TokenType)
		require.Equal(t, "ya29.access-token", providerToken.AccessToken)
		require.Empty(t, providerToken.RefreshToken)
		require.Equal(t, now.Add(time.Hour), providerToken.Expiry)
	})

	t.Run("refreshable token when refresh token present", func(t *testing.T) {
		items := tokenItems()
		items[external.RefreshTokenItem] = "1//refresh-token"
		providerToken, err := bridge.Build(items)
		require.NoError(t, err)
		require.Equal(t, "1//refresh-token", providerToken.RefreshToken)
	})

	t.Run("absolute expiry takes precedence over relative", func(t *testing.T) {
		items := tokenItems()
		items[external.ExpiresAtItem] = "2024-06-01T12:00:00Z"
		providerToken, err := bridge.Build(items)
		require.NoError(t, err)
		require.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), providerToken.Expiry.UTC())
	})

	t.Run("incomplete items rejected", func(t *testing.T) {
		_, err := bridge.Build(sessions.Items{})
		require.Error(t, err)
	})

	t.Run("malformed expires_at rejected", func(t *testing.T) {
		items := tokenItems()
		items[external.ExpiresAtItem] = "yesterday"
		_, err := bridge.Build(items)
		require.Error(t, err)
	})
}

func TestClaimCreator_Create(t *testing.T) {
	bridge := external.NewBridge()
	sealing := func(value string) (string, error) { return "sealed:" + value, nil }

	t.Run("wraps token as a google claim", func(t *testing.T) {
		creator, err := external.NewClaimCreator(bridge, sealing)
		require.NoError(t, err)

		claim, err := creator.Create(tokenItems())
		require.NoError(t, err)
		require.Equal(t, "urn:goauth:token", claim.Type)
		require.Contains(t, claim.Value, "sealed:")
		require.Contains(t, claim.Value, "ya29.access-token")
	})

	t.Run("microsoft provider selects the microsoft claim type", func(t *testing.T) {
		creator, err := external.NewClaimCreator(bridge, sealing)
		require.NoError(t, err)

		items := tokenItems()
		items[external.ProviderItem] = external.ProviderMicrosoft
		claim, err := creator.Create(items)
		require.NoError(t, err)
		require.Equal(t, "urn:msauth:token", claim.Type)
	})

	t.Run("unknown provider rejected", func(t *testing.T) {
		creator, err := external.NewClaimCreator(bridge, sealing)
		require.NoError(t, err)

		items := tokenItems()
		items[external.ProviderItem] = "github"
		_, err = creator.Create(items)
		require.Error(t, err)
		require.Contains(t, err.Error(), `unknown provider "github"`)
	})

	t.Run("protect callback is required", func(t *testing.T) {
		_, err := external.NewClaimCreator(bridge, nil)
		require.Error(t, err)
	})
}
