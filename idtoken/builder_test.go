package idtoken_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jrsteele09/go-oidc-core/claims"
	"github.com/jrsteele09/go-oidc-core/idtoken"
	"github.com/jrsteele09/go-oidc-core/scopes"
	"github.com/stretchr/testify/require"
)

var testAuthTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestNewBuilder(t *testing.T) {
	t.Run("blank subject rejected", func(t *testing.T) {
		_, err := idtoken.NewBuilder("  ", testAuthTime)
		require.Error(t, err)
		require.Contains(t, err.Error(), "subject is required")
	})

	t.Run("future authentication time rejected", func(t *testing.T) {
		_, err := idtoken.NewBuilder("user-42", time.Now().Add(time.Hour))
		require.Error(t, err)
	})

	t.Run("zero authentication time rejected", func(t *testing.T) {
		_, err := idtoken.NewBuilder("user-42", time.Time{})
		require.Error(t, err)
	})
}

func TestBuilder_Build(t *testing.T) {
	t.Run("sub and auth_time always first", func(t *testing.T) {
		builder, err := idtoken.NewBuilder("user-42", testAuthTime)
		require.NoError(t, err)

		content, err := builder.Build()
		require.NoError(t, err)
		require.Len(t, content, 2)
		require.Equal(t, claims.New("sub", "user-42"), content[0])
		require.Equal(t, claims.New("auth_time", "1704067200"), content[1])
	})

	t.Run("subject with nonce yields exactly three claims in order", func(t *testing.T) {
		builder, err := idtoken.NewBuilder("user-42", testAuthTime)
		require.NoError(t, err)

		content, err := builder.WithNonce("n-1").Build()
		require.NoError(t, err)
		require.Len(t, content, 3)
		require.Equal(t, "sub", content[0].Type)
		require.Equal(t, "user-42", content[0].Value)
		require.Equal(t, "auth_time", content[1].Type)
		require.Equal(t, "1704067200", content[1].Value)
		require.Equal(t, "nonce", content[2].Type)
		require.Equal(t, "n-1", content[2].Value)
	})

	t.Run("optional claims follow declaration order", func(t *testing.T) {
		builder, err := idtoken.NewBuilder("user-42", testAuthTime)
		require.NoError(t, err)

		content, err := builder.
			WithAuthorizedParty("client-1").
			WithAuthenticationContextClassReference("urn:mace:incommon:iap:silver").
			WithNonce("n-1").
			WithAuthenticationMethodsReferences([]string{"pwd", "otp"}).
			Build()
		require.NoError(t, err)

		types := make([]string, len(content))
		for i, c := range content {
			types[i] = c.Type
		}
		require.Equal(t, []string{"sub", "auth_time", "nonce", "acr", "amr", "azp"}, types)
	})

	t.Run("build is idempotent", func(t *testing.T) {
		builder, err := idtoken.NewBuilder("user-42", testAuthTime)
		require.NoError(t, err)
		builder.WithNonce("n-1").WithCustomClaim("email", "john.doe@example.com")

		first, err := builder.Build()
		require.NoError(t, err)
		second, err := builder.Build()
		require.NoError(t, err)
		require.Equal(t, first, second)
	})
}

func TestBuilder_WithAuthenticationMethodsReferences(t *testing.T) {
	t.Run("blank entries are dropped", func(t *testing.T) {
		builder, err := idtoken.NewBuilder("user-42", testAuthTime)
		require.NoError(t, err)

		content, err := builder.WithAuthenticationMethodsReferences([]string{"pwd", "", "  ", "otp"}).Build()
		require.NoError(t, err)

		amrClaims := claims.OfType("amr", content)
		require.Len(t, amrClaims, 1)

		var methods []string
		require.NoError(t, json.Unmarshal([]byte(amrClaims[0].Value), &methods))
		require.Equal(t, []string{"pwd", "otp"}, methods)
	})

	t.Run("only blank entries yields no amr claim", func(t *testing.T) {
		builder, err := idtoken.NewBuilder("user-42", testAuthTime)
		require.NoError(t, err)

		content, err := builder.WithAuthenticationMethodsReferences([]string{"", "   "}).Build()
		require.NoError(t, err)
		require.Empty(t, claims.OfType("amr", content))
	})
}

func TestBuilder_WithCustomClaim(t *testing.T) {
	reserved := []string{"sub", "auth_time", "nonce", "acr", "amr", "azp"}

	for _, claimType := range reserved {
		t.Run("reserved type "+claimType+" rejected", func(t *testing.T) {
			builder, err := idtoken.NewBuilder("user-42", testAuthTime)
			require.NoError(t, err)

			_, err = builder.WithCustomClaim(claimType, "value").Build()
			require.ErrorIs(t, err, idtoken.ErrReservedClaimType)
			require.Contains(t, err.Error(), claimType)
		})
	}

	t.Run("blank value is accepted and appended", func(t *testing.T) {
		builder, err := idtoken.NewBuilder("user-42", testAuthTime)
		require.NoError(t, err)

		content, err := builder.WithCustomClaim("department", "").Build()
		require.NoError(t, err)
		require.Len(t, content, 3)
		require.Equal(t, claims.New("department", ""), content[2])
	})
}

func TestBuilder_WithCustomClaimsFilteredByClaimType(t *testing.T) {
	candidates := []claims.Claim{
		claims.New("email", "john.doe@example.com"),
		claims.New("role", "admin"),
		claims.New("email", "jd@example.org"),
	}

	t.Run("keeps only matching type", func(t *testing.T) {
		builder, err := idtoken.NewBuilder("user-42", testAuthTime)
		require.NoError(t, err)

		content, err := builder.WithCustomClaimsFilteredByClaimType("email", candidates).Build()
		require.NoError(t, err)
		require.Len(t, claims.OfType("email", content), 2)
		require.Empty(t, claims.OfType("role", content))
	})

	t.Run("reserved type rejected", func(t *testing.T) {
		builder, err := idtoken.NewBuilder("user-42", testAuthTime)
		require.NoError(t, err)

		_, err = builder.WithCustomClaimsFilteredByClaimType("amr", candidates).Build()
		require.ErrorIs(t, err, idtoken.ErrReservedClaimType)
	})
}

func TestBuilder_WithCustomClaimsFilteredByScope(t *testing.T) {
	registry := scopes.DefaultRegistry()
	emailScope := registry[scopes.Email]
	candidates := []claims.Claim{
		claims.New("email", "john.doe@example.com"),
		claims.New("name", "John Doe"),
	}

	t.Run("applies filter when scope is supported and granted", func(t *testing.T) {
		builder, err := idtoken.NewBuilder("user-42", testAuthTime,
			idtoken.WithSupportedScopes(registry),
			idtoken.WithGrantedScopes([]string{scopes.Email}))
		require.NoError(t, err)

		content, err := builder.WithCustomClaimsFilteredByScope(emailScope, candidates).Build()
		require.NoError(t, err)
		require.Len(t, claims.OfType("email", content), 1)
		require.Empty(t, claims.OfType("name", content))
	})

	t.Run("no-op when scope not granted", func(t *testing.T) {
		builder, err := idtoken.NewBuilder("user-42", testAuthTime,
			idtoken.WithSupportedScopes(registry),
			idtoken.WithGrantedScopes([]string{scopes.Profile}))
		require.NoError(t, err)

		content, err := builder.WithCustomClaimsFilteredByScope(emailScope, candidates).Build()
		require.NoError(t, err)
		require.Len(t, content, 2) // just sub and auth_time
	})

	t.Run("reserved types in the filtered result are skipped", func(t *testing.T) {
		builder, err := idtoken.NewBuilder("user-42", testAuthTime,
			idtoken.WithSupportedScopes(registry),
			idtoken.WithGrantedScopes([]string{scopes.OpenID}))
		require.NoError(t, err)

		withSub := append(candidates, claims.New("sub", "user-42"))
		content, err := builder.WithCustomClaimsFilteredByScope(registry[scopes.OpenID], withSub).Build()
		require.NoError(t, err)
		require.Len(t, claims.OfType("sub", content), 1)
	})

	t.Run("no-op when scope not supported", func(t *testing.T) {
		builder, err := idtoken.NewBuilder("user-42", testAuthTime,
			idtoken.WithGrantedScopes([]string{scopes.Email}))
		require.NoError(t, err)

		content, err := builder.WithCustomClaimsFilteredByScope(emailScope, candidates).Build()
		require.NoError(t, err)
		require.Len(t, content, 2)
	})
}
