package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-oidc-core/claims"
	"github.com/jrsteele09/go-oidc-core/internal/utils"
	"github.com/jrsteele09/go-oidc-core/token"
	"github.com/stretchr/testify/require"
)

const (
	secretStr = "1234"
	issuer    = "com.testissuer"
	audience  = "api"
)

func newTestGenerator(t *testing.T, options ...token.GeneratorOption) *token.Generator {
	t.Helper()

	options = append([]token.GeneratorOption{
		token.WithIssuer(issuer),
		token.WithAudience(audience),
	}, options...)
	generator, err := token.NewGenerator(token.NewHMACSigner(secretStr), options...)
	require.NoError(t, err)
	return generator
}

func parseClaims(t *testing.T, rawToken string) jwt.MapClaims {
	t.Helper()

	parsed, err := jwt.Parse(rawToken, func(*jwt.Token) (any, error) { return []byte(secretStr), nil })
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return mapClaims
}

func TestGenerator_Generate(t *testing.T) {
	identity := []claims.Claim{
		claims.New("sub", "user-42"),
		claims.New("email", "john.doe@example.com"),
	}

	t.Run("issues a bearer token expiring in one hour", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		generator := newTestGenerator(t, token.WithNowFunc(func() time.Time { return now }))

		issued, err := generator.Generate(identity)
		require.NoError(t, err)
		require.Equal(t, "Bearer", issued.TokenType)
		require.Equal(t, now.Add(time.Hour), issued.Expires)
	})

	t.Run("claims land in the signed payload", func(t *testing.T) {
		generator := newTestGenerator(t)
		issued, err := generator.Generate(identity)
		require.NoError(t, err)

		payload := parseClaims(t, issued.AccessToken)
		require.Equal(t, "user-42", payload["sub"])
		require.Equal(t, "john.doe@example.com", payload["email"])
		require.Equal(t, issuer, payload["iss"])
		require.Equal(t, audience, payload["aud"])
		require.NotEmpty(t, payload["jti"])
	})

	t.Run("repeated claim types collapse into an array", func(t *testing.T) {
		generator := newTestGenerator(t)
		issued, err := generator.Generate([]claims.Claim{
			claims.New("role", "admin"),
			claims.New("role", "editor"),
		})
		require.NoError(t, err)

		payload := parseClaims(t, issued.AccessToken)
		require.ElementsMatch(t, []any{"admin", "editor"}, payload["role"])
	})

	t.Run("lifetime is configurable", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		generator := newTestGenerator(t,
			token.WithLifetime(5*time.Minute),
			token.WithNowFunc(func() time.Time { return now }))

		issued, err := generator.Generate(identity)
		require.NoError(t, err)
		require.Equal(t, now.Add(5*time.Minute), issued.Expires)
	})

	t.Run("signer is required", func(t *testing.T) {
		_, err := token.NewGenerator(nil)
		require.Error(t, err)
	})
}

func TestGenerator_GenerateForClient(t *testing.T) {
	generator := newTestGenerator(t)

	t.Run("client id becomes the subject", func(t *testing.T) {
		issued, err := generator.GenerateForClient("service-a", []string{"email", "profile"})
		require.NoError(t, err)

		payload := parseClaims(t, issued.AccessToken)
		require.Equal(t, "service-a", payload["sub"])
		require.Equal(t, "email profile", payload["scope"])
	})

	t.Run("blank client id rejected", func(t *testing.T) {
		_, err := generator.GenerateForClient("  ", nil)
		require.Error(t, err)
	})
}

func TestGenerator_Introspect(t *testing.T) {
	generator := newTestGenerator(t)

	t.Run("issued token is active", func(t *testing.T) {
		issued, err := generator.Generate([]claims.Claim{claims.New("sub", "user-42")})
		require.NoError(t, err)

		introspection, err := generator.Introspect(issued.AccessToken)
		require.NoError(t, err)
		require.True(t, introspection.Active)
		require.Equal(t, "user-42", utils.Value(introspection.Sub))
		require.Equal(t, issuer, utils.Value(introspection.Iss))
	})

	t.Run("empty token is inactive", func(t *testing.T) {
		introspection, err := generator.Introspect("  ")
		require.NoError(t, err)
		require.False(t, introspection.Active)
	})

	t.Run("tampered token is inactive", func(t *testing.T) {
		issued, err := generator.Generate([]claims.Claim{claims.New("sub", "user-42")})
		require.NoError(t, err)

		introspection, _ := generator.Introspect(issued.AccessToken + "x")
		require.False(t, introspection.Active)
	})
}
