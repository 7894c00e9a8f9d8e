// Package token signs and issues bearer tokens from authenticated claim
// sets, and builds verification keys from raw RSA parameters for tokens
// issued elsewhere.
package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-oidc-core/claims"
	"github.com/jrsteele09/go-oidc-core/internal/utils"
	"github.com/pkg/errors"
)

// DefaultLifetime is the bearer token expiry window.
const DefaultLifetime = time.Hour

// BearerTokenType is the token_type of every issued token.
const BearerTokenType = "Bearer"

// Token is an issued bearer token.
type Token struct {
	TokenType   string
	AccessToken string
	Expires     time.Time
}

// Introspection represents the metadata of an issued token. If Active is
// false the other fields may not be populated.
type Introspection struct {
	Active bool    `json:"active"`
	Sub    *string `json:"sub,omitempty"`
	Iss    *string `json:"iss,omitempty"`
	Aud    *string `json:"aud,omitempty"`
	Exp    *int64  `json:"exp,omitempty"`
	Iat    *int64  `json:"iat,omitempty"`
}

// Generator signs and issues bearer tokens from claim sets.
type Generator struct {
	signer   Signer
	issuer   string
	audience string
	lifetime time.Duration
	nowFunc  func() time.Time
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithLifetime overrides the default one hour token expiry window.
func WithLifetime(lifetime time.Duration) GeneratorOption {
	return func(g *Generator) {
		g.lifetime = lifetime
	}
}

// WithIssuer sets the iss claim on issued tokens.
func WithIssuer(issuer string) GeneratorOption {
	return func(g *Generator) {
		g.issuer = issuer
	}
}

// WithAudience sets the aud claim on issued tokens.
func WithAudience(audience string) GeneratorOption {
	return func(g *Generator) {
		g.audience = audience
	}
}

// WithNowFunc sets the now time function (primarily for testing).
func WithNowFunc(nowFunc func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.nowFunc = nowFunc
	}
}

// NewGenerator creates a generator signing with the given signer.
func NewGenerator(signer Signer, options ...GeneratorOption) (*Generator, error) {
	if signer == nil {
		return nil, errors.New("[NewGenerator] signer is required")
	}

	generator := &Generator{
		signer:   signer,
		lifetime: DefaultLifetime,
		nowFunc:  time.Now,
	}
	for _, opt := range options {
		opt(generator)
	}

	if generator.lifetime <= 0 {
		return nil, errors.New("[NewGenerator] lifetime must be positive")
	}
	return generator, nil
}

// Generate signs the identity's claim set into a bearer token. Claims
// repeated under the same type collapse into a JSON array value.
func (g *Generator) Generate(identity []claims.Claim) (*Token, error) {
	now := g.nowFunc()
	expires := now.Add(g.lifetime)

	mapClaims := jwt.MapClaims{
		"iat": now.Unix(),
		"exp": expires.Unix(),
		"jti": uuid.New().String(),
	}
	if g.issuer != "" {
		mapClaims["iss"] = g.issuer
	}
	if g.audience != "" {
		mapClaims["aud"] = g.audience
	}

	for _, c := range identity {
		existing, ok := mapClaims[c.Type]
		if !ok {
			mapClaims[c.Type] = c.Value
			continue
		}
		switch v := existing.(type) {
		case string:
			mapClaims[c.Type] = []string{v, c.Value}
		case []string:
			mapClaims[c.Type] = append(v, c.Value)
		}
	}

	signedToken, err := g.signer.Sign(mapClaims)
	if err != nil {
		return nil, errors.Wrap(err, "Generator.Generate Sign")
	}

	return &Token{
		TokenType:   BearerTokenType,
		AccessToken: signedToken,
		Expires:     expires,
	}, nil
}

// GenerateForClient issues a bearer token for a client-credential identity.
// The client id becomes the subject; no user claims are attached.
func (g *Generator) GenerateForClient(clientID string, scopeNames []string) (*Token, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, errors.New("[Generator.GenerateForClient] client id is required")
	}

	identity := []claims.Claim{claims.New("sub", clientID)}
	if len(scopeNames) > 0 {
		identity = append(identity, claims.New("scope", strings.Join(scopeNames, " ")))
	}
	return g.Generate(identity)
}

// Introspect parses and verifies a token issued by this generator and
// returns its metadata.
func (g *Generator) Introspect(rawToken string) (*Introspection, error) {
	if strings.TrimSpace(rawToken) == "" {
		return &Introspection{Active: false}, nil
	}

	parsed, err := jwt.Parse(rawToken, g.signer.GetVerificationKey)
	if err != nil || !parsed.Valid {
		return &Introspection{Active: false}, err
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return &Introspection{Active: false}, errors.New("error extracting claims from token")
	}

	sub, _ := mapClaims["sub"].(string)
	iss, _ := mapClaims["iss"].(string)
	aud, _ := mapClaims["aud"].(string)
	iat, _ := mapClaims["iat"].(float64)
	exp, _ := mapClaims["exp"].(float64)

	expInt := int64(exp)
	active := g.nowFunc().Unix() <= expInt

	return &Introspection{
		Active: active,
		Sub:    utils.Ptr(sub),
		Iss:    utils.Ptr(iss),
		Aud:    utils.Ptr(aud),
		Exp:    utils.Ptr(expInt),
		Iat:    utils.Ptr(int64(iat)),
	}, nil
}
