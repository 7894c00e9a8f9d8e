// Package authcode issues opaque, time-boxed authorization codes and converts
// them (together with their associated claim set) to and from a persistable
// record. Uniqueness and single-use enforcement belong to the persistence
// layer, not this package; expiry is a data attribute checked by comparison.
package authcode

import (
	"crypto/sha256"
	"encoding/base64"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DefaultLifetime is the authorization-code expiry window.
const DefaultLifetime = 10 * time.Minute

// KeyGenerator derives an opaque, collision-resistant, non-reversible key
// from the given seed parts.
type KeyGenerator interface {
	GenerateOpaqueKey(seedParts ...string) (string, error)
}

// Code is an immutable authorization code. Codes are single-use by
// convention, enforced by the persistence layer at redemption time.
type Code struct {
	Value   string
	Expires time.Time
}

// Issuer generates authorization codes.
type Issuer struct {
	keys     KeyGenerator
	lifetime time.Duration
	nowFunc  func() time.Time
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithLifetime overrides the default 10 minute code expiry window.
func WithLifetime(lifetime time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.lifetime = lifetime
	}
}

// WithNowFunc sets the now time function (primarily for testing).
func WithNowFunc(nowFunc func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowFunc = nowFunc
	}
}

// NewIssuer creates an issuer deriving code values through the given key
// generator.
func NewIssuer(keys KeyGenerator, options ...IssuerOption) (*Issuer, error) {
	if keys == nil {
		return nil, errors.New("[NewIssuer] key generator is required")
	}

	issuer := &Issuer{
		keys:     keys,
		lifetime: DefaultLifetime,
		nowFunc:  time.Now,
	}
	for _, opt := range options {
		opt(issuer)
	}

	if issuer.lifetime <= 0 {
		return nil, errors.New("[NewIssuer] lifetime must be positive")
	}
	return issuer, nil
}

// Generate creates a fresh authorization code. The value is derived from a
// random 128-bit identifier concatenated with the expiry timestamp, passed
// through the key generator.
func (i *Issuer) Generate() (Code, error) {
	expires := i.nowFunc().Add(i.lifetime).UTC()
	value, err := i.keys.GenerateOpaqueKey(uuid.NewString(), expires.Format(time.RFC3339))
	if err != nil {
		return Code{}, errors.Wrap(err, "Issuer.Generate GenerateOpaqueKey")
	}
	return Code{Value: value, Expires: expires}, nil
}

// SHA256KeyGenerator is the default key generator: the SHA-256 digest of the
// concatenated seed parts, base64url-encoded.
type SHA256KeyGenerator struct{}

var _ KeyGenerator = SHA256KeyGenerator{}

func (SHA256KeyGenerator) GenerateOpaqueKey(seedParts ...string) (string, error) {
	digest := sha256.New()
	for _, part := range seedParts {
		digest.Write([]byte(part))
	}
	return base64.RawURLEncoding.EncodeToString(digest.Sum(nil)), nil
}
