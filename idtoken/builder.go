// Package idtoken assembles the content of an OIDC ID token as an ordered
// claim sequence. The builder is a short-lived, single-threaded accumulator;
// it must not be shared across concurrent requests. Build is pure and may be
// called any number of times.
package idtoken

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-oidc-core/claims"
	"github.com/jrsteele09/go-oidc-core/scopes"
	"github.com/pkg/errors"
)

// Reserved ID-token claim types. The generic custom-claim path can never add
// one of these; misuse is a programming error surfaced by Build.
const (
	SubjectClaimType            = "sub"
	AuthenticationTimeClaimType = "auth_time"
	NonceClaimType              = "nonce"
	AuthContextClaimType        = "acr"
	AuthMethodsClaimType        = "amr"
	AuthorizedPartyClaimType    = "azp"
)

// ErrReservedClaimType is returned by Build when a reserved claim type was
// pushed through a custom-claim setter.
var ErrReservedClaimType = errors.New("reserved claim type")

var reservedClaimTypes = map[string]struct{}{
	SubjectClaimType:            {},
	AuthenticationTimeClaimType: {},
	NonceClaimType:              {},
	AuthContextClaimType:        {},
	AuthMethodsClaimType:        {},
	AuthorizedPartyClaimType:    {},
}

// IsReserved reports whether the claim type is reserved for the builder's
// dedicated setters.
func IsReserved(claimType string) bool {
	_, ok := reservedClaimTypes[claimType]
	return ok
}

// Builder accumulates the optional fields of an ID token. Claims are emitted
// by Build in a deterministic order: sub, auth_time, then nonce, acr, amr,
// azp and custom claims, each only if supplied.
type Builder struct {
	subject         string
	authTime        time.Time
	nonce           string
	acr             string
	amr             []string
	amrSet          bool
	azp             string
	custom          []claims.Claim
	supportedScopes scopes.Registry
	grantedScopes   []string
	err             error
}

// BuilderOption configures a Builder at construction.
type BuilderOption func(*Builder)

// WithSupportedScopes sets the scope registry consulted by
// WithCustomClaimsFilteredByScope.
func WithSupportedScopes(supported scopes.Registry) BuilderOption {
	return func(b *Builder) {
		b.supportedScopes = supported
	}
}

// WithGrantedScopes sets the scopes granted to the request. A scope's filter
// is only applied when the scope is both supported and granted.
func WithGrantedScopes(granted []string) BuilderOption {
	return func(b *Builder) {
		b.grantedScopes = granted
	}
}

// NewBuilder creates a builder for the given subject and authentication
// time. The subject must be non-blank and the authentication time must be in
// the past.
func NewBuilder(subject string, authTime time.Time, options ...BuilderOption) (*Builder, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, errors.New("[NewBuilder] subject is required")
	}
	if authTime.IsZero() || authTime.After(time.Now()) {
		return nil, errors.New("[NewBuilder] authentication time must be in the past")
	}

	builder := &Builder{
		subject:  subject,
		authTime: authTime,
	}
	for _, opt := range options {
		opt(builder)
	}
	return builder, nil
}

// WithNonce sets the nonce claim.
func (b *Builder) WithNonce(nonce string) *Builder {
	b.nonce = nonce
	return b
}

// WithAuthenticationContextClassReference sets the acr claim.
func (b *Builder) WithAuthenticationContextClassReference(acr string) *Builder {
	b.acr = acr
	return b
}

// WithAuthenticationMethodsReferences sets the amr claim values, dropping
// blank entries. If nothing non-blank remains, Build emits no amr claim.
func (b *Builder) WithAuthenticationMethodsReferences(methods []string) *Builder {
	filtered := make([]string, 0, len(methods))
	for _, m := range methods {
		if strings.TrimSpace(m) == "" {
			continue
		}
		filtered = append(filtered, m)
	}
	b.amr = filtered
	b.amrSet = true
	return b
}

// WithAuthorizedParty sets the azp claim.
func (b *Builder) WithAuthorizedParty(azp string) *Builder {
	b.azp = azp
	return b
}

// WithCustomClaim appends a custom claim. Reserved claim types are rejected;
// a blank value is accepted and still appended.
func (b *Builder) WithCustomClaim(claimType, value string) *Builder {
	if b.rejectReserved(claimType) {
		return b
	}
	b.custom = append(b.custom, claims.New(claimType, value))
	return b
}

// WithCustomClaimsFilteredByClaimType appends the candidate claims matching
// the given type. Reserved claim types are rejected.
func (b *Builder) WithCustomClaimsFilteredByClaimType(claimType string, candidates []claims.Claim) *Builder {
	if b.rejectReserved(claimType) {
		return b
	}
	b.custom = append(b.custom, claims.OfType(claimType, candidates)...)
	return b
}

// WithCustomClaimsFilteredByScope applies the scope's filter to the
// candidates and appends the result, but only when the scope is both in the
// builder's supported-scope registry and in its granted-scope list.
// Otherwise the call is a no-op. Reserved claim types in the filtered result
// are skipped; they only enter through the dedicated setters.
func (b *Builder) WithCustomClaimsFilteredByScope(scope scopes.Scope, candidates []claims.Claim) *Builder {
	if scope == nil {
		return b
	}
	if _, supported := b.supportedScopes[scope.Name()]; !supported {
		return b
	}
	if !b.scopeGranted(scope.Name()) {
		return b
	}
	for _, c := range scope.Filter(candidates) {
		if IsReserved(c.Type) {
			continue
		}
		b.custom = append(b.custom, c)
	}
	return b
}

// Build assembles the claim sequence. It is side-effect-free: repeated calls
// return equal results. A reserved-type violation recorded by a custom-claim
// setter is returned here, naming the offending type.
func (b *Builder) Build() ([]claims.Claim, error) {
	if b.err != nil {
		return nil, b.err
	}

	content := []claims.Claim{
		claims.New(SubjectClaimType, b.subject),
		claims.New(AuthenticationTimeClaimType, strconv.FormatInt(b.authTime.UTC().Unix(), 10)),
	}

	if b.nonce != "" {
		content = append(content, claims.New(NonceClaimType, b.nonce))
	}
	if b.acr != "" {
		content = append(content, claims.New(AuthContextClaimType, b.acr))
	}
	if b.amrSet && len(b.amr) > 0 {
		encoded, err := json.Marshal(b.amr)
		if err != nil {
			return nil, errors.Wrap(err, "Builder.Build marshal amr")
		}
		content = append(content, claims.New(AuthMethodsClaimType, string(encoded)))
	}
	if b.azp != "" {
		content = append(content, claims.New(AuthorizedPartyClaimType, b.azp))
	}

	content = append(content, b.custom...)
	return content, nil
}

func (b *Builder) rejectReserved(claimType string) bool {
	if !IsReserved(claimType) {
		return false
	}
	if b.err == nil {
		b.err = errors.Wrapf(ErrReservedClaimType, "%q", claimType)
	}
	return true
}

func (b *Builder) scopeGranted(name string) bool {
	for _, granted := range b.grantedScopes {
		if granted == name {
			return true
		}
	}
	return false
}
