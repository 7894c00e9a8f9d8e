// Package scopes holds the static catalog of supported scopes. Each scope
// owns the set of claim types it grants visibility into, together with a
// filter over candidate claims. The registry is built once at startup and is
// read-only thereafter.
package scopes

import (
	"github.com/jrsteele09/go-oidc-core/claims"
	"github.com/pkg/errors"
)

// Standard OIDC scope names.
const (
	OpenID        = "openid"
	Profile       = "profile"
	Email         = "email"
	Address       = "address"
	Phone         = "phone"
	Roles         = "roles"
	OfflineAccess = "offline_access"
)

// Scope is a named bundle granting visibility into a subset of claim types.
type Scope interface {
	Name() string
	Description() string
	RelatedClaimTypes() []string

	// Filter returns only the claims whose type is in the scope's
	// related-claim set.
	Filter(candidates []claims.Claim) []claims.Claim
}

type scope struct {
	name        string
	description string
	order       []string
	related     map[string]struct{}
}

// New creates an immutable scope owning the given related claim types.
func New(name, description string, relatedClaimTypes ...string) Scope {
	s := &scope{
		name:        name,
		description: description,
		related:     make(map[string]struct{}, len(relatedClaimTypes)),
	}
	for _, t := range relatedClaimTypes {
		if _, exists := s.related[t]; exists {
			continue
		}
		s.related[t] = struct{}{}
		s.order = append(s.order, t)
	}
	return s
}

func (s *scope) Name() string        { return s.name }
func (s *scope) Description() string { return s.description }

func (s *scope) RelatedClaimTypes() []string {
	types := make([]string, len(s.order))
	copy(types, s.order)
	return types
}

func (s *scope) Filter(candidates []claims.Claim) []claims.Claim {
	var matched []claims.Claim
	for _, c := range candidates {
		if _, ok := s.related[c.Type]; ok {
			matched = append(matched, c)
		}
	}
	return matched
}

// Registry maps scope names to scopes. Built once at startup, safe for
// unlimited concurrent readers.
type Registry map[string]Scope

// NewRegistry builds a registry from the given scopes. Scope names are
// case-sensitive and must be unique.
func NewRegistry(supported ...Scope) (Registry, error) {
	registry := make(Registry, len(supported))
	for _, s := range supported {
		if _, exists := registry[s.Name()]; exists {
			return nil, errors.Errorf("duplicate scope %q", s.Name())
		}
		registry[s.Name()] = s
	}
	return registry, nil
}

// SupportedScopes returns the registry itself, letting a Registry serve
// directly as a supported-scopes oracle.
func (r Registry) SupportedScopes() Registry {
	return r
}

// Names returns all registered scope names.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	return names
}

// DefaultRegistry returns the standard OIDC scope catalog.
func DefaultRegistry() Registry {
	registry, _ := NewRegistry(
		New(OpenID, "Subject identifier", "sub"),
		New(Profile, "Basic profile information",
			"name", "family_name", "given_name", "middle_name", "nickname",
			"preferred_username", "profile", "picture", "website", "gender",
			"birthdate", "zoneinfo", "locale", "updated_at"),
		New(Email, "Email address", "email", "email_verified"),
		New(Address, "Postal address", "address"),
		New(Phone, "Phone number", "phone_number", "phone_number_verified"),
		New(Roles, "Assigned roles", "role"),
		New(OfflineAccess, "Refresh token issuance"),
	)
	return registry
}
