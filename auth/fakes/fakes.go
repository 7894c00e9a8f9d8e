// Package fakes provides in-memory oracle implementations for tests and
// local wiring.
package fakes

import (
	"github.com/jrsteele09/go-oidc-core/auth"
	"github.com/jrsteele09/go-oidc-core/scopes"
)

var (
	_ auth.ClientResolver = (*FakeClientResolver)(nil)
	_ auth.DomainTrust    = (*FakeDomainTrust)(nil)
	_ auth.ScopeProvider  = (*FakeScopeProvider)(nil)
)

// FakeClientResolver resolves client ids from a fixed allow-list.
type FakeClientResolver struct {
	Known map[string]struct{}
}

// NewFakeClientResolver creates a resolver knowing the given client ids.
func NewFakeClientResolver(clientIDs ...string) *FakeClientResolver {
	known := make(map[string]struct{}, len(clientIDs))
	for _, id := range clientIDs {
		known[id] = struct{}{}
	}
	return &FakeClientResolver{Known: known}
}

func (r *FakeClientResolver) ResolveClient(clientID string) bool {
	_, ok := r.Known[clientID]
	return ok
}

// FakeDomainTrust trusts a fixed set of hosts.
type FakeDomainTrust struct {
	Trusted map[string]struct{}
}

// NewFakeDomainTrust creates a trust oracle for the given hosts.
func NewFakeDomainTrust(hosts ...string) *FakeDomainTrust {
	trusted := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		trusted[h] = struct{}{}
	}
	return &FakeDomainTrust{Trusted: trusted}
}

func (d *FakeDomainTrust) IsTrustedDomain(host string) bool {
	_, ok := d.Trusted[host]
	return ok
}

// FakeScopeProvider serves a fixed registry.
type FakeScopeProvider struct {
	Registry scopes.Registry
}

func (p *FakeScopeProvider) SupportedScopes() scopes.Registry {
	return p.Registry
}
