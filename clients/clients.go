// Package clients is the registry backing the authorization validator's
// client and redirect-trust oracles.
package clients

import (
	"sync"

	"github.com/pkg/errors"
)

// Client is a registered OAuth2 client.
type Client struct {
	ID             string   `json:"id"`
	Secret         string   `json:"secret"`
	Description    string   `json:"description"`
	TrustedDomains []string `json:"trustedDomains"` // Redirect hosts allowed for this client
}

// Registry holds registered clients and the union of their trusted redirect
// domains. Registration happens at startup; lookups are safe for concurrent
// readers.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	domains map[string]struct{}
}

// NewRegistry creates a registry of the given clients.
func NewRegistry(registered ...*Client) (*Registry, error) {
	registry := &Registry{
		clients: make(map[string]*Client, len(registered)),
		domains: make(map[string]struct{}),
	}
	for _, client := range registered {
		if err := registry.Register(client); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Register adds a client and its trusted domains.
func (r *Registry) Register(client *Client) error {
	if client == nil || client.ID == "" {
		return errors.New("[Registry.Register] client id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clients[client.ID]; exists {
		return errors.Errorf("[Registry.Register] duplicate client %q", client.ID)
	}
	r.clients[client.ID] = client
	for _, domain := range client.TrustedDomains {
		r.domains[domain] = struct{}{}
	}
	return nil
}

// Get returns a registered client.
func (r *Registry) Get(clientID string) (*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[clientID]
	if !ok {
		return nil, errors.Errorf("client %q not found", clientID)
	}
	return client, nil
}

// ResolveClient reports whether the client id is registered. Implements
// auth.ClientResolver.
func (r *Registry) ResolveClient(clientID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.clients[clientID]
	return ok
}

// IsTrustedDomain reports whether the host is trusted by any registered
// client. Implements auth.DomainTrust.
func (r *Registry) IsTrustedDomain(host string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.domains[host]
	return ok
}
