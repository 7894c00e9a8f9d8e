package sessions

import (
	"sync"

	"github.com/pkg/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]Items
}

// NewInMemoryRepo creates a new in-memory session item repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		sessions: make(map[string]Items),
	}
}

// Put stores one key/value item against the session
func (r *InMemoryRepo) Put(sessionID, key, value string) error {
	if sessionID == "" {
		return errors.New("sessionID cannot be empty")
	}
	if key == "" {
		return errors.New("key cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	items, ok := r.sessions[sessionID]
	if !ok {
		items = make(Items)
		r.sessions[sessionID] = items
	}
	items[key] = value
	return nil
}

// Items returns a copy of the session's items
func (r *InMemoryRepo) Items(sessionID string) (Items, error) {
	if sessionID == "" {
		return nil, errors.New("sessionID cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	items, ok := r.sessions[sessionID]
	if !ok {
		return nil, errors.New("session not found")
	}
	return items.Clone(), nil
}

// Delete removes the session and all its items
func (r *InMemoryRepo) Delete(sessionID string) error {
	if sessionID == "" {
		return errors.New("sessionID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}
