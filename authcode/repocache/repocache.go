// Package repocache is an in-memory authcode.Repo backed by a TTL cache.
// Entries evict themselves at code expiry; redemption is an atomic
// get-and-delete.
package repocache

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-oidc-core/authcode"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
)

// ErrCodeNotFound is returned when a code is unknown, expired or already
// redeemed.
var ErrCodeNotFound = errors.New("authorization code not found")

var _ authcode.Repo = (*Repo)(nil)

// Repo is a thread-safe in-memory code record store.
type Repo struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

// New creates a store. The cache's default TTL is only a fallback; each
// record is stored with its own expiry.
func New() *Repo {
	return &Repo{
		cache: gocache.New(authcode.DefaultLifetime, time.Minute),
	}
}

// Store persists the record until its expiry timestamp.
func (r *Repo) Store(record authcode.Record) error {
	if record.Code == "" {
		return errors.New("[Repo.Store] code cannot be empty")
	}

	ttl := time.Until(record.Expires)
	if ttl <= 0 {
		return errors.New("[Repo.Store] record already expired")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Set(record.Code, record, ttl)
	return nil
}

// Redeem retrieves and deletes the record in one atomic step.
func (r *Repo) Redeem(code string) (*authcode.Record, error) {
	if code == "" {
		return nil, errors.New("[Repo.Redeem] code cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.cache.Get(code)
	if !ok {
		return nil, ErrCodeNotFound
	}
	r.cache.Delete(code)

	record, ok := v.(authcode.Record)
	if !ok {
		return nil, errors.New("[Repo.Redeem] unexpected record type")
	}
	return &record, nil
}
