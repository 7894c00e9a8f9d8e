package repofake

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-oidc-core/identity"
	"github.com/pkg/errors"
)

var _ identity.Repo = (*FakeIdentityRepo)(nil)

// FakeIdentityRepo is a thread-safe in-memory identity.Repo for tests and
// local wiring.
type FakeIdentityRepo struct {
	users    map[string]*identity.User
	emailIds map[string]string // email to user id
	lock     sync.RWMutex
}

func NewFakeIdentityRepo() *FakeIdentityRepo {
	return &FakeIdentityRepo{
		users:    make(map[string]*identity.User),
		emailIds: make(map[string]string),
	}
}

func (r *FakeIdentityRepo) Upsert(user *identity.User) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	r.users[user.ID] = user
	r.emailIds[user.Email] = user.ID
	return nil
}

func (r *FakeIdentityRepo) GetByID(id string) (*identity.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *user
	return &copied, nil
}

func (r *FakeIdentityRepo) GetByEmail(email string) (*identity.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	id, ok := r.emailIds[email]
	if !ok {
		return nil, errors.New("not found")
	}
	user, ok := r.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *user
	return &copied, nil
}

func (r *FakeIdentityRepo) Delete(email string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	id, ok := r.emailIds[email]
	if !ok {
		return errors.New("not found")
	}
	delete(r.emailIds, email)
	delete(r.users, id)
	return nil
}
