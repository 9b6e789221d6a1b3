package fakeuserrepo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-blog-server/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users       map[string]*users.User
	emailIds    map[string]string // email to user id
	usernameIds map[string]string // username to user id
	lock        sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:       make(map[string]*users.User),
		emailIds:    make(map[string]string),
		usernameIds: make(map[string]string),
	}
}

func (ur *FakeUserRepo) Create(_ context.Context, user *users.User) (*users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	stored := *user
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	ur.users[stored.ID] = &stored
	ur.emailIds[stored.Email] = stored.ID
	ur.usernameIds[stored.Username] = stored.ID
	return &stored, nil
}

func (ur *FakeUserRepo) Update(_ context.Context, user *users.User) (*users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	existing, ok := ur.users[user.ID]
	if !ok {
		return nil, nil
	}
	delete(ur.emailIds, existing.Email)
	delete(ur.usernameIds, existing.Username)

	stored := *user
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now()
	ur.users[stored.ID] = &stored
	ur.emailIds[stored.Email] = stored.ID
	ur.usernameIds[stored.Username] = stored.ID
	return &stored, nil
}

func (ur *FakeUserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[email]
	if !ok {
		return nil, nil
	}
	return ur.users[id], nil
}

func (ur *FakeUserRepo) GetByUsername(_ context.Context, username string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.usernameIds[username]
	if !ok {
		return nil, nil
	}
	return ur.users[id], nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[id]
	if !ok {
		return nil, nil
	}
	return user, nil
}

// Delete removes a user, simulating an account deleted between token issuance
// and refresh.
func (ur *FakeUserRepo) Delete(id string) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return
	}
	delete(ur.emailIds, user.Email)
	delete(ur.usernameIds, user.Username)
	delete(ur.users, id)
}
