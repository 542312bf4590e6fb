// Package repotest provides an in-memory UserRepository for tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/repository"
)

// Users mimics the Postgres repository, including the case-insensitive unique email index.
type Users struct {
	mu   sync.Mutex
	byID map[string]domain.User

	// Err, when set, is returned by every call.
	Err error
	// SkipLookup makes GetByEmail miss so Create's uniqueness check is exercised.
	SkipLookup bool
}

var _ repository.UserRepository = (*Users)(nil)

// NewUsers returns an empty store.
func NewUsers() *Users {
	return &Users{byID: map[string]domain.User{}}
}

func (u *Users) Create(_ context.Context, user *domain.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return u.Err
	}
	if u.emailTaken(user.Email, "") {
		return repository.ErrDuplicateEmail
	}
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt, user.UpdatedAt = now, now
	u.byID[user.ID] = *user
	return nil
}

func (u *Users) Update(_ context.Context, user *domain.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return u.Err
	}
	if _, ok := u.byID[user.ID]; !ok {
		return repository.ErrNotFound
	}
	if u.emailTaken(user.Email, user.ID) {
		return repository.ErrDuplicateEmail
	}
	user.UpdatedAt = time.Now().UTC()
	u.byID[user.ID] = *user
	return nil
}

func (u *Users) GetByID(_ context.Context, id string) (*domain.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, u.Err
	}
	user, ok := u.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (u *Users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, u.Err
	}
	if u.SkipLookup {
		return nil, repository.ErrNotFound
	}
	for _, user := range u.byID {
		if strings.EqualFold(user.Email, email) {
			found := user
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (u *Users) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, u.Err
	}
	all := make([]domain.User, 0, len(u.byID))
	for _, user := range u.byID {
		all = append(all, user)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (u *Users) Delete(_ context.Context, id string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return u.Err
	}
	if _, ok := u.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(u.byID, id)
	return nil
}

// Stored returns the persisted copy of a user, bypassing Err.
func (u *Users) Stored(id string) (domain.User, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.byID[id]
	return user, ok
}

func (u *Users) emailTaken(email, exceptID string) bool {
	for id, existing := range u.byID {
		if id != exceptID && strings.EqualFold(existing.Email, email) {
			return true
		}
	}
	return false
}
