package auth

import (
	"context"
	"sync"
	"time"
)

// MemRepository is an in-memory UserRepository for running without a
// database.
type MemRepository struct {
	mu      sync.Mutex
	users   map[string]StoredUser
	nextID  int32
	touched []int32
}

// NewMemRepository returns an empty MemRepository.
func NewMemRepository() *MemRepository {
	return &MemRepository{users: make(map[string]StoredUser)}
}

func (r *MemRepository) Exists(_ context.Context, username, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemRepository) Create(_ context.Context, nu NewUser, hash string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	u := StoredUser{
		User:         User{ID: r.nextID, Username: nu.Username, Email: nu.Email, FullName: nu.FullName, Role: "user", CreatedAt: time.Now()},
		PasswordHash: hash,
	}
	r.users[nu.Username] = u
	return u.User, nil
}

func (r *MemRepository) ByUsername(_ context.Context, username string) (StoredUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return StoredUser{}, ErrUserNotFound
	}
	return u, nil
}

func (r *MemRepository) TouchLogin(_ context.Context, id int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touched = append(r.touched, id)
	now := time.Now().UTC()
	for name, u := range r.users {
		if u.ID == id {
			u.LastLogin = &now
			r.users[name] = u
		}
	}
	return nil
}

var _ UserRepository = (*MemRepository)(nil)
