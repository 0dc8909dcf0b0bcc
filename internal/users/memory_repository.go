package users

import (
	"context"
	"slices"
	"sync"
)

// InMemoryRepository stores users in an in-process map, ideal for local
// development or tests.
type InMemoryRepository struct {
	mu   sync.RWMutex
	data map[string]User
}

// NewInMemoryRepository constructs a repository seeded with optional users.
func NewInMemoryRepository(initial []User) *InMemoryRepository {
	data := make(map[string]User, len(initial))
	for _, user := range initial {
		data[user.ID] = user
	}
	return &InMemoryRepository{data: data}
}

// FindByID returns a user by id.
func (r *InMemoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.data[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

// Insert stores a new user, rejecting duplicate ids like the real store.
func (r *InMemoryRepository) Insert(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[user.ID]; ok {
		return ErrDuplicateID
	}
	r.data[user.ID] = user
	return nil
}

// AddGroup appends a group id to the user's group list if absent.
func (r *InMemoryRepository) AddGroup(_ context.Context, userID, groupID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.data[userID]
	if !ok {
		return ErrNotFound
	}
	if !slices.Contains(user.Data.Groups, groupID) {
		user.Data.Groups = append(user.Data.Groups, groupID)
		r.data[userID] = user
	}
	return nil
}

// RemoveGroup deletes a group id from the user's group list.
func (r *InMemoryRepository) RemoveGroup(_ context.Context, userID, groupID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.data[userID]
	if !ok {
		return ErrNotFound
	}
	user.Data.Groups = slices.DeleteFunc(slices.Clone(user.Data.Groups), func(id string) bool {
		return id == groupID
	})
	r.data[userID] = user
	return nil
}
