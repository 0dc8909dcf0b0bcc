package groups

import (
	"context"
	"slices"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InMemoryRepository stores groups in an in-process map, ideal for local
// development or tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	data  map[primitive.ObjectID]Group
	order []primitive.ObjectID
}

// NewInMemoryRepository constructs a repository seeded with optional groups.
func NewInMemoryRepository(initial []Group) *InMemoryRepository {
	data := make(map[primitive.ObjectID]Group, len(initial))
	order := make([]primitive.ObjectID, 0, len(initial))
	for _, group := range initial {
		data[group.ID] = group
		order = append(order, group.ID)
	}
	return &InMemoryRepository{data: data, order: order}
}

// FindByID returns a group by id.
func (r *InMemoryRepository) FindByID(_ context.Context, id primitive.ObjectID) (Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group, ok := r.data[id]
	if !ok {
		return Group{}, ErrNotFound
	}
	return group, nil
}

// FindByInvitedEmail returns groups whose pending invites include email.
func (r *InMemoryRepository) FindByInvitedEmail(_ context.Context, email string) ([]Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found []Group
	for _, id := range r.order {
		group, ok := r.data[id]
		if ok && slices.Contains(group.Data.Emails, email) {
			found = append(found, group)
		}
	}
	return found, nil
}

// Insert stores a new group under a freshly generated id.
func (r *InMemoryRepository) Insert(_ context.Context, group Group) (Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	group.ID = primitive.NewObjectID()
	r.data[group.ID] = group
	r.order = append(r.order, group.ID)
	return group, nil
}

// Delete removes a group by id.
func (r *InMemoryRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	r.order = slices.DeleteFunc(r.order, func(existing primitive.ObjectID) bool {
		return existing == id
	})
	return nil
}
