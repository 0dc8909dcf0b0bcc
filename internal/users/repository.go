package users

import "context"

// Repository defines persistence for user records.
type Repository interface {
	// FindByID returns the user with the given id, or ErrNotFound.
	FindByID(ctx context.Context, id string) (User, error)

	// Insert stores a new user record. A record with the same id must be
	// rejected with ErrDuplicateID, relying on the store's unique key.
	Insert(ctx context.Context, user User) error

	// AddGroup appends a group id to data.groups if not already present.
	AddGroup(ctx context.Context, userID, groupID string) error

	// RemoveGroup deletes a group id from data.groups.
	RemoveGroup(ctx context.Context, userID, groupID string) error
}
