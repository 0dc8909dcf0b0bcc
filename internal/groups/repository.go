package groups

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository defines persistence for group documents.
type Repository interface {
	// FindByID returns the group with the given id, or ErrNotFound.
	FindByID(ctx context.Context, id primitive.ObjectID) (Group, error)

	// FindByInvitedEmail returns every group whose data.emails contains
	// the given address, in stored order.
	FindByInvitedEmail(ctx context.Context, email string) ([]Group, error)

	// Insert stores a new group and returns it with its generated id.
	Insert(ctx context.Context, group Group) (Group, error)

	// Delete removes a group by id, returning ErrNotFound if absent.
	Delete(ctx context.Context, id primitive.ObjectID) error
}
