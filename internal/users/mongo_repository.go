package users

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoRepository persists users in the "users" collection, keyed by the
// provider-derived id as _id.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository wires a repository over the given database.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection("users")}
}

// FindByID returns the user with the given id.
func (r *MongoRepository) FindByID(ctx context.Context, id string) (User, error) {
	var user User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("find user %q: %w", id, err)
	}
	return user, nil
}

// Insert stores a new user document. The _id unique constraint turns a
// concurrent first-login into ErrDuplicateID rather than a second record.
func (r *MongoRepository) Insert(ctx context.Context, user User) error {
	_, err := r.coll.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateID
	}
	if err != nil {
		return fmt.Errorf("insert user %q: %w", user.ID, err)
	}
	return nil
}

// AddGroup appends a group id to data.groups without duplicating it.
func (r *MongoRepository) AddGroup(ctx context.Context, userID, groupID string) error {
	res, err := r.coll.UpdateByID(ctx, userID, bson.M{"$addToSet": bson.M{"data.groups": groupID}})
	if err != nil {
		return fmt.Errorf("add group to user %q: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveGroup deletes a group id from data.groups.
func (r *MongoRepository) RemoveGroup(ctx context.Context, userID, groupID string) error {
	res, err := r.coll.UpdateByID(ctx, userID, bson.M{"$pull": bson.M{"data.groups": groupID}})
	if err != nil {
		return fmt.Errorf("remove group from user %q: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
