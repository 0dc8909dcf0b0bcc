package groups

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoRepository persists groups in the "groups" collection.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository wires a repository over the given database.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection("groups")}
}

// FindByID returns the group with the given id.
func (r *MongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (Group, error) {
	var group Group
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&group)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Group{}, ErrNotFound
	}
	if err != nil {
		return Group{}, fmt.Errorf("find group %s: %w", id.Hex(), err)
	}
	return group, nil
}

// FindByInvitedEmail scans for groups that invited the given address.
func (r *MongoRepository) FindByInvitedEmail(ctx context.Context, email string) ([]Group, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"data.emails": email})
	if err != nil {
		return nil, fmt.Errorf("find groups by invited email: %w", err)
	}
	defer cursor.Close(ctx)

	var found []Group
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("decode groups by invited email: %w", err)
	}
	return found, nil
}

// Insert stores a new group under a freshly generated id.
func (r *MongoRepository) Insert(ctx context.Context, group Group) (Group, error) {
	group.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, group); err != nil {
		return Group{}, fmt.Errorf("insert group: %w", err)
	}
	return group, nil
}

// Delete removes a group by id.
func (r *MongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete group %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
