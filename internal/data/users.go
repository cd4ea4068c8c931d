// Package data provides DB models and stores.
package data

import (
	"context"
	"fmt"
	"time"

	"github.com/Gokulm100/e4u-Backend/internal/normalize"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// UsersStore performs user DB operations.
type UsersStore struct {
	// coll is the "users" collection, set via NewUsersStore
	coll *mongo.Collection
}

// NewUsersStore returns a UsersStore using the provided collection.
func NewUsersStore(coll *mongo.Collection) *UsersStore {
	return &UsersStore{coll: coll}
}

// CreateUser inserts a new email/password user. The password must already
// be hashed by the caller (auth.HashPassword).
func (u *UsersStore) CreateUser(ctx context.Context, name, email, hashedPassword string) (*User, error) {
	user := &User{
		Name:      name,
		Email:     normalize.Email(email),
		Password:  hashedPassword,
		CreatedAt: time.Now(),
	}

	result, err := u.coll.InsertOne(ctx, user)
	if err != nil {
		// Unique index on email turns a duplicate registration into a client error
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	user.ID = result.InsertedID.(bson.ObjectID)
	return user, nil
}

// UpsertGoogleUser finds the account for a verified Google identity,
// creating it on first login. Existing accounts get their last-login
// timestamp refreshed; name and avatar follow whatever Google reports.
func (u *UsersStore) UpsertGoogleUser(ctx context.Context, googleID, name, email, picture string) (*User, error) {
	now := time.Now()
	filter := bson.M{"google_id": googleID}
	update := bson.M{
		"$set": bson.M{
			"name":        name,
			"email":       normalize.Email(email),
			"profile_pic": picture,
			"last_login":  now,
		},
		"$setOnInsert": bson.M{
			"google_id":  googleID,
			"created_at": now,
		},
	}

	// Return the post-update document so first login and repeat login look the same
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var user User
	if err := u.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to upsert google user: %w", err)
	}
	return &user, nil
}

// GetUserByID finds a user by ObjectID.
func (u *UsersStore) GetUserByID(ctx context.Context, id bson.ObjectID) (*User, error) {
	var user User
	err := u.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail finds a user by normalized email.
func (u *UsersStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := u.coll.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetManyByIDs loads the given users in one query, keyed by id. Missing ids
// are simply absent from the map; callers fall back to placeholder display
// data for them.
func (u *UsersStore) GetManyByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]*User, error) {
	users := make(map[bson.ObjectID]*User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	cursor, err := u.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []*User
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, doc := range docs {
		users[doc.ID] = doc
	}
	return users, nil
}

// SetFCMToken registers (or replaces) the user's push-notification device token.
func (u *UsersStore) SetFCMToken(ctx context.Context, id bson.ObjectID, token string) error {
	result, err := u.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"fcm_token": token}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
