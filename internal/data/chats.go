package data

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ChatsStore provides chat-message database operations. Messages are
// append-only; the only mutation is setting the seen timestamp.
type ChatsStore struct {
	// coll is the "chats" collection, set via NewChatsStore
	coll *mongo.Collection
}

// NewChatsStore returns a ChatsStore using the given collection.
func NewChatsStore(coll *mongo.Collection) *ChatsStore {
	return &ChatsStore{coll: coll}
}

// Save inserts a message document and returns the saved record.
func (c *ChatsStore) Save(ctx context.Context, adID, from, to bson.ObjectID, text string) (*ChatMessage, error) {
	msg := &ChatMessage{
		AdID:      adID,
		From:      from,
		To:        to,
		Message:   text,
		CreatedAt: time.Now(),
	}

	result, err := c.coll.InsertOne(ctx, msg)
	if err != nil {
		return nil, err
	}

	// Extract MongoDB's auto-generated _id and populate in the struct; the
	// id doubles as the deterministic tie-break for inbox ordering.
	msg.ID = result.InsertedID.(bson.ObjectID)
	return msg, nil
}

// Thread returns the full conversation between two users about one ad,
// oldest message first (both directions).
func (c *ChatsStore) Thread(ctx context.Context, adID, user1, user2 bson.ObjectID) ([]*ChatMessage, error) {
	filter := bson.M{
		"ad_id": adID,
		"$or": bson.A{
			bson.M{"from": user1, "to": user2},
			bson.M{"from": user2, "to": user1},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := c.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// ListByAdIDs returns every message referencing any of the given ads. The
// selling-inbox aggregation feeds it the viewer's own ad ids.
func (c *ChatsStore) ListByAdIDs(ctx context.Context, adIDs []bson.ObjectID) ([]*ChatMessage, error) {
	if len(adIDs) == 0 {
		return nil, nil
	}

	cursor, err := c.coll.Find(ctx, bson.M{"ad_id": bson.M{"$in": adIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// ListInvolving returns every message the user sent or received. The
// buying-inbox aggregation filters these down to ads owned by others.
func (c *ChatsStore) ListInvolving(ctx context.Context, user bson.ObjectID) ([]*ChatMessage, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"from": user},
			bson.M{"to": user},
		},
	}

	cursor, err := c.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkThreadSeen stamps the current time onto every unread message from
// sender to reader about the given ad and returns how many were updated.
// Messages that already carry a seen timestamp are untouched, which makes
// the operation idempotent: a second call updates zero rows.
func (c *ChatsStore) MarkThreadSeen(ctx context.Context, adID, reader, sender bson.ObjectID) (int64, error) {
	filter := bson.M{
		"ad_id": adID,
		"from":  sender,
		"to":    reader,
		"seen":  nil,
	}
	update := bson.M{"$set": bson.M{"seen": time.Now()}}

	result, err := c.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// CountUnread returns the number of stored messages addressed to the user
// that carry no seen timestamp.
func (c *ChatsStore) CountUnread(ctx context.Context, user bson.ObjectID) (int64, error) {
	return c.coll.CountDocuments(ctx, bson.M{"to": user, "seen": nil})
}
