// Package db manages the MongoDB connection and collections.
package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Client wraps mongo.Client and exposes the collections the stores use.
type Client struct {
	// client is the underlying MongoDB connection (thread-safe, shared by all stores)
	client *mongo.Client

	// db is the application database; collections are accessed through it
	db *mongo.Database
}

// New connects to MongoDB, verifies the connection with a ping and returns a Client.
func New(ctx context.Context, mongoURI, dbName string) (*Client, error) {
	// Fail fast if MongoDB is unreachable rather than hanging on first query
	opts := options.Client().
		ApplyURI(mongoURI).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// The connect call is lazy; ping the primary to prove the deployment is live
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Client{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

// UsersCollection returns the users collection.
func (c *Client) UsersCollection() *mongo.Collection {
	return c.db.Collection("users")
}

// CategoriesCollection returns the ad_categories reference collection.
func (c *Client) CategoriesCollection() *mongo.Collection {
	return c.db.Collection("ad_categories")
}

// AdsCollection returns the ads collection.
func (c *Client) AdsCollection() *mongo.Collection {
	return c.db.Collection("ads")
}

// ChatsCollection returns the chats collection.
func (c *Client) ChatsCollection() *mongo.Collection {
	return c.db.Collection("chats")
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// CreateIndexes creates the indexes the stores rely on. Safe to call on
// every startup; MongoDB treats an existing identical index as a no-op.
func (c *Client) CreateIndexes(ctx context.Context) error {
	// Users: google_id identifies externally-authenticated accounts, email
	// guards against duplicate registrations. google_id is sparse because
	// email/password accounts never set it.
	userIndexes := []mongo.IndexModel{
		{
			Keys:    map[string]int{"google_id": 1},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    map[string]int{"email": 1},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := c.UsersCollection().Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create users indexes: %w", err)
	}

	// Categories are looked up by name when resolving browse filters.
	categoryIndex := mongo.IndexModel{
		Keys:    map[string]int{"name": 1},
		Options: options.Index().SetUnique(true),
	}
	if _, err := c.CategoriesCollection().Indexes().CreateOne(ctx, categoryIndex); err != nil {
		return fmt.Errorf("failed to create categories index: %w", err)
	}

	// Ads: seller listing is sorted by posted time; the compound index
	// backs the default browse query (active, unsold, newest first).
	adIndexes := []mongo.IndexModel{
		{
			Keys: map[string]int{"seller": 1, "posted": -1},
		},
		{
			Keys: map[string]int{"is_active": 1, "is_sold": 1, "posted": -1},
		},
		{
			Keys: map[string]int{"category": 1, "sub_category": 1},
		},
	}
	if _, err := c.AdsCollection().Indexes().CreateMany(ctx, adIndexes); err != nil {
		return fmt.Errorf("failed to create ads indexes: %w", err)
	}

	// Chats: ad_id+created_at serves thread and inbox queries; to+seen
	// backs unread counting and mark-as-seen updates.
	chatIndexes := []mongo.IndexModel{
		{
			Keys: map[string]int{"ad_id": 1, "created_at": -1},
		},
		{
			Keys: map[string]int{"to": 1, "seen": 1},
		},
		{
			Keys: map[string]int{"from": 1, "to": 1, "ad_id": 1},
		},
	}
	if _, err := c.ChatsCollection().Indexes().CreateMany(ctx, chatIndexes); err != nil {
		return fmt.Errorf("failed to create chats indexes: %w", err)
	}

	return nil
}
