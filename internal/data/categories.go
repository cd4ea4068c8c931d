package data

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CategoriesStore performs ad-category DB operations. Categories are
// reference data: seeded at startup, rarely mutated afterwards.
type CategoriesStore struct {
	coll *mongo.Collection
}

// NewCategoriesStore returns a CategoriesStore using the provided collection.
func NewCategoriesStore(coll *mongo.Collection) *CategoriesStore {
	return &CategoriesStore{coll: coll}
}

// List returns all active categories, newest first.
func (c *CategoriesStore) List(ctx context.Context) ([]*AdCategory, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := c.coll.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var categories []*AdCategory
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetByName resolves a category name to its document. Browse filters
// arrive as names and are resolved here before querying ads.
func (c *CategoriesStore) GetByName(ctx context.Context, name string) (*AdCategory, error) {
	var category AdCategory
	err := c.coll.FindOne(ctx, bson.M{"name": name}).Decode(&category)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// Seed inserts the given category names if they do not exist yet. Existing
// categories are left untouched, so calling it on every startup is safe.
func (c *CategoriesStore) Seed(ctx context.Context, names []string) error {
	for _, name := range names {
		filter := bson.M{"name": name}
		update := bson.M{
			"$setOnInsert": bson.M{
				"name":        name,
				"description": "",
				"is_active":   true,
				"created_at":  time.Now(),
			},
		}
		opts := options.UpdateOne().SetUpsert(true)
		if _, err := c.coll.UpdateOne(ctx, filter, update, opts); err != nil {
			return err
		}
	}
	return nil
}
