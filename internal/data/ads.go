package data

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// AdsStore performs ad DB operations, including the lifecycle transitions
// (active/disabled/sold) and the interested-users lead tracking.
type AdsStore struct {
	coll *mongo.Collection
}

// NewAdsStore returns an AdsStore using the provided collection.
func NewAdsStore(coll *mongo.Collection) *AdsStore {
	return &AdsStore{coll: coll}
}

// AdInput carries the caller-editable ad fields. Seller, lifecycle flags
// and counters are managed by the store, never by the request body.
type AdInput struct {
	Title       string
	Price       float64
	Location    string
	Category    bson.ObjectID
	SubCategory string
	Images      []string
	Description string
}

// Create inserts a new ad owned by seller. New ads start active and unsold.
func (a *AdsStore) Create(ctx context.Context, seller bson.ObjectID, in AdInput) (*Ad, error) {
	ad := &Ad{
		Title:       in.Title,
		Price:       in.Price,
		Location:    in.Location,
		Category:    in.Category,
		SubCategory: in.SubCategory,
		Images:      in.Images,
		Description: in.Description,
		Seller:      seller,
		Posted:      time.Now(),
		IsActive:    true,
	}

	result, err := a.coll.InsertOne(ctx, ad)
	if err != nil {
		return nil, err
	}
	ad.ID = result.InsertedID.(bson.ObjectID)
	return ad, nil
}

// Update edits an ad's caller-editable fields. The seller reference is
// immutable: the filter requires ownership, so editing someone else's ad
// reports ErrNotOwner rather than silently matching nothing. Passing an
// empty image list keeps the existing images.
func (a *AdsStore) Update(ctx context.Context, adID, seller bson.ObjectID, in AdInput) (*Ad, error) {
	set := bson.M{
		"title":        in.Title,
		"price":        in.Price,
		"location":     in.Location,
		"category":     in.Category,
		"sub_category": in.SubCategory,
		"description":  in.Description,
	}
	if len(in.Images) > 0 {
		set["images"] = in.Images
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var ad Ad
	err := a.coll.FindOneAndUpdate(ctx, bson.M{"_id": adID, "seller": seller}, bson.M{"$set": set}, opts).Decode(&ad)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, a.notFoundOrNotOwner(ctx, adID)
		}
		return nil, err
	}
	return &ad, nil
}

// GetByID finds an ad by ObjectID. Sold and disabled ads remain fetchable.
func (a *AdsStore) GetByID(ctx context.Context, id bson.ObjectID) (*Ad, error) {
	var ad Ad
	err := a.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&ad)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ad, nil
}

// ListBrowsable returns one page of the default browse listing: active,
// unsold ads matching the filter, excluding the viewer's own. Sort is
// posted time descending with _id descending as the stable secondary key
// so pages never drift when timestamps collide.
func (a *AdsStore) ListBrowsable(ctx context.Context, filter AdFilter, page, pageSize int) (*AdPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	query := bson.M{
		"is_active": true,
		"is_sold":   false,
	}
	if filter.TitleQuery != "" {
		// Case-insensitive substring match; quote the input so user text
		// is never interpreted as a regex pattern
		query["title"] = bson.M{"$regex": regexp.QuoteMeta(filter.TitleQuery), "$options": "i"}
	}
	if !filter.Category.IsZero() {
		query["category"] = filter.Category
	}
	if filter.SubCategory != "" {
		query["sub_category"] = filter.SubCategory
	}
	if filter.MaxPrice != nil {
		query["price"] = bson.M{"$lte": *filter.MaxPrice}
	}
	if !filter.ExcludeUser.IsZero() {
		query["seller"] = bson.M{"$ne": filter.ExcludeUser}
	}

	total, err := a.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "posted", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(page-1) * int64(pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := a.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ads []*Ad
	if err := cursor.All(ctx, &ads); err != nil {
		return nil, err
	}

	// ceil(total / pageSize) without floating point
	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)

	return &AdPage{Ads: ads, Total: total, Page: page, TotalPages: totalPages}, nil
}

// ListBySeller returns one page of a seller's own ads, newest first. No
// lifecycle filter: sold and disabled ads stay visible to their owner.
func (a *AdsStore) ListBySeller(ctx context.Context, seller bson.ObjectID, page, pageSize int) (*AdPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	query := bson.M{"seller": seller}

	total, err := a.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "posted", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(page-1) * int64(pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := a.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ads []*Ad
	if err := cursor.All(ctx, &ads); err != nil {
		return nil, err
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)
	return &AdPage{Ads: ads, Total: total, Page: page, TotalPages: totalPages}, nil
}

// ListAllBySeller returns every ad a seller owns, without pagination. The
// inbox aggregation uses this to learn the set of ad ids to match messages
// against.
func (a *AdsStore) ListAllBySeller(ctx context.Context, seller bson.ObjectID) ([]*Ad, error) {
	cursor, err := a.coll.Find(ctx, bson.M{"seller": seller})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ads []*Ad
	if err := cursor.All(ctx, &ads); err != nil {
		return nil, err
	}
	return ads, nil
}

// ListByCategory returns up to limit ads filed under the given category
// and sub-category. The AI analytics prompt uses these as comparables.
func (a *AdsStore) ListByCategory(ctx context.Context, category bson.ObjectID, subCategory string, limit int64) ([]*Ad, error) {
	query := bson.M{"category": category}
	if subCategory != "" {
		query["sub_category"] = subCategory
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "posted", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cursor, err := a.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ads []*Ad
	if err := cursor.All(ctx, &ads); err != nil {
		return nil, err
	}
	return ads, nil
}

// GetManyByIDs loads the given ads in one query, keyed by id.
func (a *AdsStore) GetManyByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]*Ad, error) {
	ads := make(map[bson.ObjectID]*Ad, len(ids))
	if len(ids) == 0 {
		return ads, nil
	}

	cursor, err := a.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []*Ad
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, doc := range docs {
		ads[doc.ID] = doc
	}
	return ads, nil
}

// MarkSold transitions an ad to sold. Owner-only. Idempotent: marking an
// already-sold ad again simply reasserts the buyer reference.
func (a *AdsStore) MarkSold(ctx context.Context, adID, seller bson.ObjectID, soldTo *bson.ObjectID) (*Ad, error) {
	set := bson.M{"is_sold": true}
	if soldTo != nil {
		set["sold_to"] = *soldTo
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var ad Ad
	err := a.coll.FindOneAndUpdate(ctx, bson.M{"_id": adID, "seller": seller}, bson.M{"$set": set}, opts).Decode(&ad)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, a.notFoundOrNotOwner(ctx, adID)
		}
		return nil, err
	}
	return &ad, nil
}

// Delete removes an ad permanently. Owner-only. Chat messages referencing
// the ad are left in place; inbox aggregation skips messages whose ad no
// longer resolves.
func (a *AdsStore) Delete(ctx context.Context, adID, seller bson.ObjectID) error {
	result, err := a.coll.DeleteOne(ctx, bson.M{"_id": adID, "seller": seller})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return a.notFoundOrNotOwner(ctx, adID)
	}
	return nil
}

// SetActive enables or disables an ad. Owner-only. Disabling keeps all ad
// data; the ad just drops out of default browse listings.
func (a *AdsStore) SetActive(ctx context.Context, adID, seller bson.ObjectID, active bool) (*Ad, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var ad Ad
	err := a.coll.FindOneAndUpdate(ctx, bson.M{"_id": adID, "seller": seller}, bson.M{"$set": bson.M{"is_active": active}}, opts).Decode(&ad)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, a.notFoundOrNotOwner(ctx, adID)
		}
		return nil, err
	}
	return &ad, nil
}

// IncrementViews bumps the view counter by one.
func (a *AdsStore) IncrementViews(ctx context.Context, adID bson.ObjectID) error {
	result, err := a.coll.UpdateOne(ctx, bson.M{"_id": adID}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddInterestedUser records that user opened a chat about the ad. $addToSet
// gives the set semantics the invariant requires: adding the same user
// twice leaves a single entry.
func (a *AdsStore) AddInterestedUser(ctx context.Context, adID, user bson.ObjectID) error {
	result, err := a.coll.UpdateOne(ctx, bson.M{"_id": adID}, bson.M{"$addToSet": bson.M{"interested_users": user}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// notFoundOrNotOwner distinguishes a missing ad from an ownership failure
// after an owner-scoped update matched nothing.
func (a *AdsStore) notFoundOrNotOwner(ctx context.Context, adID bson.ObjectID) error {
	count, err := a.coll.CountDocuments(ctx, bson.M{"_id": adID})
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrNotOwner
}
