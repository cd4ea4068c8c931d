package data

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestAdsLifecycle(t *testing.T) {
	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	ads := NewAdsStore(c.AdsCollection())
	ctx := context.Background()

	seller := bson.NewObjectID()
	stranger := bson.NewObjectID()
	category := bson.NewObjectID()

	ad, err := ads.Create(ctx, seller, AdInput{
		Title:       "Mountain bike",
		Price:       250,
		Location:    "Kochi",
		Category:    category,
		SubCategory: "Bicycles",
		Description: "Hardly used, well maintained",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !ad.IsActive || ad.IsSold {
		t.Fatalf("new ad should start active and unsold: %+v", ad)
	}

	// browse includes it
	page, err := ads.ListBrowsable(ctx, AdFilter{}, 1, 10)
	if err != nil {
		t.Fatalf("ListBrowsable failed: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("expected 1 browsable ad, got %d", page.Total)
	}

	// viewer exclusion hides the seller's own ad
	page, err = ads.ListBrowsable(ctx, AdFilter{ExcludeUser: seller}, 1, 10)
	if err != nil {
		t.Fatalf("ListBrowsable with exclusion failed: %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("seller's own ad leaked into browse: %d", page.Total)
	}

	// non-owner cannot edit or mark sold
	if _, err := ads.Update(ctx, ad.ID, stranger, AdInput{Title: "hijack"}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner on foreign edit, got %v", err)
	}
	if _, err := ads.MarkSold(ctx, ad.ID, stranger, nil); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner on foreign MarkSold, got %v", err)
	}

	// mark sold removes it from browse but not from the owner listing
	buyer := bson.NewObjectID()
	sold, err := ads.MarkSold(ctx, ad.ID, seller, &buyer)
	if err != nil {
		t.Fatalf("MarkSold failed: %v", err)
	}
	if !sold.IsSold || sold.SoldTo == nil || *sold.SoldTo != buyer {
		t.Fatalf("sold state not persisted: %+v", sold)
	}

	page, err = ads.ListBrowsable(ctx, AdFilter{}, 1, 10)
	if err != nil {
		t.Fatalf("ListBrowsable after sale failed: %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("sold ad still browsable")
	}

	ownerPage, err := ads.ListBySeller(ctx, seller, 1, 10)
	if err != nil {
		t.Fatalf("ListBySeller failed: %v", err)
	}
	if ownerPage.Total != 1 {
		t.Fatalf("sold ad missing from owner listing")
	}

	// marking sold twice is a no-op, not an error
	if _, err := ads.MarkSold(ctx, ad.ID, seller, &buyer); err != nil {
		t.Fatalf("repeated MarkSold failed: %v", err)
	}

	// unknown ad distinguishes from ownership failure
	if _, err := ads.MarkSold(ctx, bson.NewObjectID(), seller, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown ad, got %v", err)
	}
}

func TestAdsDelete(t *testing.T) {
	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	ads := NewAdsStore(c.AdsCollection())
	ctx := context.Background()

	seller := bson.NewObjectID()
	stranger := bson.NewObjectID()

	ad, err := ads.Create(ctx, seller, AdInput{Title: "Lawn mower", Category: bson.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// only the owner may delete
	if err := ads.Delete(ctx, ad.ID, stranger); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner on foreign delete, got %v", err)
	}
	if _, err := ads.GetByID(ctx, ad.ID); err != nil {
		t.Fatalf("ad vanished after rejected delete: %v", err)
	}

	if err := ads.Delete(ctx, ad.ID, seller); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := ads.GetByID(ctx, ad.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// deleting again reports the ad as gone
	if err := ads.Delete(ctx, ad.ID, seller); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeated delete, got %v", err)
	}
}

func TestAdsInterestedUsersSetSemantics(t *testing.T) {
	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	ads := NewAdsStore(c.AdsCollection())
	ctx := context.Background()

	seller := bson.NewObjectID()
	buyer := bson.NewObjectID()

	ad, err := ads.Create(ctx, seller, AdInput{Title: "Couch", Category: bson.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := ads.AddInterestedUser(ctx, ad.ID, buyer); err != nil {
			t.Fatalf("AddInterestedUser failed: %v", err)
		}
	}

	got, err := ads.GetByID(ctx, ad.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.InterestedUsers) != 1 || got.InterestedUsers[0] != buyer {
		t.Fatalf("expected one interested user entry, got %v", got.InterestedUsers)
	}
}

func TestAdsTitleSearchAndViews(t *testing.T) {
	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	ads := NewAdsStore(c.AdsCollection())
	ctx := context.Background()

	seller := bson.NewObjectID()
	category := bson.NewObjectID()
	ad, err := ads.Create(ctx, seller, AdInput{Title: "Trek Marlin 7 (2021)", Category: category})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := ads.Create(ctx, seller, AdInput{Title: "Office chair", Category: category}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// case-insensitive substring match; parentheses in the query are literal
	page, err := ads.ListBrowsable(ctx, AdFilter{TitleQuery: "marlin 7 (2021)"}, 1, 10)
	if err != nil {
		t.Fatalf("ListBrowsable failed: %v", err)
	}
	if page.Total != 1 || page.Ads[0].ID != ad.ID {
		t.Fatalf("title search returned wrong result: total=%d", page.Total)
	}

	if err := ads.IncrementViews(ctx, ad.ID); err != nil {
		t.Fatalf("IncrementViews failed: %v", err)
	}
	got, err := ads.GetByID(ctx, ad.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Views != 1 {
		t.Fatalf("expected 1 view, got %d", got.Views)
	}
}
