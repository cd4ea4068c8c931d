package data

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/Gokulm100/e4u-Backend/internal/db"
)

func setupDB(t *testing.T) *db.Client {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	c, err := db.New(ctx, uri, "e4u_test")
	if err != nil {
		t.Fatalf("db.New failed: %v", err)
	}

	// ensure clean collections in case previous runs left data
	_ = c.UsersCollection().Drop(ctx)
	_ = c.CategoriesCollection().Drop(ctx)
	_ = c.AdsCollection().Drop(ctx)
	_ = c.ChatsCollection().Drop(ctx)

	if err := c.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes failed: %v", err)
	}

	return c
}

func TestUsersCreateAndGet(t *testing.T) {
	// no env loader; require MONGODB_URI to be set externally

	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	users := NewUsersStore(c.UsersCollection())

	ctx := context.Background()
	email := time.Now().UTC().Format("20060102-150405") + "-integration@example.com"

	// create
	user, err := users.CreateUser(ctx, "Integration Tester", email, "hashed-password")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.Email != email {
		t.Fatalf("expected email %s got %s", email, user.Email)
	}

	// duplicate registration must hit the unique index
	if _, err := users.CreateUser(ctx, "Copycat", email, "other-hash"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Get by email
	u2, err := users.GetUserByEmail(ctx, email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if u2.Email != email {
		t.Fatalf("GetUserByEmail returned wrong email: %s", u2.Email)
	}

	// Get by id
	got, err := users.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if got.Email != email {
		t.Fatalf("GetUserByID returned wrong email: %s", got.Email)
	}

	// FCM token registration
	if err := users.SetFCMToken(ctx, user.ID, "device-token-123"); err != nil {
		t.Fatalf("SetFCMToken failed: %v", err)
	}
	got, err = users.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID after SetFCMToken failed: %v", err)
	}
	if got.FCMToken != "device-token-123" {
		t.Fatalf("fcm token not persisted: %q", got.FCMToken)
	}
}

func TestUpsertGoogleUser(t *testing.T) {
	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	users := NewUsersStore(c.UsersCollection())
	ctx := context.Background()

	// first login creates the account
	u1, err := users.UpsertGoogleUser(ctx, "google-sub-1", "Gina", "gina@example.com", "/pics/gina.png")
	if err != nil {
		t.Fatalf("UpsertGoogleUser (first login) failed: %v", err)
	}
	if u1.GoogleID != "google-sub-1" || u1.Name != "Gina" {
		t.Fatalf("unexpected user after first login: %+v", u1)
	}

	// second login updates in place, same document
	u2, err := users.UpsertGoogleUser(ctx, "google-sub-1", "Gina Renamed", "gina@example.com", "/pics/gina2.png")
	if err != nil {
		t.Fatalf("UpsertGoogleUser (repeat login) failed: %v", err)
	}
	if u2.ID != u1.ID {
		t.Fatalf("repeat login created a new document: %s vs %s", u2.ID.Hex(), u1.ID.Hex())
	}
	if u2.Name != "Gina Renamed" || u2.ProfilePic != "/pics/gina2.png" {
		t.Fatalf("profile data not refreshed: %+v", u2)
	}
	if u2.LastLogin == nil {
		t.Fatalf("last_login not stamped")
	}
}
