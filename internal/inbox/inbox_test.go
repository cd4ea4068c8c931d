package inbox

import (
	"testing"
	"time"

	"github.com/Gokulm100/e4u-Backend/internal/data"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func oid(t *testing.T, hex string) bson.ObjectID {
	t.Helper()
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		t.Fatalf("bad hex id %q: %v", hex, err)
	}
	return id
}

func msg(id, adID, from, to bson.ObjectID, text string, at time.Time) *data.ChatMessage {
	return &data.ChatMessage{
		ID:        id,
		AdID:      adID,
		From:      from,
		To:        to,
		Message:   text,
		CreatedAt: at,
	}
}

func TestBuildSellingInbox_OneRowPerCounterparty(t *testing.T) {
	seller := bson.NewObjectID()
	buyer1 := bson.NewObjectID()
	buyer2 := bson.NewObjectID()
	adID := bson.NewObjectID()

	ads := map[bson.ObjectID]*data.Ad{
		adID: {ID: adID, Title: "City bike", Seller: seller},
	}
	users := map[bson.ObjectID]*data.User{
		buyer1: {ID: buyer1, Name: "Alice"},
		buyer2: {ID: buyer2, Name: "Bob"},
	}

	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(5 * time.Minute)
	msgs := []*data.ChatMessage{
		msg(bson.NewObjectID(), adID, buyer1, seller, "Is this available?", t1),
		msg(bson.NewObjectID(), adID, buyer2, seller, "Still for sale?", t2),
	}

	rows := BuildSellingInbox(seller, ads, msgs, users)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	// Most recent conversation first: buyer2 wrote after buyer1.
	if rows[0].Counterparty != buyer2 {
		t.Fatalf("expected buyer2 row first, got counterparty %s", rows[0].Counterparty.Hex())
	}
	if rows[0].LastMessage != "Still for sale?" {
		t.Fatalf("wrong last message in first row: %q", rows[0].LastMessage)
	}
	if rows[1].Counterparty != buyer1 {
		t.Fatalf("expected buyer1 row second, got counterparty %s", rows[1].Counterparty.Hex())
	}
	if rows[1].LastMessage != "Is this available?" {
		t.Fatalf("wrong last message in second row: %q", rows[1].LastMessage)
	}
	if rows[0].CounterpartyName != "Bob" || rows[1].CounterpartyName != "Alice" {
		t.Fatalf("counterparty names not resolved: %q, %q", rows[0].CounterpartyName, rows[1].CounterpartyName)
	}
}

func TestBuildSellingInbox_LatestMessageWinsPerThread(t *testing.T) {
	seller := bson.NewObjectID()
	buyer := bson.NewObjectID()
	adID := bson.NewObjectID()

	ads := map[bson.ObjectID]*data.Ad{
		adID: {ID: adID, Title: "Sofa", Seller: seller},
	}

	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	msgs := []*data.ChatMessage{
		msg(bson.NewObjectID(), adID, buyer, seller, "first", t1),
		msg(bson.NewObjectID(), adID, seller, buyer, "reply", t1.Add(time.Minute)),
		msg(bson.NewObjectID(), adID, buyer, seller, "latest", t1.Add(2*time.Minute)),
	}

	rows := BuildSellingInbox(seller, ads, msgs, nil)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].LastMessage != "latest" {
		t.Fatalf("expected latest message, got %q", rows[0].LastMessage)
	}
	if rows[0].LastSender != buyer {
		t.Fatalf("wrong last sender")
	}
	if rows[0].CounterpartyName != "Unknown user" {
		t.Fatalf("expected fallback name, got %q", rows[0].CounterpartyName)
	}
	if rows[0].Avatar != PlaceholderAvatar {
		t.Fatalf("expected placeholder avatar, got %q", rows[0].Avatar)
	}
}

func TestBuildSellingInbox_EqualTimestampsTieBreakOnID(t *testing.T) {
	seller := oid(t, "65f000000000000000000001")
	buyer := oid(t, "65f000000000000000000002")
	adID := oid(t, "65f000000000000000000003")

	ads := map[bson.ObjectID]*data.Ad{
		adID: {ID: adID, Title: "Lamp", Seller: seller},
	}

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	older := msg(oid(t, "65f0000000000000000000aa"), adID, buyer, seller, "older", at)
	newest := msg(oid(t, "65f0000000000000000000bb"), adID, buyer, seller, "newest", at)

	// Same rows regardless of input order.
	for _, msgs := range [][]*data.ChatMessage{
		{older, newest},
		{newest, older},
	} {
		rows := BuildSellingInbox(seller, ads, msgs, nil)
		if len(rows) != 1 {
			t.Fatalf("expected 1 row, got %d", len(rows))
		}
		if rows[0].LastMessage != "newest" {
			t.Fatalf("tie-break picked %q, want %q", rows[0].LastMessage, "newest")
		}
	}
}

func TestBuildSellingInbox_SkipsForeignAndDeletedAds(t *testing.T) {
	seller := bson.NewObjectID()
	otherSeller := bson.NewObjectID()
	buyer := bson.NewObjectID()
	ownAd := bson.NewObjectID()
	foreignAd := bson.NewObjectID()
	deletedAd := bson.NewObjectID()

	ads := map[bson.ObjectID]*data.Ad{
		ownAd:     {ID: ownAd, Title: "Mine", Seller: seller},
		foreignAd: {ID: foreignAd, Title: "Not mine", Seller: otherSeller},
	}

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	msgs := []*data.ChatMessage{
		msg(bson.NewObjectID(), ownAd, buyer, seller, "keep", at),
		msg(bson.NewObjectID(), foreignAd, buyer, otherSeller, "skip: not my ad", at),
		msg(bson.NewObjectID(), deletedAd, buyer, seller, "skip: ad gone", at),
	}

	rows := BuildSellingInbox(seller, ads, msgs, nil)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].AdID != ownAd {
		t.Fatalf("unexpected ad in row: %s", rows[0].AdID.Hex())
	}
}

func TestBuildSellingInbox_NoMessagesNoRows(t *testing.T) {
	seller := bson.NewObjectID()
	adID := bson.NewObjectID()
	ads := map[bson.ObjectID]*data.Ad{
		adID: {ID: adID, Title: "Quiet ad", Seller: seller},
	}

	rows := BuildSellingInbox(seller, ads, nil, nil)
	if len(rows) != 0 {
		t.Fatalf("expected no rows for an ad without messages, got %d", len(rows))
	}
}

func TestBuildBuyingInbox_ExcludesOwnAds(t *testing.T) {
	viewer := bson.NewObjectID()
	seller := bson.NewObjectID()
	theirAd := bson.NewObjectID()
	myAd := bson.NewObjectID()

	ads := map[bson.ObjectID]*data.Ad{
		theirAd: {ID: theirAd, Title: "Their ad", Seller: seller, IsSold: true},
		myAd:    {ID: myAd, Title: "My ad", Seller: viewer},
	}

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	msgs := []*data.ChatMessage{
		msg(bson.NewObjectID(), theirAd, viewer, seller, "interested", at),
		msg(bson.NewObjectID(), myAd, seller, viewer, "I am the seller here", at),
	}

	rows := BuildBuyingInbox(viewer, ads, msgs, nil)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].AdID != theirAd {
		t.Fatalf("buying inbox included viewer's own ad")
	}
	if !rows[0].IsSold {
		t.Fatalf("expected IsSold carried through from the ad")
	}
}

func TestBuildInbox_UnreadDerivation(t *testing.T) {
	viewer := bson.NewObjectID()
	buyer := bson.NewObjectID()
	adID := bson.NewObjectID()

	ads := map[bson.ObjectID]*data.Ad{
		adID: {ID: adID, Title: "Desk", Seller: viewer},
	}

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Latest message to the viewer, not yet seen: unread.
	unseen := msg(bson.NewObjectID(), adID, buyer, viewer, "hello", at)
	rows := BuildSellingInbox(viewer, ads, []*data.ChatMessage{unseen}, nil)
	if len(rows) != 1 || !rows[0].Unread {
		t.Fatalf("expected unread row")
	}

	// Same message with a seen timestamp: read.
	seenAt := at.Add(time.Minute)
	seen := msg(unseen.ID, adID, buyer, viewer, "hello", at)
	seen.Seen = &seenAt
	rows = BuildSellingInbox(viewer, ads, []*data.ChatMessage{seen}, nil)
	if len(rows) != 1 || rows[0].Unread {
		t.Fatalf("expected read row once seen is set")
	}

	// Latest message sent by the viewer: never unread.
	mine := msg(bson.NewObjectID(), adID, viewer, buyer, "any questions?", at.Add(2*time.Minute))
	rows = BuildSellingInbox(viewer, ads, []*data.ChatMessage{unseen, mine}, nil)
	if len(rows) != 1 || rows[0].Unread {
		t.Fatalf("row must not be unread when viewer sent the latest message")
	}
}
