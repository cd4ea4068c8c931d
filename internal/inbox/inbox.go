// Package inbox derives buyer and seller conversation views from the chat
// and ad stores. It holds no state of its own: every call recomputes the
// view from current store contents.
package inbox

import (
	"sort"
	"time"

	"github.com/Gokulm100/e4u-Backend/internal/data"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// PlaceholderAvatar is shown for counterparties without a profile picture.
const PlaceholderAvatar = "/uploads/avatar-placeholder.png"

// Row is one conversation summary: the latest message exchanged with one
// counterparty about one ad, plus the display metadata the client renders.
type Row struct {
	AdID             bson.ObjectID `json:"adId"`
	AdTitle          string        `json:"adTitle"`
	IsSold           bool          `json:"isSold"`
	Counterparty     bson.ObjectID `json:"counterpartyId"`
	CounterpartyName string        `json:"counterpartyName"`
	Avatar           string        `json:"avatar"`
	LastMessage      string        `json:"lastMessage"`
	LastSender       bson.ObjectID `json:"lastSender"`
	// Unread is true when the viewer is the recipient of the latest message
	// and it carries no seen timestamp.
	Unread    bool   `json:"unread"`
	Timestamp string `json:"timestamp"`
}

// threadKey identifies a conversation: one counterparty on one ad.
type threadKey struct {
	adID         bson.ObjectID
	counterparty bson.ObjectID
}

// newer reports whether a should replace b as the latest message of a
// thread. Creation time decides; equal timestamps fall back to the hex
// ObjectID, which encodes insertion order, so the result is deterministic
// for any input order. The same rule orders rows, so both inbox views and
// their pagination behave identically.
func newer(a, b *data.ChatMessage) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.Hex() > b.ID.Hex()
}

// BuildSellingInbox computes the seller view: one row per counterparty per
// ad the viewer owns. Messages referencing ads outside the given map are
// skipped (the ad was deleted); ads with no messages yield no row.
func BuildSellingInbox(viewer bson.ObjectID, ads map[bson.ObjectID]*data.Ad, msgs []*data.ChatMessage, users map[bson.ObjectID]*data.User) []Row {
	latest := make(map[threadKey]*data.ChatMessage)
	for _, msg := range msgs {
		ad, ok := ads[msg.AdID]
		if !ok || ad.Seller != viewer {
			continue
		}
		counterparty := otherParty(msg, viewer)
		if counterparty.IsZero() {
			// viewer is not a participant of this message; nothing to show
			continue
		}
		key := threadKey{adID: msg.AdID, counterparty: counterparty}
		if current, ok := latest[key]; !ok || newer(msg, current) {
			latest[key] = msg
		}
	}
	return buildRows(viewer, latest, ads, users)
}

// BuildBuyingInbox computes the buyer view: one row per ad owned by someone
// else that the viewer has exchanged messages about. The counterparty is
// the ad's seller side of the conversation.
func BuildBuyingInbox(viewer bson.ObjectID, ads map[bson.ObjectID]*data.Ad, msgs []*data.ChatMessage, users map[bson.ObjectID]*data.User) []Row {
	latest := make(map[threadKey]*data.ChatMessage)
	for _, msg := range msgs {
		ad, ok := ads[msg.AdID]
		if !ok || ad.Seller == viewer {
			continue
		}
		counterparty := otherParty(msg, viewer)
		if counterparty.IsZero() {
			continue
		}
		key := threadKey{adID: msg.AdID, counterparty: counterparty}
		if current, ok := latest[key]; !ok || newer(msg, current) {
			latest[key] = msg
		}
	}
	return buildRows(viewer, latest, ads, users)
}

// otherParty returns whichever of from/to is not the viewer, or the zero
// id when the viewer took no part in the message.
func otherParty(msg *data.ChatMessage, viewer bson.ObjectID) bson.ObjectID {
	switch viewer {
	case msg.From:
		return msg.To
	case msg.To:
		return msg.From
	default:
		return bson.ObjectID{}
	}
}

// buildRows turns the per-thread latest messages into display rows ordered
// most recent conversation first.
func buildRows(viewer bson.ObjectID, latest map[threadKey]*data.ChatMessage, ads map[bson.ObjectID]*data.Ad, users map[bson.ObjectID]*data.User) []Row {
	rows := make([]Row, 0, len(latest))
	ordering := make(map[threadKey]*data.ChatMessage, len(latest))

	for key, msg := range latest {
		ad := ads[key.adID]

		row := Row{
			AdID:             key.adID,
			AdTitle:          ad.Title,
			IsSold:           ad.IsSold,
			Counterparty:     key.counterparty,
			CounterpartyName: "Unknown user",
			Avatar:           PlaceholderAvatar,
			LastMessage:      msg.Message,
			LastSender:       msg.From,
			Unread:           msg.To == viewer && msg.Seen == nil,
			Timestamp:        msg.CreatedAt.Format(time.RFC3339),
		}
		if user, ok := users[key.counterparty]; ok {
			row.CounterpartyName = user.Name
			if user.ProfilePic != "" {
				row.Avatar = user.ProfilePic
			}
		}

		ordering[key] = msg
		rows = append(rows, row)
	}

	// Same ordering rule as the per-thread selection: newest first, hex id
	// as the deterministic tie-break.
	sort.Slice(rows, func(i, j int) bool {
		a := ordering[threadKey{adID: rows[i].AdID, counterparty: rows[i].Counterparty}]
		b := ordering[threadKey{adID: rows[j].AdID, counterparty: rows[j].Counterparty}]
		return newer(a, b)
	})

	return rows
}
