package inbox

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Gokulm100/e4u-Backend/internal/data"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrSelfRead is returned when a caller tries to mark its own messages as
// seen by itself; reader and sender must differ.
var ErrSelfRead = errors.New("reader and sender must be different users")

// AdReader is the subset of the ads store the aggregator reads and the one
// lifecycle side effect it triggers.
type AdReader interface {
	GetByID(ctx context.Context, id bson.ObjectID) (*data.Ad, error)
	ListAllBySeller(ctx context.Context, seller bson.ObjectID) ([]*data.Ad, error)
	GetManyByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]*data.Ad, error)
	AddInterestedUser(ctx context.Context, adID, user bson.ObjectID) error
}

// ChatStore is the subset of the chats store the aggregator uses.
type ChatStore interface {
	Save(ctx context.Context, adID, from, to bson.ObjectID, text string) (*data.ChatMessage, error)
	ListByAdIDs(ctx context.Context, adIDs []bson.ObjectID) ([]*data.ChatMessage, error)
	ListInvolving(ctx context.Context, user bson.ObjectID) ([]*data.ChatMessage, error)
	MarkThreadSeen(ctx context.Context, adID, reader, sender bson.ObjectID) (int64, error)
	CountUnread(ctx context.Context, user bson.ObjectID) (int64, error)
}

// UserReader is the subset of the users store the aggregator uses for
// display names, avatars and device tokens.
type UserReader interface {
	GetUserByID(ctx context.Context, id bson.ObjectID) (*data.User, error)
	GetManyByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]*data.User, error)
}

// Notifier delivers a push notification. Implementations must not block:
// delivery happens in the background and failures are logged, never
// surfaced to the request that triggered them.
type Notifier interface {
	Dispatch(token, title, body string, payload map[string]string)
}

// Service wires the stores together into the inbox operations. It is
// constructed once at startup and shared across requests; it keeps no
// per-request state.
type Service struct {
	ads      AdReader
	chats    ChatStore
	users    UserReader
	notifier Notifier
}

// NewService returns a Service backed by the given stores. notifier may be
// nil when push notifications are not configured.
func NewService(ads AdReader, chats ChatStore, users UserReader, notifier Notifier) *Service {
	return &Service{ads: ads, chats: chats, users: users, notifier: notifier}
}

// SellingInbox returns the conversations on ads the viewer owns, one row
// per counterparty per ad, most recent first.
func (s *Service) SellingInbox(ctx context.Context, viewer bson.ObjectID) ([]Row, error) {
	owned, err := s.ads.ListAllBySeller(ctx, viewer)
	if err != nil {
		return nil, fmt.Errorf("failed to list own ads: %w", err)
	}
	if len(owned) == 0 {
		return []Row{}, nil
	}

	ads := make(map[bson.ObjectID]*data.Ad, len(owned))
	adIDs := make([]bson.ObjectID, 0, len(owned))
	for _, ad := range owned {
		ads[ad.ID] = ad
		adIDs = append(adIDs, ad.ID)
	}

	msgs, err := s.chats.ListByAdIDs(ctx, adIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	users, err := s.loadCounterparties(ctx, viewer, msgs)
	if err != nil {
		return nil, err
	}

	return BuildSellingInbox(viewer, ads, msgs, users), nil
}

// BuyingInbox returns the conversations the viewer takes part in on ads
// owned by others.
func (s *Service) BuyingInbox(ctx context.Context, viewer bson.ObjectID) ([]Row, error) {
	msgs, err := s.chats.ListInvolving(ctx, viewer)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	if len(msgs) == 0 {
		return []Row{}, nil
	}

	// Resolve the referenced ads; messages on deleted ads drop out here
	// because GetManyByIDs simply won't return them.
	adIDSet := make(map[bson.ObjectID]struct{})
	for _, msg := range msgs {
		adIDSet[msg.AdID] = struct{}{}
	}
	adIDs := make([]bson.ObjectID, 0, len(adIDSet))
	for id := range adIDSet {
		adIDs = append(adIDs, id)
	}

	ads, err := s.ads.GetManyByIDs(ctx, adIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load ads: %w", err)
	}

	users, err := s.loadCounterparties(ctx, viewer, msgs)
	if err != nil {
		return nil, err
	}

	return BuildBuyingInbox(viewer, ads, msgs, users), nil
}

// UnreadCount returns how many stored messages addressed to the user carry
// no seen timestamp.
func (s *Service) UnreadCount(ctx context.Context, user bson.ObjectID) (int64, error) {
	return s.chats.CountUnread(ctx, user)
}

// MarkThreadSeen stamps every unread message from sender to reader on the
// given ad and returns the number updated. Rejects reader == sender.
func (s *Service) MarkThreadSeen(ctx context.Context, adID, reader, sender bson.ObjectID) (int64, error) {
	if reader == sender {
		return 0, ErrSelfRead
	}
	return s.chats.MarkThreadSeen(ctx, adID, reader, sender)
}

// RecordChat appends a chat message about an ad. When the sender is not the
// ad's seller they are added to the ad's interested-users set. A push
// notification to the recipient's device is dispatched in the background;
// neither side effect can fail the message append.
func (s *Service) RecordChat(ctx context.Context, adID, from, to bson.ObjectID, text string) (*data.ChatMessage, error) {
	ad, err := s.ads.GetByID(ctx, adID)
	if err != nil {
		return nil, err
	}

	msg, err := s.chats.Save(ctx, adID, from, to, text)
	if err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	// Chat initiators who aren't the seller become interested users.
	// The message is already persisted, so a failure here is only logged.
	if from != ad.Seller {
		if err := s.ads.AddInterestedUser(ctx, adID, from); err != nil {
			log.Printf("failed to record interested user %s on ad %s: %v", from.Hex(), adID.Hex(), err)
		}
	}

	s.notifyRecipient(ctx, ad, msg)

	return msg, nil
}

// notifyRecipient dispatches a push notification for the new message if the
// recipient has a registered device token. Failures are logged only.
func (s *Service) notifyRecipient(ctx context.Context, ad *data.Ad, msg *data.ChatMessage) {
	if s.notifier == nil {
		return
	}

	recipient, err := s.users.GetUserByID(ctx, msg.To)
	if err != nil {
		log.Printf("failed to load notification recipient %s: %v", msg.To.Hex(), err)
		return
	}
	if recipient.FCMToken == "" {
		return
	}

	title := "New message"
	if sender, err := s.users.GetUserByID(ctx, msg.From); err == nil {
		title = sender.Name
	}

	s.notifier.Dispatch(recipient.FCMToken, title, msg.Message, map[string]string{
		"type":    "CHAT",
		"adId":    ad.ID.Hex(),
		"adTitle": ad.Title,
		"from":    msg.From.Hex(),
	})
}

// loadCounterparties collects the other participant of every message and
// loads their display data in one query.
func (s *Service) loadCounterparties(ctx context.Context, viewer bson.ObjectID, msgs []*data.ChatMessage) (map[bson.ObjectID]*data.User, error) {
	idSet := make(map[bson.ObjectID]struct{})
	for _, msg := range msgs {
		if other := otherParty(msg, viewer); !other.IsZero() {
			idSet[other] = struct{}{}
		}
	}
	ids := make([]bson.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	users, err := s.users.GetManyByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load counterparties: %w", err)
	}
	return users, nil
}
