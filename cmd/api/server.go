package main

import (
	"context"

	"github.com/Gokulm100/e4u-Backend/internal/advisory"
	"github.com/Gokulm100/e4u-Backend/internal/auth"
	"github.com/Gokulm100/e4u-Backend/internal/data"
	"github.com/Gokulm100/e4u-Backend/internal/inbox"
	"github.com/Gokulm100/e4u-Backend/internal/upload"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// The handler-facing store interfaces. Narrow on purpose: tests fake them
// without a database, and the production stores satisfy them as-is.

type usersStore interface {
	CreateUser(ctx context.Context, name, email, hashedPassword string) (*data.User, error)
	UpsertGoogleUser(ctx context.Context, googleID, name, email, picture string) (*data.User, error)
	GetUserByID(ctx context.Context, id bson.ObjectID) (*data.User, error)
	GetUserByEmail(ctx context.Context, email string) (*data.User, error)
	GetManyByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]*data.User, error)
	SetFCMToken(ctx context.Context, id bson.ObjectID, token string) error
}

type adsStore interface {
	Create(ctx context.Context, seller bson.ObjectID, in data.AdInput) (*data.Ad, error)
	Update(ctx context.Context, adID, seller bson.ObjectID, in data.AdInput) (*data.Ad, error)
	GetByID(ctx context.Context, id bson.ObjectID) (*data.Ad, error)
	ListBrowsable(ctx context.Context, filter data.AdFilter, page, pageSize int) (*data.AdPage, error)
	ListBySeller(ctx context.Context, seller bson.ObjectID, page, pageSize int) (*data.AdPage, error)
	ListByCategory(ctx context.Context, category bson.ObjectID, subCategory string, limit int64) ([]*data.Ad, error)
	MarkSold(ctx context.Context, adID, seller bson.ObjectID, soldTo *bson.ObjectID) (*data.Ad, error)
	SetActive(ctx context.Context, adID, seller bson.ObjectID, active bool) (*data.Ad, error)
	Delete(ctx context.Context, adID, seller bson.ObjectID) error
	IncrementViews(ctx context.Context, adID bson.ObjectID) error
}

type categoriesStore interface {
	List(ctx context.Context) ([]*data.AdCategory, error)
	GetByName(ctx context.Context, name string) (*data.AdCategory, error)
}

type chatsStore interface {
	Thread(ctx context.Context, adID, user1, user2 bson.ObjectID) ([]*data.ChatMessage, error)
	ListByAdIDs(ctx context.Context, adIDs []bson.ObjectID) ([]*data.ChatMessage, error)
}

type inboxService interface {
	SellingInbox(ctx context.Context, viewer bson.ObjectID) ([]inbox.Row, error)
	BuyingInbox(ctx context.Context, viewer bson.ObjectID) ([]inbox.Row, error)
	MarkThreadSeen(ctx context.Context, adID, reader, sender bson.ObjectID) (int64, error)
	RecordChat(ctx context.Context, adID, from, to bson.ObjectID, text string) (*data.ChatMessage, error)
	UnreadCount(ctx context.Context, user bson.ObjectID) (int64, error)
}

// advisoryClient is nil when no AI key is configured; handlers then report
// the advisory endpoints as unavailable and browse skips AI search.
type advisoryClient interface {
	SummarizeDescription(ctx context.Context, in advisory.SummaryInput) (map[string]any, error)
	AnalyzeAd(ctx context.Context, mainAd advisory.AdSnapshot, related []advisory.AdSnapshot) (*advisory.AdAnalysis, error)
	TranslateSearch(ctx context.Context, query string, knownCategories []string) (*advisory.SearchFilter, error)
}

// Server holds the wired dependencies every handler works against.
type Server struct {
	users      usersStore
	ads        adsStore
	categories categoriesStore
	chats      chatsStore
	inbox      inboxService
	advisory   advisoryClient
	uploads    *upload.Store
	jwt        *auth.JWTManager
	identity   auth.IdentityVerifier
}

// newServer returns a ready-to-use Server wired with stores and services.
func newServer(
	users usersStore,
	ads adsStore,
	categories categoriesStore,
	chats chatsStore,
	inboxSvc inboxService,
	advisoryClient advisoryClient,
	uploads *upload.Store,
	jwtMgr *auth.JWTManager,
	identity auth.IdentityVerifier,
) *Server {
	return &Server{
		users:      users,
		ads:        ads,
		categories: categories,
		chats:      chats,
		inbox:      inboxSvc,
		advisory:   advisoryClient,
		uploads:    uploads,
		jwt:        jwtMgr,
		identity:   identity,
	}
}
