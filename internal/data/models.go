package data

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User maps to the users collection. Accounts are created either on first
// Google login (GoogleID set) or through email registration (Password set).
type User struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	GoogleID   string        `bson:"google_id,omitempty" json:"-"`
	Name       string        `bson:"name" json:"name"`
	Email      string        `bson:"email" json:"email"`
	Password   string        `bson:"password,omitempty" json:"-"`
	ProfilePic string        `bson:"profile_pic,omitempty" json:"profilePic,omitempty"`
	// FCMToken is the registered push-notification device token, empty when
	// the user has no registered device.
	FCMToken  string     `bson:"fcm_token,omitempty" json:"-"`
	LastLogin *time.Time `bson:"last_login,omitempty" json:"lastLogin,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
}

// AdCategory is reference data: a named category ads are filed under.
type AdCategory struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string        `bson:"name" json:"name"`
	Description string        `bson:"description" json:"description"`
	IsActive    bool          `bson:"is_active" json:"isActive"`
	CreatedAt   time.Time     `bson:"created_at" json:"createdAt"`
}

// Ad maps to the ads collection. Seller is immutable after creation.
// InterestedUsers accumulates buyers who opened a chat about the ad; it is
// a set (no duplicates) and only ever grows.
type Ad struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string        `bson:"title" json:"title"`
	Price       float64       `bson:"price" json:"price"`
	Location    string        `bson:"location" json:"location"`
	Category    bson.ObjectID `bson:"category" json:"category"`
	SubCategory string        `bson:"sub_category,omitempty" json:"subCategory,omitempty"`
	Images      []string      `bson:"images" json:"images"`
	Description string        `bson:"description" json:"description"`
	Seller      bson.ObjectID `bson:"seller" json:"seller"`
	Posted      time.Time     `bson:"posted" json:"posted"`
	Views       int64         `bson:"views" json:"views"`
	IsActive    bool          `bson:"is_active" json:"isActive"`
	IsSold      bool          `bson:"is_sold" json:"isSold"`
	// SoldTo records the buyer when the seller marks the ad sold; nil until then.
	SoldTo          *bson.ObjectID  `bson:"sold_to,omitempty" json:"soldTo,omitempty"`
	InterestedUsers []bson.ObjectID `bson:"interested_users,omitempty" json:"interestedUsers,omitempty"`
}

// ChatMessage maps to the chats collection: one message between two users
// about one ad. Messages are append-only; Seen is set once and never cleared.
type ChatMessage struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	AdID      bson.ObjectID `bson:"ad_id" json:"adId"`
	From      bson.ObjectID `bson:"from" json:"from"`
	To        bson.ObjectID `bson:"to" json:"to"`
	Message   string        `bson:"message" json:"message"`
	CreatedAt time.Time     `bson:"created_at" json:"createdAt"`
	// Seen is the time the recipient read the message; nil means unread.
	Seen *time.Time `bson:"seen,omitempty" json:"seen,omitempty"`
}

// AdFilter is the browse predicate. Zero values mean "no constraint".
type AdFilter struct {
	TitleQuery  string        // case-insensitive substring match on title
	Category    bson.ObjectID // resolved category reference
	SubCategory string        // exact match
	MaxPrice    *float64      // upper price bound, nil means unbounded
	ExcludeUser bson.ObjectID // viewer's own ads are hidden from browse
}

// AdPage is one page of browse results with pagination bookkeeping.
type AdPage struct {
	Ads        []*Ad `json:"ads"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	TotalPages int64 `json:"totalPages"`
}
