package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/Gokulm100/e4u-Backend/internal/advisory"
	"github.com/Gokulm100/e4u-Backend/internal/data"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// relatedAdLimit caps how many comparable ads feed the analytics prompt.
const relatedAdLimit = 10

// writeAdvisoryError distinguishes a malformed upstream reply (recoverable,
// reported as bad gateway) from our own failures.
func writeAdvisoryError(w http.ResponseWriter, err error, context string) {
	log.Printf("%s: %v", context, err)
	if errors.Is(err, advisory.ErrMalformedOutput) {
		writeError(w, http.StatusBadGateway, "AI service returned an unusable response")
		return
	}
	writeError(w, http.StatusBadGateway, "AI service unavailable")
}

type summarizeRequest struct {
	AdTitle     string `json:"adTitle"`
	Category    string `json:"category"`
	SubCategory string `json:"subCategory"`
	Description string `json:"description"`
}

// handleSummarizeAd extracts structured key-value facts from an ad
// description.
func (s *Server) handleSummarizeAd(w http.ResponseWriter, r *http.Request) {
	if s.advisory == nil {
		writeError(w, http.StatusServiceUnavailable, "AI features not configured")
		return
	}

	var req summarizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Description == "" || req.Category == "" {
		writeError(w, http.StatusBadRequest, "description and category are required")
		return
	}
	if len(req.Description) < 20 {
		writeError(w, http.StatusBadRequest, "description is too short for analysis")
		return
	}

	summary, err := s.advisory.SummarizeDescription(r.Context(), advisory.SummaryInput{
		Title:       req.AdTitle,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		Description: req.Description,
	})
	if err != nil {
		writeAdvisoryError(w, err, "summarize ad failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    summary,
	})
}

type analyticsRequest struct {
	AdID string `json:"adId"`
}

// handleProvideAnalytics assesses an ad and its conversations for fraud
// signals and price plausibility against comparable listings.
func (s *Server) handleProvideAnalytics(w http.ResponseWriter, r *http.Request) {
	if s.advisory == nil {
		writeError(w, http.StatusServiceUnavailable, "AI features not configured")
		return
	}

	var req analyticsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	adID, ok := parseObjectID(w, req.AdID, "ad id")
	if !ok {
		return
	}

	ad, err := s.ads.GetByID(r.Context(), adID)
	if err != nil {
		writeStoreError(w, err, "analytics ad lookup failed")
		return
	}

	categoryNames, err := s.categoryNames(r)
	if err != nil {
		writeStoreError(w, err, "analytics category lookup failed")
		return
	}

	mainSnapshot, err := s.adSnapshot(r, ad, categoryNames)
	if err != nil {
		writeStoreError(w, err, "analytics snapshot failed")
		return
	}

	// Comparable ads in the same category/sub-category, conversations
	// included, give the model a price and behavior baseline.
	related, err := s.ads.ListByCategory(r.Context(), ad.Category, ad.SubCategory, relatedAdLimit)
	if err != nil {
		writeStoreError(w, err, "analytics related ads failed")
		return
	}
	relatedSnapshots := make([]advisory.AdSnapshot, 0, len(related))
	for _, rel := range related {
		if rel.ID == ad.ID {
			continue
		}
		snapshot, err := s.adSnapshot(r, rel, categoryNames)
		if err != nil {
			writeStoreError(w, err, "analytics snapshot failed")
			return
		}
		relatedSnapshots = append(relatedSnapshots, *snapshot)
	}

	analysis, err := s.advisory.AnalyzeAd(r.Context(), *mainSnapshot, relatedSnapshots)
	if err != nil {
		writeAdvisoryError(w, err, "ad analytics failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    analysis,
	})
}

// categoryNames maps category ids to names; categories are small reference
// data so one listing covers every lookup.
func (s *Server) categoryNames(r *http.Request) (map[bson.ObjectID]string, error) {
	categories, err := s.categories.List(r.Context())
	if err != nil {
		return nil, err
	}
	names := make(map[bson.ObjectID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

// adSnapshot assembles the ad-plus-conversations view the analytics prompt
// is built from, with participant names resolved.
func (s *Server) adSnapshot(r *http.Request, ad *data.Ad, categoryNames map[bson.ObjectID]string) (*advisory.AdSnapshot, error) {
	chats, err := s.chats.ListByAdIDs(r.Context(), []bson.ObjectID{ad.ID})
	if err != nil {
		return nil, err
	}

	participantSet := make(map[bson.ObjectID]struct{})
	for _, msg := range chats {
		participantSet[msg.From] = struct{}{}
		participantSet[msg.To] = struct{}{}
	}
	participantIDs := make([]bson.ObjectID, 0, len(participantSet))
	for id := range participantSet {
		participantIDs = append(participantIDs, id)
	}
	participants, err := s.users.GetManyByIDs(r.Context(), participantIDs)
	if err != nil {
		return nil, err
	}

	name := func(id bson.ObjectID) string {
		if user, ok := participants[id]; ok {
			return user.Name
		}
		return "Unknown user"
	}

	snapshot := &advisory.AdSnapshot{
		Title:       ad.Title,
		Category:    categoryNames[ad.Category],
		SubCategory: ad.SubCategory,
		Description: ad.Description,
		Price:       ad.Price,
		Location:    ad.Location,
		Posted:      ad.Posted,
		Views:       ad.Views,
	}
	for _, msg := range chats {
		snapshot.Chats = append(snapshot.Chats, advisory.ChatLine{
			From:      name(msg.From),
			To:        name(msg.To),
			Message:   msg.Message,
			Timestamp: msg.CreatedAt,
		})
	}
	return snapshot, nil
}
