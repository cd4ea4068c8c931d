package main

import (
	"log"
	"net/http"
	"strconv"

	"github.com/Gokulm100/e4u-Backend/internal/data"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// maxUploadBytes bounds multipart ad submissions (images included).
const maxUploadBytes = 32 << 20

// adInputFromForm reads the caller-editable ad fields out of a parsed
// multipart form and resolves the category name to its reference.
func (s *Server) adInputFromForm(w http.ResponseWriter, r *http.Request) (data.AdInput, bool) {
	title := r.FormValue("title")
	location := r.FormValue("location")
	categoryName := r.FormValue("category")
	description := r.FormValue("description")
	if title == "" || location == "" || categoryName == "" || description == "" {
		writeError(w, http.StatusBadRequest, "title, location, category and description are required")
		return data.AdInput{}, false
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil || price < 0 {
		writeError(w, http.StatusBadRequest, "invalid price")
		return data.AdInput{}, false
	}

	category, err := s.categories.GetByName(r.Context(), categoryName)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown category")
		return data.AdInput{}, false
	}

	in := data.AdInput{
		Title:       title,
		Price:       price,
		Location:    location,
		Category:    category.ID,
		SubCategory: r.FormValue("subCategory"),
		Description: description,
	}

	// Store any uploaded images and record their locations; the upload
	// adapter owns the one well-defined location field.
	if r.MultipartForm != nil {
		if files := r.MultipartForm.File["images"]; len(files) > 0 {
			results, err := s.uploads.SaveAll(files)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return data.AdInput{}, false
			}
			for _, result := range results {
				in.Images = append(in.Images, result.Location)
			}
		}
	}

	return in, true
}

// handleCreateAd creates an ad from a multipart submission with image files.
func (s *Server) handleCreateAd(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth claims")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	in, ok := s.adInputFromForm(w, r)
	if !ok {
		return
	}

	ad, err := s.ads.Create(r.Context(), viewer, in)
	if err != nil {
		writeStoreError(w, err, "create ad failed")
		return
	}

	writeJSON(w, http.StatusCreated, ad)
}

// handleEditAd updates an ad's editable fields. Ownership is enforced by
// the store; the seller reference and lifecycle flags cannot be changed here.
func (s *Server) handleEditAd(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth claims")
		return
	}

	adID, ok := parseObjectID(w, chi.URLParam(r, "id"), "ad id")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	in, ok := s.adInputFromForm(w, r)
	if !ok {
		return
	}

	ad, err := s.ads.Update(r.Context(), adID, viewer, in)
	if err != nil {
		writeStoreError(w, err, "edit ad failed")
		return
	}

	writeJSON(w, http.StatusOK, ad)
}

type browseRequest struct {
	Page        int      `json:"page"`
	PageSize    int      `json:"pageSize"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	SubCategory string   `json:"subCategory"`
	MaxPrice    *float64 `json:"maxPrice"`
	// Search is an optional natural-language query translated into filters
	// by the advisory service; explicit fields above take precedence.
	Search string `json:"search"`
}

// handleBrowseAds returns one page of browsable ads. Authenticated viewers
// never see their own listings here.
func (s *Server) handleBrowseAds(w http.ResponseWriter, r *http.Request) {
	var req browseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	filter := data.AdFilter{
		TitleQuery:  req.Title,
		SubCategory: req.SubCategory,
		MaxPrice:    req.MaxPrice,
	}
	if viewer, ok := viewerFromContext(r.Context()); ok {
		filter.ExcludeUser = viewer
	}

	// A category the client named explicitly must exist.
	if req.Category != "" {
		category, err := s.categories.GetByName(r.Context(), req.Category)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown category")
			return
		}
		filter.Category = category.ID
	}

	// AI search is enrichment: when translation fails, or the model names a
	// category that does not exist, the browse proceeds with whatever
	// explicit filters the client supplied.
	if req.Search != "" && s.advisory != nil {
		if translated, err := s.translateSearch(r, req.Search); err != nil {
			log.Printf("ai search translation failed: %v", err)
		} else {
			if filter.TitleQuery == "" {
				filter.TitleQuery = translated.Title
			}
			if filter.Category.IsZero() && translated.Category != "" {
				category, err := s.categories.GetByName(r.Context(), translated.Category)
				if err != nil {
					log.Printf("ai search suggested unknown category %q, dropping it: %v", translated.Category, err)
				} else {
					filter.Category = category.ID
				}
			}
			if filter.SubCategory == "" {
				filter.SubCategory = translated.SubCategory
			}
			if filter.MaxPrice == nil {
				filter.MaxPrice = translated.MaxPrice
			}
		}
	}

	page, err := s.ads.ListBrowsable(r.Context(), filter, req.Page, req.PageSize)
	if err != nil {
		writeStoreError(w, err, "browse ads failed")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// translateSearch runs the natural-language query through the advisory
// service, constrained to the known category names.
func (s *Server) translateSearch(r *http.Request, query string) (*advisorySearchResult, error) {
	categories, err := s.categories.List(r.Context())
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}

	translated, err := s.advisory.TranslateSearch(r.Context(), query, names)
	if err != nil {
		return nil, err
	}
	return &advisorySearchResult{
		Title:       translated.Title,
		Category:    translated.Category,
		SubCategory: translated.SubCategory,
		MaxPrice:    translated.MaxPrice,
	}, nil
}

type advisorySearchResult struct {
	Title       string
	Category    string
	SubCategory string
	MaxPrice    *float64
}

// handleGetAd fetches a single ad by id. Sold and disabled ads stay fetchable.
func (s *Server) handleGetAd(w http.ResponseWriter, r *http.Request) {
	adID, ok := parseObjectID(w, chi.URLParam(r, "id"), "ad id")
	if !ok {
		return
	}

	ad, err := s.ads.GetByID(r.Context(), adID)
	if err != nil {
		writeStoreError(w, err, "get ad failed")
		return
	}

	writeJSON(w, http.StatusOK, ad)
}

type listUserAdsRequest struct {
	UserID   string `json:"userId"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// handleListUserAds returns one page of a seller's ads, including sold and
// disabled ones.
func (s *Server) handleListUserAds(w http.ResponseWriter, r *http.Request) {
	var req listUserAdsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	seller, ok := parseObjectID(w, req.UserID, "user id")
	if !ok {
		return
	}

	page, err := s.ads.ListBySeller(r.Context(), seller, req.Page, req.PageSize)
	if err != nil {
		writeStoreError(w, err, "list user ads failed")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// handleListCategories returns the active ad categories.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.categories.List(r.Context())
	if err != nil {
		writeStoreError(w, err, "list categories failed")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

type markSoldRequest struct {
	AdID   string `json:"adId"`
	SoldTo string `json:"soldTo"`
}

// handleMarkAdAsSold transitions an ad to sold. Idempotent; owner-only.
func (s *Server) handleMarkAdAsSold(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth claims")
		return
	}

	var req markSoldRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	adID, ok := parseObjectID(w, req.AdID, "ad id")
	if !ok {
		return
	}

	var soldTo *bson.ObjectID
	if req.SoldTo != "" {
		buyer, ok := parseObjectID(w, req.SoldTo, "buyer id")
		if !ok {
			return
		}
		soldTo = &buyer
	}

	ad, err := s.ads.MarkSold(r.Context(), adID, viewer, soldTo)
	if err != nil {
		writeStoreError(w, err, "mark sold failed")
		return
	}

	writeJSON(w, http.StatusOK, ad)
}

type adIDRequest struct {
	AdID string `json:"adId"`
}

// handleSetAdActive backs both disableAd and enableAd.
func (s *Server) handleSetAdActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, ok := viewerFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing auth claims")
			return
		}

		var req adIDRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		adID, ok := parseObjectID(w, req.AdID, "ad id")
		if !ok {
			return
		}

		ad, err := s.ads.SetActive(r.Context(), adID, viewer, active)
		if err != nil {
			writeStoreError(w, err, "set ad active failed")
			return
		}

		writeJSON(w, http.StatusOK, ad)
	}
}

// handleDeleteAd removes an ad permanently. Owner-only. Existing chat
// threads stay in the collection and simply stop appearing in inboxes.
func (s *Server) handleDeleteAd(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth claims")
		return
	}

	adID, ok := parseObjectID(w, chi.URLParam(r, "id"), "ad id")
	if !ok {
		return
	}

	if err := s.ads.Delete(r.Context(), adID, viewer); err != nil {
		writeStoreError(w, err, "delete ad failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "ad deleted"})
}

// handleIncrementViews bumps an ad's view counter.
func (s *Server) handleIncrementViews(w http.ResponseWriter, r *http.Request) {
	var req adIDRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	adID, ok := parseObjectID(w, req.AdID, "ad id")
	if !ok {
		return
	}

	if err := s.ads.IncrementViews(r.Context(), adID); err != nil {
		writeStoreError(w, err, "increment views failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "view recorded"})
}
