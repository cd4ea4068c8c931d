package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Gokulm100/e4u-Backend/internal/middleware"
)

// routes wires the full HTTP surface. Registration, login and the AI
// endpoints sit behind the per-client rate limiter.
func (s *Server) routes(limiter *middleware.LimiterStore) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.StripSlashes)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Uploaded ad images and avatars are served straight off disk.
	if s.uploads != nil {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploads.Dir())))
		r.Get("/uploads/*", fileServer.ServeHTTP)
	}

	r.Route("/api/users", func(r chi.Router) {
		r.With(middleware.RateLimit(limiter)).Post("/register", s.handleRegister)
		r.With(middleware.RateLimit(limiter)).Post("/login", s.handleLogin)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/registerFcmToken", s.handleRegisterFCMToken)
			r.Post("/getUserMessages", s.handleGetUserMessages)
		})
	})

	r.Route("/api/ads", func(r chi.Router) {
		r.With(s.optionalAuth).Post("/", s.handleBrowseAds)
		r.Get("/categories", s.handleListCategories)
		r.Post("/listUserAds", s.handleListUserAds)
		r.Get("/chat", s.handleGetThread)
		r.Post("/incrementViews", s.handleIncrementViews)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/postAdd", s.handleCreateAd)
			r.Put("/edit/{id}", s.handleEditAd)
			r.Post("/chat", s.handleSendChat)
			r.Post("/getSellingMessages", s.handleSellingMessages)
			r.Post("/getBuyingMessages", s.handleBuyingMessages)
			r.Post("/markMessagesAsSeen", s.handleMarkMessagesAsSeen)
			r.Post("/markAdAsSold", s.handleMarkAdAsSold)
			r.Post("/disableAd", s.handleSetAdActive(false))
			r.Post("/enableAd", s.handleSetAdActive(true))
			r.Delete("/{id}", s.handleDeleteAd)
		})

		// Registered last so the named routes above win over the wildcard.
		r.Get("/{id}", s.handleGetAd)
	})

	r.Route("/api/ai", func(r chi.Router) {
		r.Use(middleware.RateLimit(limiter))
		r.Post("/summarizeAdUsingAi", s.handleSummarizeAd)
		r.With(s.requireAuth).Post("/provideAiAnalytics", s.handleProvideAnalytics)
	})

	return r
}
