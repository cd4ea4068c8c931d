package main

import (
	"log"
	"net/http"
	"time"

	"github.com/Gokulm100/e4u-Backend/internal/auth"
	"github.com/Gokulm100/e4u-Backend/internal/data"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister creates an email/password account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("failed to hash password: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user, err := s.users.CreateUser(r.Context(), req.Name, req.Email, hashed)
	if err != nil {
		writeStoreError(w, err, "create user failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered",
		"user":    user,
	})
}

type loginRequest struct {
	// Token is a Google identity token; when present the login is
	// identity-provider based and Email/Password are ignored.
	Token    string `json:"token"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      *data.User `json:"user"`
}

// handleLogin authenticates either through the external identity provider
// (Google token) or with email/password, and issues an app JWT.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var user *data.User
	switch {
	case req.Token != "":
		if s.identity == nil {
			writeError(w, http.StatusServiceUnavailable, "identity login not configured")
			return
		}
		identity, err := s.identity.VerifyIdentityToken(r.Context(), req.Token)
		if err != nil {
			log.Printf("identity login rejected: %v", err)
			writeError(w, http.StatusUnauthorized, "invalid identity token")
			return
		}
		// First login creates the account; repeat logins refresh profile
		// data and the last-login timestamp
		user, err = s.users.UpsertGoogleUser(r.Context(), identity.Subject, identity.Name, identity.Email, identity.Picture)
		if err != nil {
			writeStoreError(w, err, "google login failed")
			return
		}

	case req.Email != "" && req.Password != "":
		found, err := s.users.GetUserByEmail(r.Context(), req.Email)
		if err != nil {
			// Don't leak whether the account exists
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err := auth.CheckPassword(found.Password, req.Password); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		user = found

	default:
		writeError(w, http.StatusBadRequest, "token or email and password are required")
		return
	}

	token, expiresAt, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		log.Printf("failed to generate token: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt, User: user})
}

type fcmTokenRequest struct {
	Token string `json:"token"`
}

// handleRegisterFCMToken stores the caller's push-notification device token.
func (s *Server) handleRegisterFCMToken(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth claims")
		return
	}

	var req fcmTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	if err := s.users.SetFCMToken(r.Context(), viewer, req.Token); err != nil {
		writeStoreError(w, err, "register fcm token failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Token registered"})
}

// handleGetUserMessages reports the caller's unread message count across
// all conversations.
func (s *Server) handleGetUserMessages(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth claims")
		return
	}

	count, err := s.inbox.UnreadCount(r.Context(), viewer)
	if err != nil {
		writeStoreError(w, err, "unread count failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"unreadCount": count})
}
