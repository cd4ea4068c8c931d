package main

import (
	"net/http"
)

type sendChatRequest struct {
	AdID    string `json:"adId"`
	To      string `json:"to"`
	Message string `json:"message"`
}

// handleSendChat appends a chat message from the authenticated user. The
// inbox service handles the interested-user side effect and the background
// push notification.
func (s *Server) handleSendChat(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth claims")
		return
	}

	var req sendChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	adID, ok := parseObjectID(w, req.AdID, "ad id")
	if !ok {
		return
	}
	to, ok := parseObjectID(w, req.To, "recipient id")
	if !ok {
		return
	}
	if to == viewer {
		writeError(w, http.StatusBadRequest, "cannot message yourself")
		return
	}

	msg, err := s.inbox.RecordChat(r.Context(), adID, viewer, to, req.Message)
	if err != nil {
		writeStoreError(w, err, "send chat failed")
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// handleGetThread returns the full conversation between two users about
// one ad, oldest first. Query params: adId, user1, user2.
func (s *Server) handleGetThread(w http.ResponseWriter, r *http.Request) {
	adID, ok := parseObjectID(w, r.URL.Query().Get("adId"), "ad id")
	if !ok {
		return
	}
	user1, ok := parseObjectID(w, r.URL.Query().Get("user1"), "user1 id")
	if !ok {
		return
	}
	user2, ok := parseObjectID(w, r.URL.Query().Get("user2"), "user2 id")
	if !ok {
		return
	}

	messages, err := s.chats.Thread(r.Context(), adID, user1, user2)
	if err != nil {
		writeStoreError(w, err, "get thread failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"messages": messages,
		"count":    len(messages),
	})
}

// handleSellingMessages returns the caller's seller-view inbox: one row
// per counterparty per owned ad, most recent conversation first.
func (s *Server) handleSellingMessages(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth claims")
		return
	}

	rows, err := s.inbox.SellingInbox(r.Context(), viewer)
	if err != nil {
		writeStoreError(w, err, "selling inbox failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"messages": rows,
		"count":    len(rows),
	})
}

// handleBuyingMessages returns the caller's buyer-view inbox: conversations
// on ads owned by others.
func (s *Server) handleBuyingMessages(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth claims")
		return
	}

	rows, err := s.inbox.BuyingInbox(r.Context(), viewer)
	if err != nil {
		writeStoreError(w, err, "buying inbox failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"messages": rows,
		"count":    len(rows),
	})
}

type markSeenRequest struct {
	AdID   string `json:"adId"`
	Sender string `json:"sender"`
}

// handleMarkMessagesAsSeen stamps every unread message from sender to the
// caller about the ad. Idempotent; a repeat call updates zero messages.
func (s *Server) handleMarkMessagesAsSeen(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth claims")
		return
	}

	var req markSeenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	adID, ok := parseObjectID(w, req.AdID, "ad id")
	if !ok {
		return
	}
	sender, ok := parseObjectID(w, req.Sender, "sender id")
	if !ok {
		return
	}

	updated, err := s.inbox.MarkThreadSeen(r.Context(), adID, viewer, sender)
	if err != nil {
		writeStoreError(w, err, "mark seen failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}
