package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Gokulm100/e4u-Backend/internal/data"
	"github.com/Gokulm100/e4u-Backend/internal/inbox"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// writeJSON serializes v with the given status. Encoding failures after the
// header is written can only be logged.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// writeError sends the uniform error body every endpoint uses.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeStoreError maps data-layer and validation errors onto HTTP statuses.
// Anything unrecognized is a server failure: logged with context, reported
// generically.
func writeStoreError(w http.ResponseWriter, err error, context string) {
	switch {
	case errors.Is(err, data.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, data.ErrDuplicate):
		writeError(w, http.StatusBadRequest, "already exists")
	case errors.Is(err, data.ErrNotOwner):
		writeError(w, http.StatusForbidden, "not authorized")
	case errors.Is(err, inbox.ErrSelfRead):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("%s: %v", context, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads the request body into v. An empty body is an error:
// every JSON endpoint has at least one required field.
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// parseObjectID converts a client-supplied id, reporting a client error on
// malformed input.
func parseObjectID(w http.ResponseWriter, raw, field string) (bson.ObjectID, bool) {
	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+field)
		return bson.ObjectID{}, false
	}
	return id, true
}
