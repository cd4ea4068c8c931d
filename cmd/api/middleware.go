package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/Gokulm100/e4u-Backend/internal/auth"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// context key type for storing auth claims in context
type authContextKey struct{}

// claimsFromContext extracts auth claims from the context, if present.
func claimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	v := ctx.Value(authContextKey{})
	if v == nil {
		return nil, false
	}
	c, ok := v.(*auth.Claims)
	return c, ok
}

// viewerFromContext returns the authenticated user's ObjectID, or false
// when the request is anonymous or the claims are malformed.
func viewerFromContext(ctx context.Context) (bson.ObjectID, bool) {
	claims, ok := claimsFromContext(ctx)
	if !ok {
		return bson.ObjectID{}, false
	}
	id, err := claims.SubjectID()
	if err != nil {
		return bson.ObjectID{}, false
	}
	return id, true
}

// bearerToken pulls the token out of an Authorization header. The header
// must use the "Bearer " scheme; anything else yields an empty token.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}

// requireAuth rejects requests without a valid app token and attaches the
// claims to the request context for handlers.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		claims, err := s.jwt.VerifyToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), authContextKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// optionalAuth attaches claims when a valid token is present but lets
// anonymous requests through. Browse uses it to exclude the viewer's own
// ads without requiring login.
func (s *Server) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if claims, err := s.jwt.VerifyToken(token); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), authContextKey{}, claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}
