package auth

import (
	"context"
	"fmt"

	firebaseauth "firebase.google.com/go/v4/auth"
)

// Identity is what the external identity provider vouches for: a stable
// subject id plus the profile fields the provider shares.
type Identity struct {
	Subject string // provider-scoped stable user id
	Name    string
	Email   string
	Picture string // avatar URL, may be empty
}

// IdentityVerifier validates an opaque identity token from the client and
// returns the identity it asserts.
type IdentityVerifier interface {
	VerifyIdentityToken(ctx context.Context, idToken string) (*Identity, error)
}

// FirebaseVerifier verifies Google identity tokens through the Firebase
// Auth service.
type FirebaseVerifier struct {
	client *firebaseauth.Client
}

// NewFirebaseVerifier returns a verifier backed by the given Firebase auth client.
func NewFirebaseVerifier(client *firebaseauth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

// VerifyIdentityToken checks the token's signature and expiry with the
// provider and extracts the profile claims.
func (v *FirebaseVerifier) VerifyIdentityToken(ctx context.Context, idToken string) (*Identity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("identity token rejected: %w", err)
	}

	identity := &Identity{Subject: token.UID}

	// Profile claims are optional; a missing one just yields an empty field
	if name, ok := token.Claims["name"].(string); ok {
		identity.Name = name
	}
	if email, ok := token.Claims["email"].(string); ok {
		identity.Email = email
	}
	if picture, ok := token.Claims["picture"].(string); ok {
		identity.Picture = picture
	}

	return identity, nil
}
