// Package auth verifies identity-provider tokens for provider sign-ins.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/launchhub-app/apiserver/config"
	"google.golang.org/api/option"
)

// ErrUnverifiedIdentity is returned when a provider token cannot be
// verified or carries no email.
var ErrUnverifiedIdentity = errors.New("unverified identity")

// Identity is the profile extracted from a verified provider token.
type Identity struct {
	Email    string
	Name     string
	PhotoURL string
}

// ProviderVerifier verifies Firebase ID tokens issued to the web client
// during provider (Google popup) and email/password sign-ins.
type ProviderVerifier struct {
	client *fbauth.Client
}

// NewProviderVerifier constructs a verifier from config.
func NewProviderVerifier(ctx context.Context, cfg config.FirebaseConfig) (*ProviderVerifier, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errors.New("firebase project id is required")
	}

	var opts []option.ClientOption
	if strings.TrimSpace(cfg.CredentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth client: %w", err)
	}

	return &ProviderVerifier{client: client}, nil
}

// Verify checks the ID token against the provider and extracts the
// identity the platform keys accounts on.
func (v *ProviderVerifier) Verify(ctx context.Context, idToken string) (Identity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnverifiedIdentity, err)
	}

	identity := Identity{
		Email:    claimString(token.Claims, "email"),
		Name:     claimString(token.Claims, "name"),
		PhotoURL: claimString(token.Claims, "picture"),
	}
	if identity.Email == "" {
		return Identity{}, fmt.Errorf("%w: token carries no email", ErrUnverifiedIdentity)
	}
	return identity, nil
}

func claimString(claims map[string]any, key string) string {
	if value, ok := claims[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}
