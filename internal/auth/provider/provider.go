package provider

import (
	"context"

	"github.com/Onuiteshi/handyman-backend-sub001/internal/auth"
)

// OAuthProvider defines the contract every external identity provider
// must implement. Implementations return identity facts only and
// must not perform user creation, linking, or token issuance.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "google").
	Name() string

	// AuthCodeURL returns the OAuth authorization URL.
	// State and PKCE parameters are provided by the caller.
	AuthCodeURL(state string, codeChallenge string) string

	// ExchangeCode exchanges the authorization code for a provider
	// access token.
	ExchangeCode(
		ctx context.Context,
		code string,
		codeVerifier string,
	) (accessToken string, err error)

	// FetchProfile retrieves the normalized external profile for a
	// previously exchanged access token.
	FetchProfile(
		ctx context.Context,
		accessToken string,
	) (*auth.ExternalProfile, error)
}
