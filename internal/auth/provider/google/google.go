package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/Onuiteshi/handyman-backend-sub001/internal/auth"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/logger"
)

const providerName = "google"

type Provider struct {
	oauthConfig  *oauth2.Config
	oidcProvider *oidc.Provider
}

func New(
	ctx context.Context,
	clientID string,
	clientSecret string,
	redirectURL string,
) (*Provider, error) {

	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	oidcProvider, err := oidc.NewProvider(ctx, "https://accounts.google.com")
	if err != nil {
		return nil, fmt.Errorf("failed to init google oidc provider: %w", err)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     oidcProvider.Endpoint(),
		Scopes: []string{
			oidc.ScopeOpenID,
			"profile",
			"email",
		},
	}

	return &Provider{
		oauthConfig:  oauthCfg,
		oidcProvider: oidcProvider,
	}, nil
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

// AuthCodeURL builds the OAuth authorization URL with PKCE parameters.
func (p *Provider) AuthCodeURL(state string, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

func (p *Provider) ExchangeCode(
	ctx context.Context,
	code string,
	codeVerifier string,
) (string, error) {

	token, err := p.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return "", fmt.Errorf("google token exchange failed: %w", err)
	}

	if token.AccessToken == "" {
		return "", errors.New("google did not return an access token")
	}

	return token.AccessToken, nil
}

func (p *Provider) FetchProfile(
	ctx context.Context,
	accessToken string,
) (*auth.ExternalProfile, error) {

	userInfo, err := p.oidcProvider.UserInfo(
		ctx,
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}),
	)
	if err != nil {
		return nil, fmt.Errorf("google userinfo fetch failed: %w", err)
	}

	var claims struct {
		Subject string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}

	if err := userInfo.Claims(&claims); err != nil {
		return nil, fmt.Errorf("google userinfo claims parse failed: %w", err)
	}

	if claims.Subject == "" {
		return nil, errors.New("google userinfo missing subject")
	}

	logger.Info("google profile fetched", map[string]any{
		"subject_present": claims.Subject != "",
		"email_present":   claims.Email != "",
	})

	return &auth.ExternalProfile{
		Provider: providerName,
		ID:       claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		Picture:  claims.Picture,
	}, nil
}
