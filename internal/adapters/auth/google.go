package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"eventregistration/internal/domain"
)

// GoogleConfig configures the Google sign-in flow. Endpoint and UserInfoEndpoint
// default to Google's production endpoints when left empty.
type GoogleConfig struct {
	ClientID         string
	ClientSecret     string
	RedirectURL      string
	Endpoint         oauth2.Endpoint
	UserInfoEndpoint string
}

// Google implements domain.IdentityProvider with the OAuth 2.0 authorization code flow.
type Google struct {
	oauth            *oauth2.Config
	userInfoEndpoint string
}

func NewGoogle(cfg GoogleConfig) *Google {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" && endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes: []string{
				googleoauth2.OpenIDScope,
				googleoauth2.UserinfoEmailScope,
				googleoauth2.UserinfoProfileScope,
			},
		},
		userInfoEndpoint: cfg.UserInfoEndpoint,
	}
}

func (g *Google) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange redeems the callback code and reads the signed-in user's profile.
// Unverified Google addresses are rejected.
func (g *Google) Exchange(ctx context.Context, code string) (*domain.Identity, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", domain.ErrUnauthorized)
	}
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchange code: %v", domain.ErrUnauthorized, err)
	}

	opts := []option.ClientOption{option.WithHTTPClient(g.oauth.Client(ctx, tok))}
	if g.userInfoEndpoint != "" {
		opts = append(opts, option.WithEndpoint(g.userInfoEndpoint))
	}
	svc, err := googleoauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create userinfo client: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("%w: google account has no email", domain.ErrUnauthorized)
	}
	if info.VerifiedEmail != nil && !*info.VerifiedEmail {
		return nil, fmt.Errorf("%w: google email %s is not verified", domain.ErrUnauthorized, info.Email)
	}
	identity := domain.NewIdentity(info.Name, info.Email)
	return &identity, nil
}
