package server

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"today/internal/config"
	"today/internal/server/store"
)

// Authenticator runs the Google OAuth handshake.
type Authenticator interface {
	// AuthCodeURL returns the consent page URL for state.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for the user's profile.
	Exchange(ctx context.Context, code string) (store.Profile, error)
}

// GoogleAuth implements Authenticator with Google's OAuth endpoints and the
// userinfo API.
type GoogleAuth struct {
	cfg *oauth2.Config
}

// NewGoogleAuth creates the authenticator for the registered client.
func NewGoogleAuth(c config.GoogleConfig) *GoogleAuth {
	return &GoogleAuth{
		cfg: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				goauth2.UserinfoProfileScope,
				goauth2.UserinfoEmailScope,
			},
		},
	}
}

// AuthCodeURL implements Authenticator.
func (g *GoogleAuth) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange implements Authenticator.
func (g *GoogleAuth) Exchange(ctx context.Context, code string) (store.Profile, error) {
	token, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return store.Profile{}, fmt.Errorf("failed to exchange code: %w", err)
	}

	svc, err := goauth2.NewService(ctx, option.WithTokenSource(g.cfg.TokenSource(ctx, token)))
	if err != nil {
		return store.Profile{}, fmt.Errorf("failed to create userinfo client: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return store.Profile{}, fmt.Errorf("failed to fetch profile: %w", err)
	}

	return store.Profile{
		GoogleID: info.Id,
		Email:    info.Email,
		Name:     info.Name,
		Picture:  info.Picture,
	}, nil
}

// loopbackRedirect validates a CLI redirect target: an http URL on localhost
// or 127.0.0.1 with an explicit port.
func loopbackRedirect(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect: %w", err)
	}
	if u.Scheme != "http" {
		return nil, fmt.Errorf("redirect must use http")
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil || port == "" {
		return nil, fmt.Errorf("redirect must name a port")
	}
	if host != "localhost" && host != "127.0.0.1" {
		return nil, fmt.Errorf("redirect must target the loopback interface")
	}
	if u.User != nil {
		return nil, fmt.Errorf("redirect must not carry credentials")
	}
	return u, nil
}
