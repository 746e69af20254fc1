// Package googleauth builds the OAuth2 token source shared by the Gmail,
// Sheets and Docs clients.
package googleauth

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"opportunity-sync-go/internal/config"
)

// TokenSource returns a refreshing token source for the configured
// refresh token and the given scopes.
func TokenSource(ctx context.Context, cfg *config.GoogleConfig, scopes ...string) oauth2.TokenSource {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}

	token := &oauth2.Token{
		RefreshToken: cfg.RefreshToken,
	}

	return oauthConfig.TokenSource(ctx, token)
}
