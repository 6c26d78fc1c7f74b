package oauth

import (
	"context"
	"fmt"
	"time"

	"dispatch-console/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// MailboxOAuth holds the read-only Gmail credentials of the bookings mailbox
type MailboxOAuth struct {
	config       *oauth2.Config
	refreshToken string
	logger       logger.Logger
}

// NewMailboxOAuth creates a new mailbox OAuth handler. redirectURL may be
// empty when only a refresh token is used.
func NewMailboxOAuth(clientID, clientSecret, refreshToken, redirectURL string, logger logger.Logger) *MailboxOAuth {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}

	return &MailboxOAuth{
		config:       config,
		refreshToken: refreshToken,
		logger:       logger,
	}
}

// TokenSource returns a refreshing token source for the Gmail API
func (o *MailboxOAuth) TokenSource(ctx context.Context) oauth2.TokenSource {
	token := &oauth2.Token{
		RefreshToken: o.refreshToken,
		Expiry:       time.Now(), // force refresh
	}
	return o.config.TokenSource(ctx, token)
}

// AuthURL is the consent URL for obtaining a refresh token
func (o *MailboxOAuth) AuthURL(state string) string {
	return o.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token
func (o *MailboxOAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	if token.RefreshToken == "" {
		return nil, fmt.Errorf("no refresh token returned; revoke the app's access and retry")
	}
	o.logger.Info("Refresh token obtained", "expiry", token.Expiry)
	return token, nil
}
