package apiclient

import (
	"context"
	"net/http"

	"github.com/clax-app/clax-client/internal/models"
)

type credentialsBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new account. The caller still has to log in afterwards.
func (c *Client) Register(ctx context.Context, username string, password string) error {
	return c.do(ctx, http.MethodPost, "/register", credentialsBody{Username: username, Password: password}, nil)
}

// Login authenticates and returns the expiries of the three credentials the
// server set as cookies. Persisting them is the caller's responsibility.
func (c *Client) Login(ctx context.Context, username string, password string) (models.TokenSet, error) {
	var tokenSet models.TokenSet
	err := c.do(ctx, http.MethodPost, LoginRoute, credentialsBody{Username: username, Password: password}, &tokenSet)
	return tokenSet, err
}

type logoutBody struct {
	AllOtherSessions bool `json:"allOtherSessions"`
}

// Logout ends the current session, or all other sessions when
// allOtherSessions is set in which case the current session stays valid.
func (c *Client) Logout(ctx context.Context, allOtherSessions bool) error {
	return c.do(ctx, http.MethodPost, "/logout", logoutBody{AllOtherSessions: allOtherSessions}, nil)
}

type passwordBody struct {
	Password string `json:"password"`
}

// ConfirmPassword re-confirms the user's password and returns the expiry of
// the freshly minted password-confirmation token.
func (c *Client) ConfirmPassword(ctx context.Context, password string) (models.ExpiringCredential, error) {
	var credential models.ExpiringCredential
	err := c.do(ctx, http.MethodPost, "/refresh/password-confirmation-token", passwordBody{Password: password}, &credential)
	return credential, err
}

// RefreshAccessToken renews the access token and returns its new expiry.
func (c *Client) RefreshAccessToken(ctx context.Context) (models.ExpiringCredential, error) {
	var credential models.ExpiringCredential
	err := c.do(ctx, http.MethodGet, RefreshAccessTokenRoute, nil, &credential)
	return credential, err
}

// RefreshRefreshToken renews the refresh token and returns its new expiry.
func (c *Client) RefreshRefreshToken(ctx context.Context) (models.ExpiringCredential, error) {
	var credential models.ExpiringCredential
	err := c.do(ctx, http.MethodGet, RefreshRefreshTokenRoute, nil, &credential)
	return credential, err
}
