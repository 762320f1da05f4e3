package apiclient

import (
	"context"
	"net/http"

	"github.com/clax-app/clax-client/internal/models"
)

// CurrentUser fetches the identity of the authenticated user. An
// unauthenticated call fails with a 401 APIError.
func (c *Client) CurrentUser(ctx context.Context) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodGet, "/user", nil, &user)
	return user, err
}

// UpdateUsername changes the username. The server requires a fresh
// password-confirmation token.
func (c *Client) UpdateUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodPatch, "/user", map[string]string{"username": username}, &user)
	return user, err
}

// UpdatePassword changes the password. The server requires a fresh
// password-confirmation token.
func (c *Client) UpdatePassword(ctx context.Context, password string) error {
	return c.do(ctx, http.MethodPatch, "/user", map[string]string{"password": password}, nil)
}

// DeleteUser permanently deletes the account of the authenticated user.
func (c *Client) DeleteUser(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/user", nil, nil)
}
