// Package expirystore persists the expiry timestamps of the three Clax
// credentials under well-known keys. Values are saved exactly as the server
// reported them: millisecond unix timestamps rendered as strings.
package expirystore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/clax-app/clax-client/internal/models"
)

// ExpiryStore is the persistence contract for token expiry timestamps.
// A missing value is reported as claxerrors.ErrExpiryNotFound.
type ExpiryStore interface {
	GetExpiry(ctx context.Context, kind models.TokenKind) (time.Time, error)
	SetExpiry(ctx context.Context, kind models.TokenKind, expiresAt time.Time) error
	RemoveExpiry(ctx context.Context, kind models.TokenKind) error
	RemoveAll(ctx context.Context) error
}

// SaveTokenSet persists the expiries of all three credentials returned by a
// successful login.
func SaveTokenSet(ctx context.Context, store ExpiryStore, set models.TokenSet) error {
	err := store.SetExpiry(ctx, models.AccessToken, set.AccessToken.ExpiryTime())
	if err != nil {
		return err
	}
	err = store.SetExpiry(ctx, models.RefreshToken, set.RefreshToken.ExpiryTime())
	if err != nil {
		return err
	}
	return store.SetExpiry(ctx, models.PasswordConfirmationToken, set.PasswordConfirmationToken.ExpiryTime())
}

func formatExpiry(expiresAt time.Time) string {
	return strconv.FormatInt(expiresAt.UnixMilli(), 10)
}

func parseExpiry(value string) (time.Time, error) {
	millis, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse expiry timestamp %q: %w", value, err)
	}
	return time.UnixMilli(millis), nil
}
