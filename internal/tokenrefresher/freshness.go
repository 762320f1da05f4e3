package tokenrefresher

import (
	"context"
	"time"

	"github.com/clax-app/clax-client/internal/expirystore"
	"github.com/clax-app/clax-client/internal/models"
)

// PasswordConfirmationFresh reports whether the persisted expiry of the
// password-confirmation token is still in the future. The confirmation token
// has no renewal timer, consumers re-evaluate this whenever "now" may have
// advanced or the persisted value changed. Sensitive actions (profile
// mutations, deleting the account) are gated on it.
func PasswordConfirmationFresh(ctx context.Context, store expirystore.ExpiryStore, now time.Time) bool {
	expiresAt, err := store.GetExpiry(ctx, models.PasswordConfirmationToken)
	if err != nil {
		return false
	}
	return expiresAt.After(now)
}
