package tokenrefresher

import (
	"testing"
	"time"

	"github.com/clax-app/clax-client/internal/expirystore"
	"github.com/clax-app/clax-client/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordConfirmationFresh(t *testing.T) {
	store := expirystore.NewInMemoryExpiryStore()
	now := time.Now()

	// No persisted confirmation at all.
	assert.False(t, PasswordConfirmationFresh(ctx, store, now))

	require.NoError(t, store.SetExpiry(ctx, models.PasswordConfirmationToken, now.Add(10*time.Minute)))
	assert.True(t, PasswordConfirmationFresh(ctx, store, now))

	// The same persisted value goes stale as "now" advances past it.
	assert.False(t, PasswordConfirmationFresh(ctx, store, now.Add(11*time.Minute)))

	require.NoError(t, store.SetExpiry(ctx, models.PasswordConfirmationToken, now.Add(-time.Second)))
	assert.False(t, PasswordConfirmationFresh(ctx, store, now))
}
