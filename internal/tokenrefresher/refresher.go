// Package tokenrefresher keeps the Clax credentials fresh. It performs the
// renewal calls, runs the proactive per-token renewal timers and recovers
// from 401 responses by renewing the access token and replaying the failed
// request once.
package tokenrefresher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clax-app/clax-client/internal/apiclient"
	"github.com/clax-app/clax-client/internal/expirystore"
	"github.com/clax-app/clax-client/internal/models"
)

// Refresher performs the two token renewal operations. On success the new
// expiry is persisted and returned, on failure the store is left untouched
// and the caller decides the retry policy. Renewals are idempotent and safe
// to trigger concurrently, the most recent successful renewal wins.
type Refresher struct {
	api   *apiclient.Client
	store expirystore.ExpiryStore
}

type RefresherOption func(*Refresher) error

func WithAPIClient(api *apiclient.Client) RefresherOption {
	return func(r *Refresher) error {
		r.api = api
		return nil
	}
}

func WithExpiryStore(store expirystore.ExpiryStore) RefresherOption {
	return func(r *Refresher) error {
		r.store = store
		return nil
	}
}

func NewRefresher(options ...RefresherOption) (*Refresher, error) {
	r := Refresher{}
	for _, opt := range options {
		err := opt(&r)
		if err != nil {
			return nil, err
		}
	}
	if r.api == nil {
		return nil, fmt.Errorf("API client not initialized")
	}
	if r.store == nil {
		return nil, fmt.Errorf("expiry store not initialized")
	}
	return &r, nil
}

func (r *Refresher) RefreshAccessToken(ctx context.Context) (time.Time, bool) {
	return r.refresh(ctx, models.AccessToken, r.api.RefreshAccessToken)
}

func (r *Refresher) RefreshRefreshToken(ctx context.Context) (time.Time, bool) {
	return r.refresh(ctx, models.RefreshToken, r.api.RefreshRefreshToken)
}

func (r *Refresher) refresh(
	ctx context.Context,
	kind models.TokenKind,
	call func(ctx context.Context) (models.ExpiringCredential, error),
) (time.Time, bool) {
	outcome := apiclient.Do(ctx, call)
	if outcome.Result == nil {
		slog.Debug("TOKEN REFRESHER", "message", "renewal failed", "kind", kind, "errors", outcome.Errors)
		return time.Time{}, false
	}
	expiresAt := outcome.Result.ExpiryTime()
	if err := r.store.SetExpiry(ctx, kind, expiresAt); err != nil {
		slog.Error("TOKEN REFRESHER", "message", "persisting the renewed expiry failed", "kind", kind, "error", err)
		return time.Time{}, false
	}
	return expiresAt, true
}
