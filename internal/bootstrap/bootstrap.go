// Package bootstrap runs the startup and teardown sequences of the client:
// it determines the authentication state once at startup, renews any token
// that is already due and arms the renewal timers, and it tears the whole
// session state down again on logout or account deletion.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/clax-app/clax-client/internal/apiclient"
	"github.com/clax-app/clax-client/internal/appstate"
	"github.com/clax-app/clax-client/internal/expirystore"
	"github.com/clax-app/clax-client/internal/models"
)

// TokenRenewer is the part of the token refresher the sequencer uses.
type TokenRenewer interface {
	RefreshAccessToken(ctx context.Context) (time.Time, bool)
	RefreshRefreshToken(ctx context.Context) (time.Time, bool)
}

// TimerScheduler is the part of the renewal scheduler the sequencer uses.
type TimerScheduler interface {
	Arm(kind models.TokenKind, initialDelay time.Duration) *appstate.TimerHandle
	Threshold(kind models.TokenKind) time.Duration
}

type Sequencer struct {
	api       *apiclient.Client
	store     expirystore.ExpiryStore
	state     *appstate.State
	renewer   TokenRenewer
	scheduler TimerScheduler
}

type SequencerOption func(*Sequencer) error

func WithAPIClient(api *apiclient.Client) SequencerOption {
	return func(s *Sequencer) error {
		s.api = api
		return nil
	}
}

func WithExpiryStore(store expirystore.ExpiryStore) SequencerOption {
	return func(s *Sequencer) error {
		s.store = store
		return nil
	}
}

func WithState(state *appstate.State) SequencerOption {
	return func(s *Sequencer) error {
		s.state = state
		return nil
	}
}

func WithRenewer(renewer TokenRenewer) SequencerOption {
	return func(s *Sequencer) error {
		s.renewer = renewer
		return nil
	}
}

func WithScheduler(scheduler TimerScheduler) SequencerOption {
	return func(s *Sequencer) error {
		s.scheduler = scheduler
		return nil
	}
}

func NewSequencer(options ...SequencerOption) (*Sequencer, error) {
	s := Sequencer{}
	for _, opt := range options {
		err := opt(&s)
		if err != nil {
			return nil, err
		}
	}
	if s.api == nil {
		return nil, fmt.Errorf("API client not initialized")
	}
	if s.store == nil {
		return nil, fmt.Errorf("expiry store not initialized")
	}
	if s.state == nil {
		return nil, fmt.Errorf("application state not initialized")
	}
	if s.renewer == nil {
		return nil, fmt.Errorf("token renewer not initialized")
	}
	if s.scheduler == nil {
		return nil, fmt.Errorf("timer scheduler not initialized")
	}
	return &s, nil
}

// Run fetches the current user's identity and, when authenticated, stores it
// in the application state, renews any token that is already within its
// refresh threshold and arms both renewal timers. When not authenticated it
// returns false without touching any state.
func (s *Sequencer) Run(ctx context.Context) bool {
	outcome := apiclient.Do(ctx, s.api.CurrentUser)
	if outcome.Result == nil {
		return false
	}
	s.state.SetUser(*outcome.Result)

	s.armFromStore(ctx, models.AccessToken)
	s.armFromStore(ctx, models.RefreshToken)
	return true
}

func (s *Sequencer) armFromStore(ctx context.Context, kind models.TokenKind) {
	threshold := s.scheduler.Threshold(kind)
	// An absent or unreadable expiry is the zero time, which counts as
	// already due.
	expiresAt, _ := s.store.GetExpiry(ctx, kind)
	if time.Until(expiresAt) <= threshold {
		renewedExpiresAt, ok := s.renew(ctx, kind)
		if ok {
			expiresAt = renewedExpiresAt
		} else {
			// Force an immediate first fire of the timer below.
			expiresAt = time.UnixMilli(0)
		}
	}
	s.scheduler.Arm(kind, time.Until(expiresAt)-threshold)
}

func (s *Sequencer) renew(ctx context.Context, kind models.TokenKind) (time.Time, bool) {
	if kind == models.RefreshToken {
		return s.renewer.RefreshRefreshToken(ctx)
	}
	return s.renewer.RefreshAccessToken(ctx)
}
