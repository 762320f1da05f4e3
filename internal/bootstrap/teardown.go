package bootstrap

import (
	"context"
	"log/slog"

	"github.com/clax-app/clax-client/internal/apiclient"
)

// Logout ends the current session, or all other sessions when
// allOtherSessions is set. Ending the current session also tears down all
// local session state: both renewal timers are cancelled and cleared, the
// user identity is dropped and all three persisted expiries are removed.
// Returns the normalized error messages on failure, nil on success.
func (s *Sequencer) Logout(ctx context.Context, allOtherSessions bool) []string {
	errs := apiclient.DoErr(ctx, func(ctx context.Context) error {
		return s.api.Logout(ctx, allOtherSessions)
	})
	if errs != nil {
		return errs
	}
	if !allOtherSessions {
		s.teardown(ctx)
	}
	return nil
}

// DeleteAccount permanently deletes the account and tears down all local
// session state, like a logout of the current session.
func (s *Sequencer) DeleteAccount(ctx context.Context) []string {
	errs := apiclient.DoErr(ctx, s.api.DeleteUser)
	if errs != nil {
		return errs
	}
	s.teardown(ctx)
	return nil
}

// teardown cancels the timers and waits for their loops to stop before
// clearing any shared state, so a stale timer can never write post-logout
// data.
func (s *Sequencer) teardown(ctx context.Context) {
	s.state.CancelAndClearTimers()
	s.state.ClearUser()
	if err := s.store.RemoveAll(ctx); err != nil {
		slog.Error("BOOTSTRAP", "message", "clearing the persisted expiries failed", "error", err)
	}
}
