package tokenrefresher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/clax-app/clax-client/internal/appstate"
	"github.com/clax-app/clax-client/internal/models"
)

// Scheduler owns one self-rescheduling renewal timer per proactively renewed
// token kind (access and refresh). Each armed timer fires a gocron one-shot
// job that renews its token ahead of expiry and reschedules the next one-shot
// from the new expiry, or from a fixed retry interval when the renewal fails.
// A timer only ever stops when its handle is cancelled.
type Scheduler struct {
	state            *appstate.State
	refresher        *Refresher
	accessThreshold  time.Duration
	refreshThreshold time.Duration
	retryInterval    time.Duration
}

type SchedulerOption func(*Scheduler) error

func WithState(state *appstate.State) SchedulerOption {
	return func(s *Scheduler) error {
		s.state = state
		return nil
	}
}

func WithRefresher(refresher *Refresher) SchedulerOption {
	return func(s *Scheduler) error {
		s.refresher = refresher
		return nil
	}
}

func WithThresholds(accessThreshold time.Duration, refreshThreshold time.Duration) SchedulerOption {
	return func(s *Scheduler) error {
		s.accessThreshold = accessThreshold
		s.refreshThreshold = refreshThreshold
		return nil
	}
}

func WithRetryInterval(retryInterval time.Duration) SchedulerOption {
	return func(s *Scheduler) error {
		s.retryInterval = retryInterval
		return nil
	}
}

func NewScheduler(options ...SchedulerOption) (*Scheduler, error) {
	s := Scheduler{}
	for _, opt := range options {
		err := opt(&s)
		if err != nil {
			return nil, err
		}
	}
	if s.state == nil {
		return nil, fmt.Errorf("application state not initialized")
	}
	if s.refresher == nil {
		return nil, fmt.Errorf("refresher not initialized")
	}
	if s.accessThreshold <= 0 || s.refreshThreshold <= 0 {
		return nil, fmt.Errorf(
			"invalid refresh thresholds (%s, %s)",
			s.accessThreshold,
			s.refreshThreshold,
		)
	}
	if s.retryInterval <= 0 {
		return nil, fmt.Errorf("invalid retry interval (%s)", s.retryInterval)
	}
	return &s, nil
}

// Threshold returns the renewal lead time for a token kind.
func (s *Scheduler) Threshold(kind models.TokenKind) time.Duration {
	if kind == models.RefreshToken {
		return s.refreshThreshold
	}
	return s.accessThreshold
}

// Arm schedules the renewal loop for a token kind to first fire after
// initialDelay (zero or negative means fire right away). The new timer
// handle supersedes any previously stored handle for the kind but does not
// cancel it, callers that want the old timer stopped must cancel it first.
func (s *Scheduler) Arm(kind models.TokenKind, initialDelay time.Duration) *appstate.TimerHandle {
	if kind != models.AccessToken && kind != models.RefreshToken {
		slog.Error("TOKEN SCHEDULER", "message", "cannot arm a timer for this token kind", "kind", kind)
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	handle := appstate.NewTimerHandle(cancel)
	s.state.SetTimer(kind, handle)
	go s.run(ctx, kind, initialDelay, handle)
	return handle
}

// Rearm cancels the current timer for the kind, if any, and arms a new one.
func (s *Scheduler) Rearm(kind models.TokenKind, initialDelay time.Duration) *appstate.TimerHandle {
	if current := s.state.Timer(kind); current != nil {
		current.Cancel()
	}
	return s.Arm(kind, initialDelay)
}

func (s *Scheduler) run(ctx context.Context, kind models.TokenKind, delay time.Duration, handle *appstate.TimerHandle) {
	defer handle.MarkDone()
	jobs := gocron.NewScheduler(time.UTC)
	jobs.StartAsync()
	defer jobs.Stop()
	for {
		fired := make(chan struct{}, 1)
		// The tight Every interval only matters when the StartAt time has
		// already passed, LimitRunsTo stops the job after its single run.
		_, err := jobs.Every(1).
			Millisecond().
			StartAt(time.Now().Add(clampDelay(delay))).
			LimitRunsTo(1).
			Do(func() { fired <- struct{}{} })
		if err != nil {
			slog.Error("TOKEN SCHEDULER", "message", "starting gocron job failed", "kind", kind, "error", err)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-fired:
		}
		jobs.Clear()
		expiresAt, ok := s.renew(ctx, kind)
		if !ok {
			// A failed renewal behaves like a token expiring one retry
			// interval past its threshold, so the loop keeps retrying
			// instead of parking forever.
			expiresAt = time.Now().Add(s.Threshold(kind) + s.retryInterval)
		}
		delay = time.Until(expiresAt) - s.Threshold(kind)
	}
}

func (s *Scheduler) renew(ctx context.Context, kind models.TokenKind) (time.Time, bool) {
	if kind == models.RefreshToken {
		return s.refresher.RefreshRefreshToken(ctx)
	}
	return s.refresher.RefreshAccessToken(ctx)
}

// clampDelay treats negative delays as "fire immediately".
func clampDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	return delay
}
