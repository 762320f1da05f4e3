// Package appstate holds the process-wide mutable state of the client: the
// authenticated user's identity and the timer handles of the token renewal
// scheduler. The container is created once at startup and handed to the
// components that need it, it is never a package-level global.
package appstate

import (
	"context"
	"sync"

	"github.com/clax-app/clax-client/internal/models"
)

// TimerHandle is an opaque, cancellable handle to one armed renewal timer.
// The scheduler supersedes the stored handle whenever it arms a new timer
// for the same token kind, superseding does not cancel the old timer.
type TimerHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewTimerHandle(cancel context.CancelFunc) *TimerHandle {
	return &TimerHandle{cancel: cancel, done: make(chan struct{})}
}

// Cancel stops the timer loop behind this handle. Safe to call more than once.
func (h *TimerHandle) Cancel() {
	h.cancel()
}

// Done is closed once the timer loop behind this handle has fully stopped.
func (h *TimerHandle) Done() <-chan struct{} {
	return h.done
}

// MarkDone is called by the scheduler loop on exit.
func (h *TimerHandle) MarkDone() {
	close(h.done)
}

type State struct {
	lock   *sync.RWMutex
	user   *models.User
	timers map[models.TokenKind]*TimerHandle
}

func NewState() *State {
	return &State{lock: &sync.RWMutex{}, timers: map[models.TokenKind]*TimerHandle{}}
}

func (s *State) SetUser(user models.User) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.user = &user
}

func (s *State) User() (models.User, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *State) ClearUser() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.user = nil
}

// SetTimer stores the handle of a freshly armed timer, superseding the
// previous handle for that kind. The superseded handle is returned so the
// caller can decide whether to cancel it.
func (s *State) SetTimer(kind models.TokenKind, handle *TimerHandle) *TimerHandle {
	s.lock.Lock()
	defer s.lock.Unlock()
	previous := s.timers[kind]
	s.timers[kind] = handle
	return previous
}

func (s *State) Timer(kind models.TokenKind) *TimerHandle {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.timers[kind]
}

// CancelAndClearTimers cancels every stored timer, removes all handles and
// blocks until every cancelled timer loop has fully stopped. Once it returns
// no timer loop can still write renewal results anywhere.
func (s *State) CancelAndClearTimers() {
	s.lock.Lock()
	cancelled := make([]*TimerHandle, 0, len(s.timers))
	for kind, handle := range s.timers {
		if handle != nil {
			handle.Cancel()
			cancelled = append(cancelled, handle)
		}
		delete(s.timers, kind)
	}
	// Waiting happens outside the critical section, a timer loop that is
	// mid-renewal may still need the lock before it marks itself done.
	s.lock.Unlock()
	for _, handle := range cancelled {
		<-handle.Done()
	}
}
