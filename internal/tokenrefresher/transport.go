package tokenrefresher

import (
	"net/http"
	"strings"
	"time"

	"github.com/clax-app/clax-client/internal/apiclient"
	"github.com/clax-app/clax-client/internal/models"
)

// renewalBlacklist lists the routes that must never trigger an access-token
// renewal, otherwise a failing renewal would trigger itself forever.
var renewalBlacklist = []string{
	apiclient.LoginRoute,
	apiclient.RefreshAccessTokenRoute,
	apiclient.RefreshRefreshTokenRoute,
}

// UnauthorizedRetryTransport intercepts 401 responses on all outbound
// traffic. It renews the access token at most once per original failure,
// re-arms the scheduler's access-token timer from the new expiry and replays
// the failed request exactly once. If the renewal or the replay fails too,
// the original 401 propagates to the caller, never the secondary failure.
type UnauthorizedRetryTransport struct {
	next      http.RoundTripper
	refresher *Refresher
	scheduler *Scheduler
	basePath  string
}

// NewUnauthorizedRetryTransport returns a transport decorator suitable for
// apiclient.Client.WrapTransport. basePath is the path component of the API
// base URL, it is stripped before blacklist matching so that a route like
// /task/login is never mistaken for the login route.
func NewUnauthorizedRetryTransport(refresher *Refresher, scheduler *Scheduler, basePath string) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return &UnauthorizedRetryTransport{
			next:      next,
			refresher: refresher,
			scheduler: scheduler,
			basePath:  basePath,
		}
	}
}

func (t *UnauthorizedRetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || isBlacklisted(req.URL.Path, t.basePath) {
		return resp, nil
	}
	// The original failure is remembered for the rest of this invocation
	// chain. Concurrent unrelated failures each run their own chain.
	originalFailure := resp
	newExpiresAt, ok := t.refresher.RefreshAccessToken(req.Context())
	if !ok {
		return originalFailure, nil
	}
	t.scheduler.Rearm(
		models.AccessToken,
		time.Until(newExpiresAt)-t.scheduler.Threshold(models.AccessToken),
	)
	replayReq, err := cloneForReplay(req)
	if err != nil {
		return originalFailure, nil
	}
	replay, err := t.next.RoundTrip(replayReq)
	if err != nil || replay.StatusCode >= http.StatusBadRequest {
		if replay != nil {
			replay.Body.Close()
		}
		return originalFailure, nil
	}
	originalFailure.Body.Close()
	return replay, nil
}

// isBlacklisted matches the request path against the blacklist exactly,
// relative to the configured base path.
func isBlacklisted(path string, basePath string) bool {
	basePath = strings.TrimSuffix(basePath, "/")
	if basePath != "" {
		trimmed := strings.TrimPrefix(path, basePath)
		if trimmed == path {
			return false
		}
		path = trimmed
	}
	for _, route := range renewalBlacklist {
		if path == route {
			return true
		}
	}
	return false
}

func cloneForReplay(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	return clone, nil
}
