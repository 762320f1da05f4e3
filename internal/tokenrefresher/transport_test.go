package tokenrefresher

import (
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/clax-app/clax-client/internal/apiclient"
	"github.com/clax-app/clax-client/internal/appstate"
	"github.com/clax-app/clax-client/internal/expirystore"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStack wires an API client, refresher and scheduler against the given
// mock server the same way the application does, with the 401 interceptor
// installed on the client.
func testStack(t *testing.T, e *echo.Echo) *apiclient.Client {
	api := testAPIClient(t, e)
	store := expirystore.NewInMemoryExpiryStore()
	refresher, err := NewRefresher(WithAPIClient(api), WithExpiryStore(store))
	require.NoError(t, err)
	state := appstate.NewState()
	scheduler, err := NewScheduler(
		WithState(state),
		WithRefresher(refresher),
		WithThresholds(time.Minute, 12*time.Hour),
		WithRetryInterval(5*time.Second),
	)
	require.NoError(t, err)
	api.WrapTransport(NewUnauthorizedRetryTransport(refresher, scheduler, ""))
	t.Cleanup(state.CancelAndClearTimers)
	return api
}

func renewalEndpoint(renewals *atomic.Int32) echo.HandlerFunc {
	return func(c echo.Context) error {
		renewals.Add(1)
		return c.JSON(http.StatusOK, map[string]int64{"expiresAt": time.Now().Add(time.Hour).UnixMilli()})
	}
}

func TestSuccessfulResponsesPassThrough(t *testing.T) {
	var renewals atomic.Int32
	e := echo.New()
	e.GET("/refresh/access-token", renewalEndpoint(&renewals))
	e.GET("/tasks", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []map[string]any{})
	})
	api := testStack(t, e)

	tasks, err := api.Tasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Equal(t, int32(0), renewals.Load())
}

func TestUnauthorizedRequestIsRenewedAndReplayedOnce(t *testing.T) {
	var renewals, taskCalls atomic.Int32
	var requestIDs []string
	e := echo.New()
	e.GET("/refresh/access-token", renewalEndpoint(&renewals))
	e.GET("/tasks", func(c echo.Context) error {
		taskCalls.Add(1)
		requestIDs = append(requestIDs, c.Request().Header.Get(echo.HeaderXRequestID))
		if taskCalls.Load() == 1 {
			return c.JSON(http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		}
		return c.JSON(http.StatusOK, []map[string]any{
			{"_id": "t-1", "title": "buy milk", "isComplete": false},
		})
	})
	api := testStack(t, e)

	tasks, err := api.Tasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t-1", tasks[0].ID)
	assert.Equal(t, int32(1), renewals.Load())
	assert.Equal(t, int32(2), taskCalls.Load())
	// The replay reuses the original request ID.
	require.Len(t, requestIDs, 2)
	assert.NotEmpty(t, requestIDs[0])
	assert.Equal(t, requestIDs[0], requestIDs[1])
}

func TestUnauthorizedReplayFailurePropagatesTheOriginalFailure(t *testing.T) {
	var renewals, taskCalls atomic.Int32
	e := echo.New()
	e.GET("/refresh/access-token", renewalEndpoint(&renewals))
	e.GET("/tasks", func(c echo.Context) error {
		taskCalls.Add(1)
		if taskCalls.Load() == 1 {
			return c.JSON(http.StatusUnauthorized, map[string]any{"message": "session revoked"})
		}
		return c.JSON(http.StatusForbidden, map[string]any{"message": "still not allowed"})
	})
	api := testStack(t, e)

	_, err := api.Tasks(ctx)
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, []string{"session revoked"}, apiErr.Messages)
	assert.Equal(t, int32(1), renewals.Load())
	assert.Equal(t, int32(2), taskCalls.Load())
}

func TestFailedRenewalPropagatesTheOriginalFailureWithoutReplay(t *testing.T) {
	var taskCalls atomic.Int32
	e := echo.New()
	e.GET("/refresh/access-token", func(c echo.Context) error {
		return c.JSON(http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
	})
	e.GET("/tasks", func(c echo.Context) error {
		taskCalls.Add(1)
		return c.JSON(http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
	})
	api := testStack(t, e)

	_, err := api.Tasks(ctx)
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, int32(1), taskCalls.Load())
}

func TestRenewalRoutesNeverTriggerARenewal(t *testing.T) {
	var renewals atomic.Int32
	e := echo.New()
	e.GET("/refresh/access-token", func(c echo.Context) error {
		renewals.Add(1)
		return c.JSON(http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
	})
	e.GET("/refresh/refresh-token", func(c echo.Context) error {
		return c.JSON(http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
	})
	e.POST("/login", func(c echo.Context) error {
		return c.JSON(http.StatusUnauthorized, map[string]any{"message": "invalid username or password"})
	})
	api := testStack(t, e)

	_, err := api.RefreshRefreshToken(ctx)
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, int32(0), renewals.Load())

	_, err = api.Login(ctx, "ada", "wrong")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, int32(0), renewals.Load())

	// A failing renewal route itself is also left alone.
	_, err = api.RefreshAccessToken(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, int32(1), renewals.Load())
}

func TestReplayedRequestBodyIsResent(t *testing.T) {
	var renewals, createCalls atomic.Int32
	e := echo.New()
	e.GET("/refresh/access-token", renewalEndpoint(&renewals))
	e.POST("/task", func(c echo.Context) error {
		createCalls.Add(1)
		var body map[string]string
		require.NoError(t, c.Bind(&body))
		if createCalls.Load() == 1 {
			return c.JSON(http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		}
		return c.JSON(http.StatusCreated, map[string]any{
			"_id": "t-9", "title": body["title"], "isComplete": false,
		})
	})
	api := testStack(t, e)

	task, err := api.CreateTask(ctx, "water the plants")
	require.NoError(t, err)
	assert.Equal(t, "water the plants", task.Title)
	assert.Equal(t, int32(1), renewals.Load())
	assert.Equal(t, int32(2), createCalls.Load())
}

func TestUnauthorizedTaskRouteNamedLikeALoginRouteIsStillRenewed(t *testing.T) {
	var renewals, updateCalls atomic.Int32
	e := echo.New()
	e.GET("/refresh/access-token", renewalEndpoint(&renewals))
	e.PATCH("/task/:id", func(c echo.Context) error {
		updateCalls.Add(1)
		require.Equal(t, "login", c.Param("id"))
		if updateCalls.Load() == 1 {
			return c.JSON(http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"_id": "login", "title": "fix the login page", "isComplete": true,
		})
	})
	api := testStack(t, e)

	done := true
	task, err := api.UpdateTask(ctx, "login", apiclient.TaskUpdate{IsComplete: &done})
	require.NoError(t, err)
	assert.Equal(t, "login", task.ID)
	assert.Equal(t, int32(1), renewals.Load())
	assert.Equal(t, int32(2), updateCalls.Load())
}

func TestIsBlacklisted(t *testing.T) {
	assert.True(t, isBlacklisted("/login", ""))
	assert.True(t, isBlacklisted("/refresh/access-token", ""))
	assert.True(t, isBlacklisted("/refresh/refresh-token", ""))
	assert.False(t, isBlacklisted("/tasks", ""))
	assert.False(t, isBlacklisted("/refresh/password-confirmation-token", ""))
	assert.False(t, isBlacklisted("/user", ""))
	// Routes only match relative to the base path, a task id that happens to
	// be named like a route stays eligible for renewal.
	assert.False(t, isBlacklisted("/task/login", ""))
	assert.False(t, isBlacklisted("/api/login", ""))
	assert.True(t, isBlacklisted("/api/login", "/api"))
	assert.True(t, isBlacklisted("/api/login", "/api/"))
	assert.False(t, isBlacklisted("/api/task/login", "/api"))
	assert.False(t, isBlacklisted("/login", "/api"))
}
