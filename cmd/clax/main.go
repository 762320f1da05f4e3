package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/clax-app/clax-client/internal/apiclient"
	"github.com/clax-app/clax-client/internal/appstate"
	"github.com/clax-app/clax-client/internal/bootstrap"
	"github.com/clax-app/clax-client/internal/config"
	"github.com/clax-app/clax-client/internal/expirystore"
	"github.com/clax-app/clax-client/internal/tokenrefresher"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
)

var logLevel *slog.LevelVar = new(slog.LevelVar)
var jsonLogger *slog.Logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

func main() {
	// Logging setup
	slog.SetDefault(jsonLogger)
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()
	// Load configuration
	ch := config.NewConfigHandler()
	claxConfig, err := ch.Config()
	if err != nil {
		slog.Error("loading the configuration failed", "error", err)
		os.Exit(1)
	}
	// Set log level to "debug" if activated
	if claxConfig.DebugMode {
		logLevel.Set(slog.LevelDebug)
	}
	// Follow config file edits while long-running commands are active
	ch.HandleChanges(func(newConfig config.Config, err error) {
		if err != nil {
			slog.Error("reloading the configuration failed", "error", err)
			return
		}
		if newConfig.DebugMode {
			logLevel.Set(slog.LevelDebug)
		} else {
			logLevel.Set(slog.LevelInfo)
		}
	})
	ch.Watch()
	// Sentry
	if claxConfig.Monitoring.Sentry.Enabled {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              string(claxConfig.Monitoring.Sentry.Dsn),
			TracesSampleRate: claxConfig.Monitoring.Sentry.SampleRate,
			Environment:      claxConfig.Monitoring.Sentry.Environment,
		})
		if err != nil {
			slog.Error("sentry initialization failed", "error", err)
		}
		defer sentry.Flush(2 * time.Second)
	}
	app, err := newApplication(claxConfig)
	if err != nil {
		slog.Error("application initialization failed", "error", err)
		os.Exit(1)
	}
	os.Exit(app.dispatch(os.Args[1:]))
}

// application bundles the wired-up components behind the CLI commands.
type application struct {
	config    config.Config
	api       *apiclient.Client
	store     expirystore.ExpiryStore
	state     *appstate.State
	refresher *tokenrefresher.Refresher
	scheduler *tokenrefresher.Scheduler
	sequencer *bootstrap.Sequencer
}

func newApplication(claxConfig config.Config) (*application, error) {
	store, err := newExpiryStore(claxConfig.Storage)
	if err != nil {
		return nil, fmt.Errorf("expiry store initialization failed: %w", err)
	}
	api, err := apiclient.NewClient(apiclient.WithBaseURL(claxConfig.Server.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("API client initialization failed: %w", err)
	}
	state := appstate.NewState()
	refresher, err := tokenrefresher.NewRefresher(
		tokenrefresher.WithAPIClient(api),
		tokenrefresher.WithExpiryStore(store),
	)
	if err != nil {
		return nil, fmt.Errorf("refresher initialization failed: %w", err)
	}
	scheduler, err := tokenrefresher.NewScheduler(
		tokenrefresher.WithState(state),
		tokenrefresher.WithRefresher(refresher),
		tokenrefresher.WithThresholds(
			claxConfig.Tokens.AccessRefreshThreshold,
			claxConfig.Tokens.RefreshRefreshThreshold,
		),
		tokenrefresher.WithRetryInterval(claxConfig.Tokens.RetryInterval),
	)
	if err != nil {
		return nil, fmt.Errorf("scheduler initialization failed: %w", err)
	}
	// From here on every 401 on a non-bootstrap route renews the access
	// token once and replays the failed request.
	api.WrapTransport(tokenrefresher.NewUnauthorizedRetryTransport(
		refresher,
		scheduler,
		claxConfig.Server.BaseURL.Path,
	))
	sequencer, err := bootstrap.NewSequencer(
		bootstrap.WithAPIClient(api),
		bootstrap.WithExpiryStore(store),
		bootstrap.WithState(state),
		bootstrap.WithRenewer(refresher),
		bootstrap.WithScheduler(scheduler),
	)
	if err != nil {
		return nil, fmt.Errorf("bootstrap sequencer initialization failed: %w", err)
	}
	return &application{
		config:    claxConfig,
		api:       api,
		store:     store,
		state:     state,
		refresher: refresher,
		scheduler: scheduler,
		sequencer: sequencer,
	}, nil
}

func newExpiryStore(storageConfig config.StorageConfig) (expirystore.ExpiryStore, error) {
	switch storageConfig.Type {
	case config.StorageTypeFile:
		return expirystore.NewFileExpiryStore(storageConfig.Path)
	case config.StorageTypeRedis, config.StorageTypeRedisMock:
		return expirystore.NewRedisExpiryStore(expirystore.WithRedisConfig(storageConfig))
	case config.StorageTypeMemory:
		return expirystore.NewInMemoryExpiryStore(), nil
	default:
		return nil, fmt.Errorf("unrecognized storage type %q", storageConfig.Type)
	}
}
