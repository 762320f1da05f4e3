package config

import (
	"fmt"
	"time"

	"github.com/clax-app/clax-client/internal/models"
)

// TokensConfig controls the proactive renewal of the access and refresh
// tokens. A token is renewed once it is within its threshold of expiring.
type TokensConfig struct {
	AccessRefreshThreshold  time.Duration
	RefreshRefreshThreshold time.Duration
	// RetryInterval is how long the scheduler waits before trying again
	// after a failed renewal.
	RetryInterval time.Duration
}

func (c *TokensConfig) Validate() error {
	if c.AccessRefreshThreshold <= 0 {
		return fmt.Errorf("invalid value for AccessRefreshThreshold (%s)", c.AccessRefreshThreshold)
	}
	if c.RefreshRefreshThreshold <= 0 {
		return fmt.Errorf("invalid value for RefreshRefreshThreshold (%s)", c.RefreshRefreshThreshold)
	}
	if c.RetryInterval <= 0 {
		return fmt.Errorf("invalid value for RetryInterval (%s)", c.RetryInterval)
	}
	return nil
}

// Threshold returns the refresh threshold for a proactively renewed token
// kind. The password-confirmation token has no threshold, it is only ever
// checked reactively.
func (c TokensConfig) Threshold(kind models.TokenKind) time.Duration {
	switch kind {
	case models.RefreshToken:
		return c.RefreshRefreshThreshold
	default:
		return c.AccessRefreshThreshold
	}
}
