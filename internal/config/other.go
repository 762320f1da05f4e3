package config

import (
	"fmt"
	"net/url"
)

type ServerConfig struct {
	// BaseURL is the root of the Clax HTTP API, all routes are relative to it.
	BaseURL *url.URL
}

func (c *ServerConfig) Validate() error {
	if c.BaseURL == nil || c.BaseURL.Host == "" {
		return fmt.Errorf("the server base URL is not set")
	}
	return nil
}

type SentryConfig struct {
	Enabled     bool
	Dsn         RedactedString
	Environment string
	SampleRate  float64
}

type MonitoringConfig struct {
	Sentry SentryConfig
}
