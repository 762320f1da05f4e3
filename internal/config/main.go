package config

// Config is the full configuration of the Clax client.
type Config struct {
	Server     ServerConfig
	Tokens     TokensConfig
	Storage    StorageConfig
	Monitoring MonitoringConfig
	DebugMode  bool
}

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Tokens.Validate(); err != nil {
		return err
	}
	return c.Storage.Validate()
}
