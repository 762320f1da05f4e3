package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type ConfigHandler struct {
	viper *viper.Viper
	lock  *sync.Mutex
}

// NewConfigHandler creates a configuration handler that reads config.yaml and
// can watch it for changes. Environment variables (prefixed with CLAX_)
// always overwrite values from the file. The file is searched for in the
// path named by the CLAX_CONFIG_LOCATION environment variable first, then in
// the user config directory and the working directory.
func NewConfigHandler() *ConfigHandler {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("config")
	configPaths := []string{}
	configPathEnv := os.Getenv("CLAX_CONFIG_LOCATION")
	if configPathEnv != "" {
		configPaths = append(configPaths, configPathEnv)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		configPaths = append(configPaths, userConfigDir+"/clax")
	}
	configPaths = append(configPaths, ".")
	for _, path := range configPaths {
		v.AddConfigPath(path)
	}
	v.SetEnvPrefix("clax")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return &ConfigHandler{viper: v, lock: &sync.Mutex{}}
}

// setDefaults covers every key so that environment variables are picked up
// even when the key is absent from the config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.baseurl", "http://localhost:3000")
	v.SetDefault("tokens.accessrefreshthreshold", "1m")
	v.SetDefault("tokens.refreshrefreshthreshold", "12h")
	v.SetDefault("tokens.retryinterval", "5s")
	v.SetDefault("storage.type", StorageTypeFile)
	v.SetDefault("storage.path", defaultExpiryFilePath())
	v.SetDefault("storage.redis.addresses", []string{})
	v.SetDefault("storage.redis.issentinel", false)
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.mastername", "")
	v.SetDefault("storage.redis.dbindex", 0)
	v.SetDefault("monitoring.sentry.enabled", false)
	v.SetDefault("monitoring.sentry.dsn", "")
	v.SetDefault("monitoring.sentry.environment", "")
	v.SetDefault("monitoring.sentry.samplerate", 0.0)
	v.SetDefault("debugmode", false)
}

func defaultExpiryFilePath() string {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return ".clax-expiries.json"
	}
	return userConfigDir + "/clax/expiries.json"
}

func (c *ConfigHandler) getConfig() (Config, error) {
	var output Config
	err := c.viper.ReadInConfig()
	if err != nil {
		switch err.(type) {
		case viper.ConfigFileNotFoundError:
			slog.Info("could not find any config files - only defaults and environment variables will be used")
		default:
			return Config{}, err
		}
	}
	err = c.viper.Unmarshal(
		&output,
		viper.DecodeHook(
			mapstructure.ComposeDecodeHookFunc(
				parseStringAsURL(),
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		),
	)
	if err != nil {
		return Config{}, err
	}
	err = output.Validate()
	if err != nil {
		return Config{}, err
	}
	return output, nil
}

func (c *ConfigHandler) Config() (Config, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.getConfig()
}

// HandleChanges registers a callback invoked with the re-read configuration
// whenever the config file changes on disk. Watch must be called for the
// callback to ever fire.
func (c *ConfigHandler) HandleChanges(callback func(Config, error)) {
	c.viper.OnConfigChange(func(e fsnotify.Event) {
		slog.Info("config file changed", "path", e.Name)
		callback(c.Config())
	})
}

func (c *ConfigHandler) Watch() {
	c.viper.WatchConfig()
}

func parseStringAsURL() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (interface{}, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t != reflect.TypeOf(url.URL{}) {
			return data, nil
		}
		dataStr, ok := data.(string)
		if !ok {
			return nil, fmt.Errorf("cannot cast URL value to string")
		}
		if dataStr == "" {
			return nil, fmt.Errorf("empty values are not allowed for URLs")
		}
		url, err := url.Parse(dataStr)
		if err != nil {
			return nil, err
		}
		return url, nil
	}
}
