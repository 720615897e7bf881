package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultListenAddress = "0.0.0.0:8080"
	defaultRoute         = "/api/analyze-colors"
	defaultEndpoint      = "https://vision.googleapis.com/"
	defaultTimeout       = 30 * time.Second
	defaultMaxColors     = 5
	defaultMaxBodyBytes  = 10 << 20

	// APIKeyEnv is the environment variable the vision API key is read from.
	APIKeyEnv = "GOOGLE_VISION_API_KEY"
	envPrefix = "MYCOLOR"
)

// The global, read-only config variable.
var (
	cfg  *Config
	once sync.Once
)

// LoadConfig reads the config sources described by cli, parses them, and initializes the global cfg variable.
// It ensures that the configuration is set only once.
func LoadConfig(cli *CliConfig) (*Config, error) {
	var err error
	once.Do(func() {
		var configuration *Config
		configuration, err = Load(cli)
		if err != nil {
			return
		}
		cfg = configuration
	})

	if err != nil {
		return nil, err
	}

	if cfg == nil {
		return nil, errors.New("configuration was not set")
	}

	return cfg, nil
}

// Load builds a Config from, in increasing priority, defaults, the config file,
// the dotenv file, the environment and the command line.
func Load(cli *CliConfig) (*Config, error) {
	if cli == nil {
		cli = &CliConfig{}
	}

	if cli.EnvFile != "" {
		// Existing environment variables win over the dotenv file.
		if err := godotenv.Load(cli.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading env file: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("listen_address", defaultListenAddress)
	v.SetDefault("route", defaultRoute)
	v.SetDefault("max_colors", defaultMaxColors)
	v.SetDefault("max_body_bytes", defaultMaxBodyBytes)
	v.SetDefault("debug", false)
	v.SetDefault("vision.api_key", "")
	v.SetDefault("vision.endpoint", defaultEndpoint)
	v.SetDefault("vision.timeout", defaultTimeout)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("vision.api_key", APIKeyEnv, envPrefix+"_VISION_API_KEY"); err != nil {
		return nil, fmt.Errorf("error binding env: %w", err)
	}

	if cli.flags != nil {
		bindings := map[string]string{
			"listen_address": "listen",
			"route":          "route",
			"debug":          "debug",
		}
		for key, name := range bindings {
			if err := v.BindPFlag(key, cli.flags.Lookup(name)); err != nil {
				return nil, fmt.Errorf("error binding flag %s: %w", name, err)
			}
		}
	}

	// Read in the config file
	if cli.ConfigFile != "" {
		v.SetConfigFile(cli.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal the config into the Config struct
	var configuration Config
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// Validate checks the values that have no safe fallback. An empty API key is
// allowed here; the handler reports it per request.
func (c *Config) Validate() error {
	if c.ListenAddress == "" {
		return errors.New("listen_address is required")
	}
	if !strings.HasPrefix(c.Route, "/") {
		return fmt.Errorf("route must start with '/', got %q", c.Route)
	}
	if c.MaxColors < 1 {
		return fmt.Errorf("max_colors must be at least 1, got %d", c.MaxColors)
	}
	if c.MaxBodyBytes < 1 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	}
	if c.Vision.Endpoint == "" {
		return errors.New("vision.endpoint is required")
	}
	if c.Vision.Timeout <= 0 {
		return fmt.Errorf("vision.timeout must be positive, got %s", c.Vision.Timeout)
	}
	return nil
}
