package config

import "time"

// VisionConfig holds the settings for the Cloud Vision client.
type VisionConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Config holds the application configuration.
type Config struct {
	ListenAddress string       `mapstructure:"listen_address"`
	Route         string       `mapstructure:"route"`
	MaxColors     int          `mapstructure:"max_colors"`
	MaxBodyBytes  int64        `mapstructure:"max_body_bytes"`
	Debug         bool         `mapstructure:"debug"`
	Vision        VisionConfig `mapstructure:"vision"`
}
