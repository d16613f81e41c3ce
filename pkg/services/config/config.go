package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the service configuration read from ledgerline.yaml.
type Config struct {
	Host            string   `mapstructure:"host"`
	Port            string   `mapstructure:"port"`
	DBPath          string   `mapstructure:"db_path"`
	CredentialsPath string   `mapstructure:"credentials_path"`
	Profile         string   `mapstructure:"profile"`
	CORSOrigins     []string `mapstructure:"cors_origins"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", "8080")
	v.SetDefault("db_path", "ledgerline.db")
	v.SetDefault("profile", "default")
	v.SetDefault("cors_origins", []string{"http://localhost:5173"})

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.CredentialsPath == "" {
		return nil, fmt.Errorf("credentials_path is required")
	}
	return &cfg, nil
}
