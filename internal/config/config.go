// Package config centralises runtime configuration for the emissions ledger.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config captures runtime configuration values for the server.
type Config struct {
	HTTPAddress string `mapstructure:"http_address"`
	DataDir     string `mapstructure:"data_dir"`
	Debug       bool   `mapstructure:"debug"`

	// SeedSampleData controls whether an empty ledger is seeded with the
	// sample dataset on startup.
	SeedSampleData bool `mapstructure:"seed_sample_data"`
}

// Load reads configuration from the environment (and an optional .env file),
// applying defaults for local development. Environment keys are prefixed with
// EMISSIONS_, e.g. EMISSIONS_HTTP_ADDRESS.
func Load() (*Config, error) {
	// .env is optional; ignore a missing file
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EMISSIONS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http_address", ":3000")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("debug", false)
	v.SetDefault("seed_sample_data", true)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
