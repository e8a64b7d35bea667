package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration read from MINIMMO_* environment variables.
type Config struct {
	// DatabaseURL selects the repository backend by scheme:
	// sqlite://, postgres://, postgresql://, mongodb://, mongodb+srv:// or memory://
	DatabaseURL   string `env:"DATABASE_URL" envDefault:"sqlite://minimmo.db"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"minimmo"`
	AllowOrigin   string `env:"ALLOW_ORIGIN" envDefault:"*"`
	TLSCertFile   string `env:"API_TLS_CERT_FILE"`
	TLSKeyFile    string `env:"API_TLS_KEY_FILE"`
}

const prefix = "MINIMMO_"

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return parse(env.Options{Prefix: prefix})
}

// Parse reads the configuration from the given variables instead of the process environment.
func Parse(environment map[string]string) (*Config, error) {
	return parse(env.Options{Prefix: prefix, Environment: environment})
}

func parse(opts env.Options) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// TLSEnabled reports whether both a certificate and a key were configured.
func (c *Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}
