package app

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the console and the mock backend.
type Config struct {
	AppEnv string `envconfig:"APP_ENV" default:"development"`

	APIBaseURL      string        `envconfig:"API_BASE_URL" default:"http://127.0.0.1:8080"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"5s"`
	CredentialsPath string        `envconfig:"CREDENTIALS_PATH"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	MockAddr        string        `envconfig:"MOCK_ADDR" default:":8080"`
	RedisAddr       string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	JWTSecret       string        `envconfig:"JWT_SECRET" default:"atlas-dev-secret"`
	AccessTokenTTL  time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"1h"`
	RefreshTokenTTL time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"168h"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("ATLAS", &cfg); err != nil {
		return nil, err
	}
	if cfg.APIBaseURL == "" {
		return nil, errors.New("api base url must be provided")
	}
	if cfg.CredentialsPath == "" {
		cfg.CredentialsPath = defaultCredentialsPath()
	}
	return &cfg, nil
}

// IsProduction returns true when the console runs against a production backend.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

func defaultCredentialsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".atlas", "credentials.json")
	}
	return filepath.Join(dir, "atlas-console", "credentials.json")
}
