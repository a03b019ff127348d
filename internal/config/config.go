package config

import (
	"net/url"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Placeholder values shipped in .env.example. They count as "not configured".
const (
	placeholderDBURL      = "your-supabase-db-url"
	placeholderServiceKey = "your-service-key"
)

// Config holds runtime configuration for the server.
type Config struct {
	Port   string `envconfig:"PORT" default:"4000" validate:"required,numeric"`
	AppEnv string `envconfig:"APP_ENV" default:"development" validate:"oneof=development production test"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty" validate:"oneof=pretty json"`

	CORSAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*" validate:"min=1"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`

	DatabaseConfig
}

// DatabaseConfig locates the managed Postgres database behind the invoice
// gateway. An empty URL leaves the gateway unconfigured.
type DatabaseConfig struct {
	URL         string        `envconfig:"SUPABASE_DB_URL"`
	ServiceKey  string        `envconfig:"SUPABASE_SERVICE_KEY"`
	Timeout     time.Duration `envconfig:"PERSISTENCE_TIMEOUT" default:"10s" validate:"gt=0"`
	AutoMigrate bool          `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

// Configured reports whether a usable database URL was supplied.
func (d DatabaseConfig) Configured() bool {
	return d.URL != "" && d.URL != placeholderDBURL
}

// DSN returns the connection URL with the service key filled in as the
// password when the URL itself carries none.
func (d DatabaseConfig) DSN() (string, error) {
	if !d.Configured() {
		return "", errors.New("database url is not configured")
	}
	u, err := url.Parse(d.URL)
	if err != nil {
		return "", errors.Wrap(err, "parse database url")
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", errors.Newf("unsupported database url scheme %q", u.Scheme)
	}
	key := d.ServiceKey
	if key == placeholderServiceKey {
		key = ""
	}
	if key != "" {
		user := "postgres"
		hasPassword := false
		if u.User != nil {
			if name := u.User.Username(); name != "" {
				user = name
			}
			_, hasPassword = u.User.Password()
		}
		if !hasPassword {
			u.User = url.UserPassword(user, key)
		}
	}
	return u.String(), nil
}
