package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "CONSOLE"

const (
	SessionBackendMemory = "memory"
	SessionBackendSQLite = "sqlite"
	SessionBackendRedis  = "redis"
)

type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	Auth    AuthConfig
	Limits  LimitsConfig
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("CONSOLE_API_BASE_URL must be an absolute URL, got %q", c.API.BaseURL)
	}
	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendSQLite:
	case SessionBackendRedis:
		if c.Session.RedisURL == "" {
			return fmt.Errorf("CONSOLE_SESSION_REDIS_URL is required for the redis session backend")
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("CONSOLE_API_TIMEOUT must be positive")
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"CONSOLE_ENV" default:"dev"`
	Port         string `envconfig:"CONSOLE_PORT" default:"8081"`
	LogLevel     string `envconfig:"CONSOLE_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"CONSOLE_LOG_FORMAT" default:"json"`
	LogFile      string `envconfig:"CONSOLE_LOG_FILE"`
	TemplatesDir string `envconfig:"CONSOLE_TEMPLATES_DIR" default:"./web/templates"`
	StaticDir    string `envconfig:"CONSOLE_STATIC_DIR" default:"./web/static"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, "dev")
}

type APIConfig struct {
	BaseURL  string        `envconfig:"CONSOLE_API_BASE_URL" required:"true"`
	Timeout  time.Duration `envconfig:"CONSOLE_API_TIMEOUT" default:"15s"`
	RetryMax int           `envconfig:"CONSOLE_API_RETRY_MAX" default:"0"`
}

type SessionConfig struct {
	Backend      string        `envconfig:"CONSOLE_SESSION_BACKEND" default:"sqlite"`
	DBDSN        string        `envconfig:"CONSOLE_SESSION_DB_DSN" default:"catalogconsole.db"`
	RedisURL     string        `envconfig:"CONSOLE_SESSION_REDIS_URL"`
	TTL          time.Duration `envconfig:"CONSOLE_SESSION_TTL" default:"12h"`
	CookieSecure bool          `envconfig:"CONSOLE_COOKIE_SECURE" default:"false"`
}

type AuthConfig struct {
	AllowedRoles   []string `envconfig:"CONSOLE_ALLOWED_ROLES" default:"admin"`
	DashboardRoles []string `envconfig:"CONSOLE_DASHBOARD_ROLES" default:"admin"`
}

type LimitsConfig struct {
	LoginAttempts  int           `envconfig:"CONSOLE_LOGIN_ATTEMPTS" default:"5"`
	LoginWindow    time.Duration `envconfig:"CONSOLE_LOGIN_WINDOW" default:"10m"`
	RequestsPerMin int           `envconfig:"CONSOLE_REQUESTS_PER_MINUTE" default:"120"`
	MaxBodyBytes   int           `envconfig:"CONSOLE_MAX_BODY_BYTES" default:"1048576"`
}
