package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	OrderAPI OrderAPIConfig
	Push     PushConfig
	View     ViewConfig
	CORS     CORSConfig
}

// Load reads configs/.env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := url.ParseRequestURI(c.OrderAPI.BaseURL); err != nil {
		return fmt.Errorf("ORDER_API_BASE_URL: %w", err)
	}
	if c.Push.URL != "" {
		u, err := url.Parse(c.Push.URL)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
			return fmt.Errorf("PUSH_URL must be a ws:// or wss:// url, got %q", c.Push.URL)
		}
	}
	if c.App.IsProd() && c.JWT.Secret == DevJWTSecret {
		return fmt.Errorf("JWT_SECRET is required in %s", AppEnvProd)
	}
	return nil
}

type AppConfig struct {
	Env       string `envconfig:"APP_ENV" default:"dev"`
	Port      string `envconfig:"PORT" default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN      string `envconfig:"DB_DSN"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"postgres"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// ConnString returns DSN, or builds one from the individual parts.
func (d DBConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

type RedisConfig struct {
	URL      string        `envconfig:"REDIS_URL"`
	Address  string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	DraftTTL time.Duration `envconfig:"DRAFT_TTL" default:"168h"`
}

// DevJWTSecret is the development fallback; refused in prod.
const DevJWTSecret = "default_super_secret_key"

type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET" default:"default_super_secret_key"`
}

type OrderAPIConfig struct {
	BaseURL string        `envconfig:"ORDER_API_BASE_URL" required:"true"`
	Token   string        `envconfig:"ORDER_API_TOKEN"`
	Timeout time.Duration `envconfig:"ORDER_API_TIMEOUT" default:"30s"`
}

type PushConfig struct {
	// URL of the upstream push websocket; empty disables the listener.
	URL        string        `envconfig:"PUSH_URL"`
	Token      string        `envconfig:"PUSH_TOKEN"`
	MinBackoff time.Duration `envconfig:"PUSH_MIN_BACKOFF" default:"1s"`
	MaxBackoff time.Duration `envconfig:"PUSH_MAX_BACKOFF" default:"30s"`
}

type ViewConfig struct {
	PollInterval   time.Duration `envconfig:"VIEW_POLL_INTERVAL" default:"10s"`
	ReloadDebounce time.Duration `envconfig:"VIEW_RELOAD_DEBOUNCE" default:"300ms"`
}

type CORSConfig struct {
	AllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173"`
}
