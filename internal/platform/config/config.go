package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is read once at startup and passed by injection; business code
// never touches the environment directly.
type Config struct {
	Addr        string `envconfig:"APP_ADDR" default:":8080"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`

	PlatformBaseURL  string `envconfig:"PLATFORM_BASE_URL" default:"https://open.example-suite.com/open-apis"`
	AppID            string `envconfig:"PLATFORM_APP_ID"`
	AppSecret        string `envconfig:"PLATFORM_APP_SECRET"`
	OAuthRedirectURL string `envconfig:"OAUTH_REDIRECT_URL"`
	OAuthScope       string `envconfig:"OAUTH_SCOPE" default:"contact:user.base"`

	StoreAppToken      string `envconfig:"TABLE_APP_TOKEN"`
	TableEmployees     string `envconfig:"TABLE_EMPLOYEES"`
	TableObjectives    string `envconfig:"TABLE_OBJECTIVES"`
	TableCompletions   string `envconfig:"TABLE_COMPLETIONS"`
	TableOperationLogs string `envconfig:"TABLE_OPERATION_LOGS"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"12h"`

	HTTPTimeout        time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`
	StorePageSize      int           `envconfig:"STORE_PAGE_SIZE" default:"100"`
	MaxBodyBytes       int64         `envconfig:"MAX_BODY_BYTES" default:"1048576"`
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.AppID) == "" || strings.TrimSpace(c.AppSecret) == "" {
		return fmt.Errorf("PLATFORM_APP_ID and PLATFORM_APP_SECRET are required")
	}
	if strings.TrimSpace(c.StoreAppToken) == "" {
		return fmt.Errorf("TABLE_APP_TOKEN is required")
	}
	for name, value := range map[string]string{
		"TABLE_EMPLOYEES":   c.TableEmployees,
		"TABLE_OBJECTIVES":  c.TableObjectives,
		"TABLE_COMPLETIONS": c.TableCompletions,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
	}
	if c.StorePageSize < 1 || c.StorePageSize > 500 {
		return fmt.Errorf("STORE_PAGE_SIZE must be between 1 and 500")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}
