package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppCfg struct {
	Env         string   `yaml:"env"`
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"corsOrigins"`
}

type MongoCfg struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type JWTCfg struct {
	Secret   string `yaml:"secret"`
	TTLHours int    `yaml:"ttlHours"`
}

type BreakerCfg struct {
	MaxFailures uint32 `yaml:"maxFailures"`
	IntervalSec int    `yaml:"intervalSec"`
	TimeoutSec  int    `yaml:"timeoutSec"`
}

type TwilioCfg struct {
	AccountSID     string     `yaml:"accountSID"`
	AuthToken      string     `yaml:"authToken"`
	From           string     `yaml:"from"`
	APIBaseURL     string     `yaml:"apiBaseURL"`
	ContentBaseURL string     `yaml:"contentBaseURL"`
	Breaker        BreakerCfg `yaml:"breaker"`
}

type TextbeltCfg struct {
	APIKey string `yaml:"apiKey"`
	URL    string `yaml:"url"`
}

type SMSCfg struct {
	DefaultProvider string `yaml:"defaultProvider"`
}

type SMTPCfg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type EmailCfg struct {
	Provider       string  `yaml:"provider"` // sendgrid or smtp
	FromEmail      string  `yaml:"fromEmail"`
	FromName       string  `yaml:"fromName"`
	SendGridAPIKey string  `yaml:"sendgridAPIKey"`
	SMTP           SMTPCfg `yaml:"smtp"`
}

type RateLimitCfg struct {
	ExpertLinkPerMinute int `yaml:"expertLinkPerMinute"`
}

type Config struct {
	App       AppCfg       `yaml:"app"`
	Mongo     MongoCfg     `yaml:"mongo"`
	JWT       JWTCfg       `yaml:"jwt"`
	Twilio    TwilioCfg    `yaml:"twilio"`
	Textbelt  TextbeltCfg  `yaml:"textbelt"`
	SMS       SMSCfg       `yaml:"sms"`
	Email     EmailCfg     `yaml:"email"`
	RateLimit RateLimitCfg `yaml:"rateLimit"`
}

// Defaults returns a config with every optional value filled in.
func Defaults() *Config {
	cfg := &Config{}
	cfg.App.Env = "production"
	cfg.App.Port = "8080"
	cfg.App.CORSOrigins = []string{"http://localhost:3000"}
	cfg.Mongo.Database = "telehealth"
	cfg.JWT.TTLHours = 24
	cfg.Twilio.APIBaseURL = "https://api.twilio.com"
	cfg.Twilio.ContentBaseURL = "https://content.twilio.com"
	cfg.Twilio.Breaker = BreakerCfg{MaxFailures: 5, IntervalSec: 60, TimeoutSec: 30}
	cfg.Textbelt.URL = "https://textbelt.com/text"
	cfg.SMS.DefaultProvider = "twilio"
	cfg.Email.Provider = "sendgrid"
	cfg.Email.FromName = "Telehealth"
	cfg.Email.SMTP.Port = 587
	cfg.RateLimit.ExpertLinkPerMinute = 30
	return cfg
}

// Load reads .env, then the YAML file at path (if it exists), then applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	override := func(env string, apply func(string)) {
		if v := os.Getenv(env); v != "" {
			apply(v)
		}
	}
	atoi := func(apply func(int)) func(string) {
		return func(v string) {
			if n, err := strconv.Atoi(v); err == nil {
				apply(n)
			}
		}
	}

	override("APP_ENV", func(v string) { cfg.App.Env = v })
	override("API_PORT", func(v string) { cfg.App.Port = v })
	override("CORS_ORIGINS", func(v string) { cfg.App.CORSOrigins = strings.Split(v, ",") })
	override("MONGO_URI", func(v string) { cfg.Mongo.URI = v })
	override("MONGO_DATABASE", func(v string) { cfg.Mongo.Database = v })
	override("JWT_SECRET", func(v string) { cfg.JWT.Secret = v })
	override("JWT_TTL_HOURS", atoi(func(n int) { cfg.JWT.TTLHours = n }))
	override("TWILIO_ACCOUNT_SID", func(v string) { cfg.Twilio.AccountSID = v })
	override("TWILIO_AUTH_TOKEN", func(v string) { cfg.Twilio.AuthToken = v })
	override("TWILIO_FROM", func(v string) { cfg.Twilio.From = v })
	override("TEXTBELT_API_KEY", func(v string) { cfg.Textbelt.APIKey = v })
	override("SMS_DEFAULT_PROVIDER", func(v string) { cfg.SMS.DefaultProvider = v })
	override("EMAIL_PROVIDER", func(v string) { cfg.Email.Provider = v })
	override("EMAIL_FROM", func(v string) { cfg.Email.FromEmail = v })
	override("EMAIL_FROM_NAME", func(v string) { cfg.Email.FromName = v })
	override("SENDGRID_API_KEY", func(v string) { cfg.Email.SendGridAPIKey = v })
	override("SMTP_HOST", func(v string) { cfg.Email.SMTP.Host = v })
	override("SMTP_PORT", atoi(func(n int) { cfg.Email.SMTP.Port = n }))
	override("SMTP_USERNAME", func(v string) { cfg.Email.SMTP.Username = v })
	override("SMTP_PASSWORD", func(v string) { cfg.Email.SMTP.Password = v })
	override("RATE_LIMIT_EXPERT_LINK_PER_MINUTE", atoi(func(n int) { cfg.RateLimit.ExpertLinkPerMinute = n }))
}

func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return errors.New("MONGO_URI is required")
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.Email.Provider {
	case "sendgrid", "smtp":
	default:
		return fmt.Errorf("unsupported email provider %q (want sendgrid or smtp)", c.Email.Provider)
	}
	if c.RateLimit.ExpertLinkPerMinute <= 0 {
		return errors.New("rateLimit.expertLinkPerMinute must be positive")
	}
	return nil
}
