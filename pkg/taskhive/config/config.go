package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds server configuration. Values come from an optional yaml file
// with environment variables taking precedence.
type Config struct {
	Port    string `yaml:"port"`
	BaseURL string `yaml:"baseUrl"`
	DBPath  string `yaml:"dbPath"`
	JWT     struct {
		Secret string        `yaml:"secret"`
		TTL    time.Duration `yaml:"ttl"`
	} `yaml:"jwt"`
	Email struct {
		Provider string `yaml:"provider"` // none, smtp, mailgun
		From     string `yaml:"from"`
		SMTP     struct {
			Host     string `yaml:"host"`
			Port     string `yaml:"port"`
			Username string `yaml:"username"`
			Password string `yaml:"password"`
		} `yaml:"smtp"`
		Mailgun struct {
			Domain string `yaml:"domain"`
			APIKey string `yaml:"apiKey"`
		} `yaml:"mailgun"`
	} `yaml:"email"`
}

// Load reads the config file at path (if it exists) and applies environment
// overrides. A missing file is not an error; defaults cover local development.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Port = "8080"
	cfg.BaseURL = "http://localhost:8080"
	cfg.DBPath = "taskhive.db"
	cfg.JWT.TTL = 24 * time.Hour
	cfg.Email.Provider = "none"

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("TASKHIVE_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("TASKHIVE_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("TASKHIVE_EMAIL_PROVIDER"); v != "" {
		cfg.Email.Provider = v
	}
	if v := os.Getenv("TASKHIVE_EMAIL_FROM"); v != "" {
		cfg.Email.From = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Email.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		cfg.Email.SMTP.Port = v
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		cfg.Email.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Email.SMTP.Password = v
	}
	if v := os.Getenv("MAILGUN_DOMAIN"); v != "" {
		cfg.Email.Mailgun.Domain = v
	}
	if v := os.Getenv("MAILGUN_API_KEY"); v != "" {
		cfg.Email.Mailgun.APIKey = v
	}
}
