package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type APIConfig struct {
	Port int `yaml:"port"`
}

type AdminConfig struct {
	Port int `yaml:"port"` // metrics + admin dashboard endpoints
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	PoolSize int    `yaml:"pool_size"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // plan cache TTL
}

type AuthConfig struct {
	AdminSecret  string        `yaml:"admin_secret"` // HMAC secret for admin session JWTs
	AdminAPIKey  string        `yaml:"admin_api_key"` // key exchanged for an admin session
	SessionTTL   time.Duration `yaml:"session_ttl"`
	SecureCookie bool          `yaml:"secure_cookie"`
	CookieDomain string        `yaml:"cookie_domain"`
	MemberAPIKey string        `yaml:"member_api_key"` // bearer key for kiosk/member clients; empty disables the check
}

type SchedulerConfig struct {
	BillingInterval      time.Duration `yaml:"billing_interval"`
	OverdueSweepInterval time.Duration `yaml:"overdue_sweep_interval"`
	FreezeExpiryInterval time.Duration `yaml:"freeze_expiry_interval"`
}

type RateLimitConfig struct {
	CheckInPerMinute int `yaml:"checkin_per_minute"` // per kiosk terminal
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	API       APIConfig       `yaml:"api"`
	Admin     AdminConfig     `yaml:"admin"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = 8080
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 9090
	}
	if cfg.Database.PoolSize <= 0 {
		cfg.Database.PoolSize = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = 5 * time.Minute
	}
	if cfg.Auth.SessionTTL <= 0 {
		cfg.Auth.SessionTTL = 30 * time.Minute
	}
	if cfg.Scheduler.BillingInterval <= 0 {
		cfg.Scheduler.BillingInterval = time.Hour
	}
	if cfg.Scheduler.OverdueSweepInterval <= 0 {
		cfg.Scheduler.OverdueSweepInterval = time.Hour
	}
	if cfg.Scheduler.FreezeExpiryInterval <= 0 {
		cfg.Scheduler.FreezeExpiryInterval = 15 * time.Minute
	}
	if cfg.RateLimit.CheckInPerMinute <= 0 {
		cfg.RateLimit.CheckInPerMinute = 30
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
