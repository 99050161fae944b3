// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"` // per-request deadline
	StoreTimeout   time.Duration `yaml:"store_timeout"`   // per DB/Redis call
	CookieSecure   bool          `yaml:"cookie_secure"`
	Language       string        `yaml:"language"` // locale for user-facing errors
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL            string `yaml:"url"`
	MaxConns       int32  `yaml:"max_conns"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret"`
	CookieName  string        `yaml:"cookie_name"`
	SessionTTL  time.Duration `yaml:"session_ttl"`
	LoginLimit  int           `yaml:"login_limit"`  // attempts per window per email
	LoginWindow time.Duration `yaml:"login_window"`
}

type AIConfig struct {
	OpenAIKey       string            `yaml:"openai_key"`
	GeminiKey       string            `yaml:"gemini_key"`
	GeminiURL       string            `yaml:"gemini_url"`
	MetisKey        string            `yaml:"metis_key"`
	MetisBaseURL    string            `yaml:"metis_base_url"`
	DefaultModel    string            `yaml:"default_model"`
	DefaultProvider string            `yaml:"default_provider"` // gemini|openai|metis
	ModelProviders  map[string]string `yaml:"model_providers"`  // exact model -> provider
	ConcurrentLimit int               `yaml:"concurrent_limit"` // max concurrent AI calls
	RatePerSecond   float64           `yaml:"rate_per_second"`  // token bucket refill
	Burst           int               `yaml:"burst"`
	Timeout         time.Duration     `yaml:"timeout"`
	MaxOutputTokens int               `yaml:"max_output_tokens"`
}

type WorkoutConfig struct {
	RateLimit  int           `yaml:"rate_limit"` // generations per window per member
	RateWindow time.Duration `yaml:"rate_window"`
	LockTTL    time.Duration `yaml:"lock_ttl"`
}

type GymConfig struct {
	TimeZone      string `yaml:"time_zone"`
	ReportWorkers int    `yaml:"report_workers"` // concurrent per-member queries in reports
}

type SchedulerConfig struct {
	StatsInterval time.Duration `yaml:"stats_interval"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	AI        AIConfig        `yaml:"ai"`
	Workout   WorkoutConfig   `yaml:"workout"`
	Gym       GymConfig       `yaml:"gym"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path, then applies a .env file (when
// present) and environment overrides for secrets and connection strings.
func LoadConfig(path string, dev bool) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev)
}

// Parse decodes YAML bytes and applies env overrides, defaults and validation.
func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	cfg.Runtime.Dev = dev

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	overrideStr(&c.Database.URL, "DATABASE_URL")
	overrideStr(&c.Redis.URL, "REDIS_URL")
	overrideStr(&c.Redis.Password, "REDIS_PASSWORD")
	overrideStr(&c.Auth.JWTSecret, "JWT_SECRET")
	overrideStr(&c.AI.OpenAIKey, "OPENAI_API_KEY")
	overrideStr(&c.AI.GeminiKey, "GEMINI_API_KEY")
	overrideStr(&c.AI.MetisKey, "METIS_API_KEY")
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
}

func overrideStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	c.Server.ReadTimeout = orDuration(c.Server.ReadTimeout, 10*time.Second)
	c.Server.WriteTimeout = orDuration(c.Server.WriteTimeout, 60*time.Second)
	c.Server.RequestTimeout = orDuration(c.Server.RequestTimeout, 45*time.Second)
	c.Server.StoreTimeout = orDuration(c.Server.StoreTimeout, 5*time.Second)
	if c.Server.Language == "" {
		c.Server.Language = "en"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}

	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 10
	}
	c.Redis.TTL = normalizeTTL(c.Redis.TTL)

	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "gym_session"
	}
	c.Auth.SessionTTL = orDuration(c.Auth.SessionTTL, 24*time.Hour)
	if c.Auth.LoginLimit <= 0 {
		c.Auth.LoginLimit = 10
	}
	c.Auth.LoginWindow = orDuration(c.Auth.LoginWindow, 15*time.Minute)

	if c.AI.ConcurrentLimit <= 0 {
		c.AI.ConcurrentLimit = 16
	}
	if c.AI.RatePerSecond <= 0 {
		c.AI.RatePerSecond = 5
	}
	if c.AI.Burst <= 0 {
		c.AI.Burst = c.AI.ConcurrentLimit
	}
	c.AI.Timeout = orDuration(c.AI.Timeout, 30*time.Second)
	if c.AI.MaxOutputTokens <= 0 {
		c.AI.MaxOutputTokens = 4096
	}
	if c.AI.DefaultModel == "" {
		c.AI.DefaultModel = "gemini-2.5-flash"
	}
	if c.AI.DefaultProvider == "" {
		c.AI.DefaultProvider = "gemini"
	}
	if c.AI.MetisBaseURL == "" {
		c.AI.MetisBaseURL = "https://api.metisai.ir/openai/v1"
	}

	if c.Workout.RateLimit <= 0 {
		c.Workout.RateLimit = 5
	}
	c.Workout.RateWindow = orDuration(c.Workout.RateWindow, time.Hour)
	c.Workout.LockTTL = orDuration(c.Workout.LockTTL, time.Minute)

	if c.Gym.TimeZone == "" {
		c.Gym.TimeZone = "UTC"
	}
	if c.Gym.ReportWorkers <= 0 {
		c.Gym.ReportWorkers = 8
	}
	c.Scheduler.StatsInterval = orDuration(c.Scheduler.StatsInterval, time.Minute)
}

// Minimal validation
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return errors.New("auth.jwt_secret must be at least 32 bytes")
	}
	if _, err := time.LoadLocation(c.Gym.TimeZone); err != nil {
		return fmt.Errorf("gym.time_zone: %w", err)
	}
	return nil
}

// Location resolves the gym time zone. validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Gym.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func orDuration(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
