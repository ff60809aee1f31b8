// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Collector  CollectorConfig
	Crawler    CrawlerConfig
	LLM        LLMConfig
	Enrichment EnrichmentConfig
	Scheduler  SchedulerConfig
	Log        LogConfig
	// Timezone is the publisher calendar used for listing dates and publish times.
	Timezone string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	QueueSize       int
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	MaxOpen  int
	MaxIdle  int
	Timeout  time.Duration
}

// AuthConfig holds operator authentication settings
type AuthConfig struct {
	JWTSecret     string
	TokenDuration time.Duration
}

// CollectorConfig holds link discovery settings
type CollectorConfig struct {
	ListingURL string
	MaxLinks   int
	MinTextLen int
}

// CrawlerConfig holds article fetch settings
type CrawlerConfig struct {
	ArticlePrefix  string
	UserAgent      string
	RequestTimeout time.Duration
	RequestsPerSec float64
	IconBaseURL    string
}

// LLMConfig holds language model settings
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxAttempts int
	Timeout     time.Duration
}

// EnrichmentConfig holds summarization run settings
type EnrichmentConfig struct {
	BatchSize    int
	ArticlePause time.Duration
	BatchPause   time.Duration
	MaxArticles  int
}

// SchedulerConfig holds cron settings
type SchedulerConfig struct {
	Enabled      bool
	CrawlSpecs   []string
	EnrichSpec   string
	StartupDelay time.Duration
}

// LogConfig holds logger settings
type LogConfig struct {
	Level       string
	Development bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("HTTP_READ_TIMEOUT", 30*time.Second)
	v.SetDefault("HTTP_WRITE_TIMEOUT", 30*time.Second)
	v.SetDefault("HTTP_IDLE_TIMEOUT", 60*time.Second)
	v.SetDefault("HTTP_SHUTDOWN_TIMEOUT", 30*time.Second)
	v.SetDefault("JOB_QUEUE_SIZE", 8)

	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "snack")
	v.SetDefault("DB_MAX_OPEN", 25)
	v.SetDefault("DB_MAX_IDLE", 5)
	v.SetDefault("DB_CONN_LIFETIME", 30*time.Second)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_DURATION", 24*time.Hour)

	v.SetDefault("COLLECTOR_LISTING_URL", "https://news.example/main/list")
	v.SetDefault("COLLECTOR_MAX_LINKS", 5)
	v.SetDefault("COLLECTOR_MIN_TEXT_LEN", 50)

	v.SetDefault("CRAWLER_ARTICLE_PREFIX", "https://n.news.example")
	v.SetDefault("CRAWLER_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("CRAWLER_REQUEST_TIMEOUT", 5*time.Second)
	v.SetDefault("CRAWLER_REQUESTS_PER_SEC", 2.0)
	v.SetDefault("CRAWLER_ICON_BASE_URL", "")

	v.SetDefault("LLM_BASE_URL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("LLM_API_KEY", "")
	v.SetDefault("LLM_MODEL", "gemini-2.5-pro")
	v.SetDefault("LLM_MAX_ATTEMPTS", 10)
	v.SetDefault("LLM_TIMEOUT", 120*time.Second)

	v.SetDefault("ENRICH_BATCH_SIZE", 5)
	v.SetDefault("ENRICH_ARTICLE_PAUSE", 10*time.Second)
	v.SetDefault("ENRICH_BATCH_PAUSE", 10*time.Second)
	v.SetDefault("ENRICH_MAX_ARTICLES", 0)

	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("SCHEDULER_CRAWL_SPECS", "0 6 * * *,0 12 * * *,0 18 * * *")
	v.SetDefault("SCHEDULER_ENRICH_SPEC", "")
	v.SetDefault("SCHEDULER_STARTUP_DELAY", 10*time.Second)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEVELOPMENT", false)

	v.SetDefault("TIMEZONE", "Asia/Seoul")
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("PORT"),
			ReadTimeout:     v.GetDuration("HTTP_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("HTTP_WRITE_TIMEOUT"),
			IdleTimeout:     v.GetDuration("HTTP_IDLE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("HTTP_SHUTDOWN_TIMEOUT"),
			QueueSize:       v.GetInt("JOB_QUEUE_SIZE"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			MaxOpen:  v.GetInt("DB_MAX_OPEN"),
			MaxIdle:  v.GetInt("DB_MAX_IDLE"),
			Timeout:  v.GetDuration("DB_CONN_LIFETIME"),
		},
		Auth: AuthConfig{
			JWTSecret:     v.GetString("JWT_SECRET"),
			TokenDuration: v.GetDuration("JWT_DURATION"),
		},
		Collector: CollectorConfig{
			ListingURL: v.GetString("COLLECTOR_LISTING_URL"),
			MaxLinks:   v.GetInt("COLLECTOR_MAX_LINKS"),
			MinTextLen: v.GetInt("COLLECTOR_MIN_TEXT_LEN"),
		},
		Crawler: CrawlerConfig{
			ArticlePrefix:  strings.TrimRight(v.GetString("CRAWLER_ARTICLE_PREFIX"), "/"),
			UserAgent:      v.GetString("CRAWLER_USER_AGENT"),
			RequestTimeout: v.GetDuration("CRAWLER_REQUEST_TIMEOUT"),
			RequestsPerSec: v.GetFloat64("CRAWLER_REQUESTS_PER_SEC"),
			IconBaseURL:    strings.TrimRight(v.GetString("CRAWLER_ICON_BASE_URL"), "/"),
		},
		LLM: LLMConfig{
			BaseURL:     strings.TrimRight(v.GetString("LLM_BASE_URL"), "/"),
			APIKey:      v.GetString("LLM_API_KEY"),
			Model:       v.GetString("LLM_MODEL"),
			MaxAttempts: v.GetInt("LLM_MAX_ATTEMPTS"),
			Timeout:     v.GetDuration("LLM_TIMEOUT"),
		},
		Enrichment: EnrichmentConfig{
			BatchSize:    v.GetInt("ENRICH_BATCH_SIZE"),
			ArticlePause: v.GetDuration("ENRICH_ARTICLE_PAUSE"),
			BatchPause:   v.GetDuration("ENRICH_BATCH_PAUSE"),
			MaxArticles:  v.GetInt("ENRICH_MAX_ARTICLES"),
		},
		Scheduler: SchedulerConfig{
			Enabled:      v.GetBool("SCHEDULER_ENABLED"),
			CrawlSpecs:   splitSpecs(v.GetString("SCHEDULER_CRAWL_SPECS")),
			EnrichSpec:   strings.TrimSpace(v.GetString("SCHEDULER_ENRICH_SPEC")),
			StartupDelay: v.GetDuration("SCHEDULER_STARTUP_DELAY"),
		},
		Log: LogConfig{
			Level:       v.GetString("LOG_LEVEL"),
			Development: v.GetBool("LOG_DEVELOPMENT"),
		},
		Timezone: v.GetString("TIMEZONE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no sensible fallback
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Collector.MaxLinks <= 0 {
		return fmt.Errorf("COLLECTOR_MAX_LINKS must be positive")
	}
	if c.Enrichment.BatchSize <= 0 {
		return fmt.Errorf("ENRICH_BATCH_SIZE must be positive")
	}
	if c.LLM.MaxAttempts <= 0 {
		return fmt.Errorf("LLM_MAX_ATTEMPTS must be positive")
	}
	if c.Crawler.RequestsPerSec <= 0 {
		return fmt.Errorf("CRAWLER_REQUESTS_PER_SEC must be positive")
	}
	return nil
}

// Location returns the publisher time zone. Korea has no DST, so a fixed
// offset is an exact fallback when tzdata is unavailable.
func (c *Config) Location() *time.Location {
	return LoadLocation(c.Timezone)
}

// LoadLocation resolves name, falling back to KST.
func LoadLocation(name string) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.FixedZone("KST", 9*60*60)
}

func splitSpecs(raw string) []string {
	var specs []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			specs = append(specs, s)
		}
	}
	return specs
}
