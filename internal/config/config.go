package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type ScraperConfig struct {
	UserAgent string `yaml:"userAgent"`
	TimeoutMs int    `yaml:"timeoutMs"`
}

type CrawlerConfig struct {
	ConcurrencyDefault int `yaml:"concurrencyDefault"`
	DelayMsDefault     int `yaml:"delayMsDefault"`
	MaxSitemapDepth    int `yaml:"maxSitemapDepth"`
}

type RobotsConfig struct {
	Respect bool `yaml:"respect"`
	CacheTTLSeconds int `yaml:"cacheTTLSeconds"`
}

// RobotsCacheConfig selects the backend of the robots.txt cache's
// Store implementation (§4.6).
type RobotsCacheConfig struct {
	Backend  string `yaml:"backend"` // memory|redis
	RedisURL string `yaml:"redisURL"`
}

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Scraper     ScraperConfig     `yaml:"scraper"`
	Crawler     CrawlerConfig     `yaml:"crawler"`
	Robots      RobotsConfig      `yaml:"robots"`
	RobotsCache RobotsCacheConfig `yaml:"robotsCache"`
}

func Load(path string) *Config {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		log.Fatalf("failed to decode config: %v", err)
	}

	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Scraper.UserAgent == "" {
		cfg.Scraper.UserAgent = "DuckDB-Crawler/1.0"
	}
	if cfg.Scraper.TimeoutMs == 0 {
		cfg.Scraper.TimeoutMs = 30000
	}
	if cfg.Crawler.ConcurrencyDefault == 0 {
		cfg.Crawler.ConcurrencyDefault = 4
	}
	if cfg.Crawler.MaxSitemapDepth == 0 {
		cfg.Crawler.MaxSitemapDepth = 5
	}
	if cfg.Robots.CacheTTLSeconds == 0 {
		cfg.Robots.CacheTTLSeconds = 3600
	}
	if cfg.RobotsCache.Backend == "" {
		cfg.RobotsCache.Backend = "memory"
	}
}

// Validate performs basic sanity checks on the loaded configuration.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	switch cfg.RobotsCache.Backend {
	case "memory":
	case "redis":
		if strings.TrimSpace(cfg.RobotsCache.RedisURL) == "" {
			return errors.New("robotsCache.backend is 'redis' but robotsCache.redisURL is empty")
		}
	default:
		return fmt.Errorf("unsupported robotsCache.backend: %s", cfg.RobotsCache.Backend)
	}

	if cfg.Crawler.ConcurrencyDefault < 1 || cfg.Crawler.ConcurrencyDefault > 32 {
		return fmt.Errorf("crawler.concurrencyDefault must be in [1,32], got %d", cfg.Crawler.ConcurrencyDefault)
	}

	return nil
}
