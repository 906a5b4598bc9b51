// Command webdexd is a development harness exposing webdex's boundary
// operations over HTTP (§0) — the host analytical runtime embeds the
// Go API directly and does not run this binary.
package main

import (
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"webdex/internal/boundary"
	"webdex/internal/config"
	"webdex/internal/crawl"
	"webdex/internal/httpapi"
	"webdex/internal/model"
	"webdex/internal/robots"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg := config.Load(*configPath)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))

	client := &http.Client{Timeout: time.Duration(cfg.Scraper.TimeoutMs) * time.Millisecond}
	robotsCache := buildRobotsCache(cfg, client)

	engine := &boundary.Engine{
		Crawler: crawl.NewOrchestratorWithRobots(client, robotsCache),
		Robots:  robotsCache,
		Logger:  logger,
	}

	server := httpapi.NewServer(cfg, engine, logger)
	if err := server.Listen(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// buildRobotsCache selects the robots.txt Store backend named in
// config (§2.3 RobotsCache.Backend): in-memory by default, or a
// Redis-backed Store for multi-process deployments.
func buildRobotsCache(cfg *config.Config, client *http.Client) *robots.Cache {
	ttl := time.Duration(cfg.Robots.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = model.RobotsCacheTTL
	}

	if cfg.RobotsCache.Backend == "redis" {
		opt, err := redis.ParseURL(cfg.RobotsCache.RedisURL)
		if err != nil {
			log.Fatalf("invalid robotsCache.redisURL: %v", err)
		}
		store := robots.NewRedisStore(redis.NewClient(opt), ttl)
		return robots.NewCache(store, ttl, client)
	}

	return robots.NewCache(robots.NewMemoryStore(), ttl, client)
}
