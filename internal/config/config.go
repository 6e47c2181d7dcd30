package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string        `yaml:"listen_addr"`
	DatabasePath   string        `yaml:"database_path"`
	PageRoot       string        `yaml:"page_root"`
	GinMode        string        `yaml:"gin_mode"`
	LogLevel       string        `yaml:"log_level"`
	FeedCacheTTL   time.Duration `yaml:"feed_cache_ttl"`
	FeedLimit      int           `yaml:"feed_limit"`
	CollapseChains bool          `yaml:"collapse_chains"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() AppConfig {
	return AppConfig{
		ListenAddr:   ":8080",
		DatabasePath: "slugblog.db",
		GinMode:      "release",
		LogLevel:     "info",
		FeedCacheTTL: 30 * time.Second,
		FeedLimit:    20,
	}
}

// LoadDotEnv loads .env.local then .env. Variables already present in the
// process environment are never overwritten.
func LoadDotEnv() []string {
	candidates := []string{".env.local", ".env"}
	var loaded []string
	for _, f := range candidates {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}

// Load 从配置文件与环境变量读取应用配置，环境变量优先，缺失项使用默认值。
func Load() (AppConfig, error) {
	LoadDotEnv()

	cfg := Defaults()

	if path := strings.TrimSpace(os.Getenv("BLOG_CONFIG")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	cfg.PageRoot = NormalizePageRoot(cfg.PageRoot)
	return cfg, nil
}

func loadFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	if v := env("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	} else if port := env("PORT"); port != "" {
		cfg.ListenAddr = fmt.Sprintf(":%s", port)
	}

	if v := env("DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v, ok := os.LookupEnv("PAGE_ROOT"); ok {
		cfg.PageRoot = strings.TrimSpace(v)
	}
	if v := env("GIN_MODE"); v != "" {
		cfg.GinMode = v
	}
	if v := env("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if v := env("FEED_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid FEED_CACHE_TTL: %w", err)
		}
		cfg.FeedCacheTTL = ttl
	}

	if v := env("FEED_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return fmt.Errorf("invalid FEED_LIMIT %q", v)
		}
		cfg.FeedLimit = limit
	}

	if v := env("SLUG_COLLAPSE_CHAINS"); v != "" {
		collapse, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SLUG_COLLAPSE_CHAINS: %w", err)
		}
		cfg.CollapseChains = collapse
	}

	return nil
}

// NormalizePageRoot trims whitespace and trailing slashes and makes sure a
// non-empty root starts with "/".
func NormalizePageRoot(root string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(root), "/")
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return trimmed
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
