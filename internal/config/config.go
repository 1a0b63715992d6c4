package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	DB        DatabaseConfig
	Reference ReferenceConfig
	Cache     CacheConfig
	Upstream  UpstreamConfig
	GenAI     GenAIConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host          string
	Port          int
	RateLimitRPS  int
	AllowOrigins  []string
	ShutdownGrace time.Duration
}

type DatabaseConfig struct {
	Driver string // "sqlite" or "postgres"
	Path   string
	URL    string
}

type ReferenceConfig struct {
	CitiesPath string
	AreasPath  string
}

type CacheConfig struct {
	Backend       string // "memory" or "redis"
	MaxEntries    int
	WeatherTTL    time.Duration
	NewsTTL       time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type UpstreamConfig struct {
	Timeout       time.Duration
	GeocodingURL  string
	ForecastURL   string
	AirQualityURL string
	WikipediaURL  string
	NewsFeedURL   string
}

type GenAIConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:          getEnv("SERVER_HOST", "localhost"),
			Port:          getEnvInt("SERVER_PORT", 8080),
			RateLimitRPS:  getEnvInt("RATE_LIMIT_RPS", 5),
			AllowOrigins:  getEnvList("CORS_ORIGINS", []string{"*"}),
			ShutdownGrace: getEnvDuration("SHUTDOWN_GRACE", 10*time.Second),
		},
		DB: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "sqlite"),
			Path:   getEnv("DB_PATH", "./data/country-risk.db"),
			URL:    getEnv("DATABASE_URL", ""),
		},
		Reference: ReferenceConfig{
			CitiesPath: getEnv("CITIES_PATH", "./data/worldcities.csv"),
			AreasPath:  getEnv("AREAS_PATH", "./data/country_areas.csv"),
		},
		Cache: CacheConfig{
			Backend:       getEnv("CACHE_BACKEND", "memory"),
			MaxEntries:    getEnvInt("CACHE_MAX_ENTRIES", 1000),
			WeatherTTL:    getEnvDuration("WEATHER_CACHE_TTL", time.Hour),
			NewsTTL:       getEnvDuration("NEWS_CACHE_TTL", 6*time.Hour),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
		},
		Upstream: UpstreamConfig{
			Timeout:       getEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second),
			GeocodingURL:  getEnv("GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1/search"),
			ForecastURL:   getEnv("FORECAST_URL", "https://api.open-meteo.com/v1/forecast"),
			AirQualityURL: getEnv("AIR_QUALITY_URL", "https://air-quality-api.open-meteo.com/v1/air-quality"),
			WikipediaURL:  getEnv("WIKIPEDIA_URL", "https://en.wikipedia.org/api/rest_v1"),
			NewsFeedURL:   getEnv("NEWS_FEED_URL", "https://feeds.bbci.co.uk/news/world/rss.xml"),
		},
		GenAI: GenAIConfig{
			BaseURL:   getEnv("GENAI_BASE_URL", "https://api.openai.com/v1"),
			APIKey:    getEnv("GENAI_API_KEY", ""),
			Model:     getEnv("GENAI_MODEL", "gpt-4o-mini"),
			MaxTokens: getEnvInt("GENAI_MAX_TOKENS", 900),
			Timeout:   getEnvDuration("GENAI_TIMEOUT", 30*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimitRPS < 1 {
		return fmt.Errorf("rate limit must be at least 1 req/s, got %d", c.Server.RateLimitRPS)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	switch c.DB.Driver {
	case "sqlite":
		if c.DB.Path == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite driver")
		}
	case "postgres":
		if c.DB.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid db driver: %s", c.DB.Driver)
	}

	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid cache backend: %s", c.Cache.Backend)
	}
	if c.Cache.WeatherTTL <= 0 || c.Cache.NewsTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}

	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive")
	}
	if c.GenAI.Timeout <= 0 {
		return fmt.Errorf("genai timeout must be positive")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
