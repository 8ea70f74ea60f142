package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Analyzer  AnalyzerConfig
	Redis     RedisConfig
	Workflow  WorkflowConfig
	Directory DirectoryConfig
	App       AppConfig
}

type ServerConfig struct {
	Port string
}

type AnalyzerConfig struct {
	BaseURL       string
	ListTimeout   time.Duration
	SubmitTimeout time.Duration
	ListRate      float64
	ListBurst     int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type WorkflowConfig struct {
	SessionTTL time.Duration
}

type DirectoryConfig struct {
	CacheTTL    time.Duration
	RefreshSpec string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Analyzer: AnalyzerConfig{
			BaseURL:       getEnv("ANALYZER_URL", "http://localhost:8000"),
			ListTimeout:   getEnvAsDuration("ANALYZER_LIST_TIMEOUT", 30*time.Second),
			SubmitTimeout: getEnvAsDuration("ANALYZER_SUBMIT_TIMEOUT", 5*time.Minute),
			ListRate:      getEnvAsFloat("ANALYZER_LIST_RATE", 5),
			ListBurst:     getEnvAsInt("ANALYZER_LIST_BURST", 10),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Workflow: WorkflowConfig{
			SessionTTL: getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		},
		Directory: DirectoryConfig{
			CacheTTL:    getEnvAsDuration("DIRECTORY_CACHE_TTL", 5*time.Minute),
			RefreshSpec: getEnv("DIRECTORY_REFRESH_SPEC", "0 */5 * * * *"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Analyzer.BaseURL == "" {
		return fmt.Errorf("ANALYZER_URL is required")
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}
