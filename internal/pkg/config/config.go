package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
// SSOT: .env 파일 또는 환경 변수
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	JQKA     JQKAConfig
	Tushare  TushareConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig fetch log storage; an empty URL disables it
type DatabaseConfig struct {
	URL             string // DATABASE_URL
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether the fetch log is configured
func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

type LoggingConfig struct {
	Level         string
	Format        string
	FileEnabled   bool
	FilePath      string
	RotationSize  int // MB
	RetentionDays int
}

// JQKAConfig 同花顺 F10 pages
type JQKAConfig struct {
	BaseURL   string
	RateLimit int // requests per second
	Timeout   time.Duration
}

// TushareConfig TuShare Pro reference API
type TushareConfig struct {
	Token     string
	BaseURL   string
	RateLimit int
	Timeout   time.Duration
}

// Load loads configuration from .env file, then the environment
func Load() (*Config, error) {
	// .env 파일이 없어도 계속 진행 (환경 변수에서 로드)
	_ = godotenv.Load()

	timeout, err := getEnvDuration("HTTP_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	jqkaRate, err := getEnvInt("JQKA_RATE_LIMIT", 5)
	if err != nil {
		return nil, err
	}

	tushareRate, err := getEnvInt("TUSHARE_RATE_LIMIT", 2)
	if err != nil {
		return nil, err
	}

	rotationSize, err := getEnvInt("LOG_ROTATION_SIZE", 100)
	if err != nil {
		return nil, err
	}

	retentionDays, err := getEnvInt("LOG_RETENTION_DAYS", 30)
	if err != nil {
		return nil, err
	}

	fileEnabled, err := getEnvBool("LOG_FILE_ENABLED", false)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8099"),
			Mode:         getEnv("GIN_MODE", "debug"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute, // snapshot makes several upstream calls
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        10,
			MinConns:        1,
			MaxConnLifetime: 1 * time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:         getEnv("LOG_LEVEL", "info"),
			Format:        getEnv("LOG_FORMAT", "pretty"),
			FileEnabled:   fileEnabled,
			FilePath:      getEnv("LOG_FILE_PATH", "./logs"),
			RotationSize:  rotationSize,
			RetentionDays: retentionDays,
		},
		JQKA: JQKAConfig{
			BaseURL:   getEnv("JQKA_BASE_URL", "http://basic.10jqka.com.cn"),
			RateLimit: jqkaRate,
			Timeout:   timeout,
		},
		Tushare: TushareConfig{
			Token:     getEnv("TUSHARE_TOKEN", ""),
			BaseURL:   getEnv("TUSHARE_BASE_URL", "http://api.tushare.pro"),
			RateLimit: tushareRate,
			Timeout:   timeout,
		},
	}

	return config, nil
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
