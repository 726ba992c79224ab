package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Cache    CacheConfig
	Worker   WorkerConfig
	Redis    RedisConfig
	S3       S3Config
}

type ServerConfig struct {
	Host      string
	Port      int
	PublicURL string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	Secret string
}

// CacheConfig controls the session/permission cache. The TTL is a
// staleness policy, not a security boundary; server-side checks run
// on every mutating request regardless.
type CacheConfig struct {
	TTLMinutes int
}

type S3Config struct {
	BucketName string
	Endpoint   string
	Region     string
	AccessKey  string
	SecretKey  string
}

type WorkerConfig struct {
	Concurrency int
	QueueSize   int
}

type RedisConfig struct {
	Addr     string
	Password string
	Username string
	DB       int
}

var (
	config *Config
	once   sync.Once
)

// GetConfig returns the singleton config instance
func GetConfig() *Config {
	once.Do(func() {
		config, _ = Load()
	})
	return config
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "localhost"),
			Port:      getEnvAsInt("SERVER_PORT", 8080),
			PublicURL: getEnv("PUBLIC_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Name:     getEnv("POSTGRES_DB", "leadcrm"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key"),
		},
		Cache: CacheConfig{
			TTLMinutes: getEnvAsInt("CACHE_TTL_MINUTES", 15),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 5),
			QueueSize:   getEnvAsInt("WORKER_QUEUE_SIZE", 100),
		},
		Redis: RedisConfig{
			Addr:     fmt.Sprintf("%s:%d", getEnv("REDIS_HOST", "localhost"), getEnvAsInt("REDIS_PORT", 6379)),
			Password: getEnv("REDIS_PASSWORD", ""),
			Username: getEnv("REDIS_USERNAME", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		S3: S3Config{
			BucketName: getEnv("S3_BUCKET_NAME", ""),
			Endpoint:   getEnv("S3_ENDPOINT", ""),
			Region:     getEnv("S3_REGION", ""),
			AccessKey:  getEnv("S3_ACCESS_KEY", ""),
			SecretKey:  getEnv("S3_SECRET_KEY", ""),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
