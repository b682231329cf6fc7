package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	OpenAI   OpenAIConfig
	Auth     AuthConfig
	Matching MatchingConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Port      string
	LogLevel  string
	LogFormat string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	MatchCacheTTL time.Duration
	QueueName     string
}

type StorageConfig struct {
	Driver   string // "s3" or "local"
	Region   string
	Bucket   string
	Prefix   string
	LocalDir string
}

type OpenAIConfig struct {
	APIKey         string
	EmbeddingModel string
	ChatModel      string
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

type MatchingConfig struct {
	PoolCap        int
	BatchSize      int
	MinScore       float64
	TopK           int
	Workers        int
	EmbedTimeout   time.Duration
	ComputeTimeout time.Duration
	AnalyzeTimeout time.Duration
}

type WorkerConfig struct {
	EmbedWorkers int
	MaxAttempts  int
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

// Load reads configuration from the environment, loading a .env file first when present
func Load() (Config, error) {
	_ = godotenv.Load()

	var (
		missing []string
		invalid []string
	)
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key, def string) string {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		return def
	}
	optInt := func(key string, def int) int {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return n
	}
	optFloat := func(key string, def float64) float64 {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return def
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return f
	}
	optDuration := func(key string, def time.Duration) time.Duration {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return def
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return d
	}

	cfg := Config{
		Server: ServerConfig{
			Port:      opt("PORT", "8080"),
			LogLevel:  opt("LOG_LEVEL", "info"),
			LogFormat: opt("LOG_FORMAT", "text"),
		},
		Database: DatabaseConfig{
			Host:     opt("DB_HOST", "localhost"),
			Port:     opt("DB_PORT", "5432"),
			User:     req("DB_USER"),
			Password: opt("DB_PASS", ""),
			Name:     req("DB_NAME"),
			SSLMode:  opt("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:          opt("REDIS_ADDR", "localhost:6379"),
			Password:      opt("REDIS_PASS", ""),
			DB:            optInt("REDIS_DB", 0),
			MatchCacheTTL: optDuration("MATCH_CACHE_TTL", 24*time.Hour),
			QueueName:     opt("EMBED_QUEUE_NAME", "talentmatch:embeddings"),
		},
		Storage: StorageConfig{
			Driver:   opt("STORAGE_DRIVER", "s3"),
			Region:   opt("AWS_REGION", "us-east-1"),
			Bucket:   opt("AWS_BUCKET", ""),
			Prefix:   opt("STORAGE_PREFIX", "uploads"),
			LocalDir: opt("LOCAL_STORAGE_DIR", "./data"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         req("OPENAI_API_KEY"),
			EmbeddingModel: opt("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			ChatModel:      opt("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		},
		Auth: AuthConfig{
			JWTSecret: opt("JWT_SECRET", ""),
			Issuer:    opt("JWT_ISSUER", "talentmatch"),
		},
		Matching: MatchingConfig{
			PoolCap:        optInt("MATCH_POOL_CAP", 1000),
			BatchSize:      optInt("MATCH_BATCH_SIZE", 100),
			MinScore:       optFloat("MATCH_MIN_SCORE", 0.1),
			TopK:           optInt("MATCH_TOP_K", 10),
			Workers:        optInt("MATCH_WORKERS", 4),
			EmbedTimeout:   optDuration("EMBED_TIMEOUT", 15*time.Second),
			ComputeTimeout: optDuration("MATCH_COMPUTE_TIMEOUT", 2*time.Minute),
			AnalyzeTimeout: optDuration("ANALYZE_TIMEOUT", 60*time.Second),
		},
		Worker: WorkerConfig{
			EmbedWorkers: optInt("EMBED_WORKERS", 2),
			MaxAttempts:  optInt("EMBED_MAX_ATTEMPTS", 3),
		},
	}

	if cfg.Storage.Driver == "s3" && cfg.Storage.Bucket == "" {
		missing = append(missing, "AWS_BUCKET")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
