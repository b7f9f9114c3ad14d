// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the full application configuration.
type Config struct {
	DB       DBConfig
	Server   ServerConfig
	S3       S3Config
	AI       AIConfig
	News     NewsConfig
	Pipeline PipelineConfig
	LogLevel string
}

// DBConfig holds PostgreSQL connection parameters.
type DBConfig struct {
	Host    string
	Port    int
	User    string
	Pass    string
	DBName  string
	SSLMode string
}

// DSN returns a PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return "postgres://" + c.User + ":" + c.Pass +
		"@" + c.Host + ":" + strconv.Itoa(c.Port) +
		"/" + c.DBName + "?sslmode=" + c.SSLMode
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port string
	Host string
}

// Addr returns the full listen address (host:port).
func (c ServerConfig) Addr() string {
	return c.Host + c.Port
}

// S3Config holds S3-compatible object storage parameters used for pipeline
// snapshots. An empty Endpoint disables archiving.
type S3Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
}

// AIConfig selects the text generation backend.
type AIConfig struct {
	Provider string // "ollama" or "openai"
	Timeout  time.Duration
	Ollama   OllamaConfig
	OpenAI   OpenAIConfig
}

// OllamaConfig holds the Ollama LLM server parameters.
type OllamaConfig struct {
	Host  string
	Model string
}

// OpenAIConfig holds OpenAI-compatible API parameters.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewsConfig configures news acquisition.
type NewsConfig struct {
	Provider    string // "worldnews" or "rss"
	APIKey      string
	BaseURL     string
	FeedURL     string // template with {country} and {language}
	MinInterval time.Duration
	CacheDir    string
	CacheTTL    time.Duration
	Env         string
	EnrichBody  bool
}

// PipelineConfig configures stages and task schedules.
type PipelineConfig struct {
	Targets []Target

	DigestSchedule         string
	GenerationSchedule     string
	ClassificationSchedule string
	RunOnStartup           bool
	RunTimeout             time.Duration

	Workers          int
	ClassifyBatch    int
	GenerationBatch  int
	ArticlesPerBatch int
	MinFakes         int
	DedupWindow      int
	RecentHeadlines  int
}

// Load reads configuration from environment variables with sensible defaults.
// Targets come from TARGETS_FILE when set, otherwise from TARGETS.
func Load() (Config, error) {
	cfg := Config{
		DB: DBConfig{
			Host:    envOr("DB_HOST", "localhost"),
			Port:    envOrInt("DB_PORT", 5432),
			User:    envOr("DB_USER", "newsdesk"),
			Pass:    envOr("DB_PASS", "newsdesk"),
			DBName:  envOr("DB_NAME", "newsdesk"),
			SSLMode: envOr("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port: envOr("SERVER_PORT", ":8080"),
			Host: envOr("SERVER_HOST", ""),
		},
		S3: S3Config{
			Endpoint:  envOr("S3_ENDPOINT", ""),
			Bucket:    envOr("S3_BUCKET", "newsdesk-snapshots"),
			AccessKey: envOr("S3_ACCESS_KEY", ""),
			SecretKey: envOr("S3_SECRET_KEY", ""),
			Region:    envOr("S3_REGION", "us-east-1"),
		},
		AI: AIConfig{
			Provider: envOr("AI_PROVIDER", "ollama"),
			Timeout:  envOrDuration("AI_TIMEOUT", 2*time.Minute),
			Ollama: OllamaConfig{
				Host:  envOr("OLLAMA_HOST", "http://localhost:11434"),
				Model: envOr("OLLAMA_MODEL", "llama3"),
			},
			OpenAI: OpenAIConfig{
				APIKey:  envOr("OPENAI_API_KEY", ""),
				BaseURL: envOr("OPENAI_BASE_URL", ""),
				Model:   envOr("OPENAI_MODEL", "gpt-4o-mini"),
			},
		},
		News: NewsConfig{
			Provider:    envOr("NEWS_PROVIDER", "worldnews"),
			APIKey:      envOr("WORLD_NEWS_API_KEY", ""),
			BaseURL:     envOr("WORLD_NEWS_BASE_URL", "https://api.worldnewsapi.com"),
			FeedURL:     envOr("NEWS_FEED_URL", "https://news.google.com/rss?hl={language}&gl={country}&ceid={country}:{language}"),
			MinInterval: envOrDuration("NEWS_MIN_INTERVAL", 1200*time.Millisecond),
			CacheDir:    envOr("NEWS_CACHE_DIR", os.TempDir()),
			CacheTTL:    envOrDuration("NEWS_CACHE_TTL", time.Hour),
			Env:         envOr("APP_ENV", "development"),
			EnrichBody:  envOrBool("NEWS_ENRICH_BODY", false),
		},
		Pipeline: PipelineConfig{
			DigestSchedule:         envOr("STORY_DIGEST_SCHEDULE", "0 */2 * * *"),
			GenerationSchedule:     envOr("ARTICLE_GENERATION_SCHEDULE", "30 */4 * * *"),
			ClassificationSchedule: envOr("STORY_CLASSIFICATION_SCHEDULE", "15 * * * *"),
			RunOnStartup:           envOrBool("RUN_ON_STARTUP", true),
			RunTimeout:             envOrDuration("TASK_TIMEOUT", 2*time.Hour),
			Workers:                envOrInt("PIPELINE_WORKERS", 4),
			ClassifyBatch:          envOrInt("CLASSIFY_BATCH_SIZE", 50),
			GenerationBatch:        envOrInt("GENERATION_BATCH_SIZE", 20),
			ArticlesPerBatch:       envOrInt("DIRECT_ARTICLES_PER_BATCH", 8),
			MinFakes:               envOrInt("DIRECT_MIN_FAKES", 2),
			DedupWindow:            envOrInt("DEDUP_WINDOW", 2000),
			RecentHeadlines:        envOrInt("RECENT_HEADLINES", 50),
		},
		LogLevel: envOr("LOG_LEVEL", "info"),
	}

	var err error
	if path := os.Getenv("TARGETS_FILE"); path != "" {
		cfg.Pipeline.Targets, err = LoadTargetsFile(path)
	} else {
		cfg.Pipeline.Targets, err = ParseTargets(envOr("TARGETS", "us:en"))
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// SlogLevel maps LogLevel to a slog level. Unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envOrDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envOrBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
