// Package config loads application configuration from environment variables.
// All variables use the STUDY_ prefix. A .env file in the working directory
// is read first when present; real environment variables take precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Cache       CacheConfig
	AI          AIConfig
	Materials   MaterialsConfig
	Worker      WorkerConfig
	Log         LogConfig
	CatalogPath string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int
	Host           string
	AllowedOrigins []string // websocket Origin patterns
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL keeps
// courses and the timeline in memory.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Dragonfly/Redis connection settings. An empty URL disables caching.
type CacheConfig struct {
	URL      string
	TTLHours int
}

// AIConfig holds configuration for all AI providers and generation.
type AIConfig struct {
	OpenAI      OpenAIConfig
	DeepSeek    DeepSeekConfig
	OpenRouter  OpenRouterConfig
	Ollama      OllamaConfig
	Model       string // overrides each provider's default model
	MaxTokens   int
	Questions   int   // questions per mock test
	TokenBudget int64 // per course; 0 is unlimited
}

// OpenAIConfig holds OpenAI provider settings.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
}

// DeepSeekConfig holds DeepSeek provider settings (OpenAI-compatible).
type DeepSeekConfig struct {
	APIKey string
}

// OpenRouterConfig holds OpenRouter provider settings (OpenAI-compatible).
type OpenRouterConfig struct {
	APIKey string
}

// OllamaConfig holds self-hosted Ollama settings.
type OllamaConfig struct {
	Enabled bool
	URL     string
	Model   string
}

// MaterialsConfig holds course document settings.
type MaterialsConfig struct {
	PDFToText string
	MaxChars  int
	Watch     bool
}

// WorkerConfig holds generation queue settings.
type WorkerConfig struct {
	QueueSize int
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with the STUDY_ prefix.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           envInt("STUDY_SERVER_PORT", 8080),
			Host:           envStr("STUDY_SERVER_HOST", "127.0.0.1"),
			AllowedOrigins: envList("STUDY_SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			URL:      envStr("STUDY_DATABASE_URL", ""),
			MaxConns: envInt("STUDY_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("STUDY_DATABASE_MIN_CONNS", 1),
		},
		Cache: CacheConfig{
			URL:      envStr("STUDY_CACHE_URL", ""),
			TTLHours: envInt("STUDY_CACHE_TTL_HOURS", 24),
		},
		AI: AIConfig{
			OpenAI: OpenAIConfig{
				APIKey:  envStr("STUDY_AI_OPENAI_API_KEY", ""),
				BaseURL: envStr("STUDY_AI_OPENAI_BASE_URL", ""),
			},
			DeepSeek: DeepSeekConfig{
				APIKey: envStr("STUDY_AI_DEEPSEEK_API_KEY", ""),
			},
			OpenRouter: OpenRouterConfig{
				APIKey: envStr("STUDY_AI_OPENROUTER_API_KEY", ""),
			},
			Ollama: OllamaConfig{
				Enabled: envBool("STUDY_AI_OLLAMA_ENABLED", false),
				URL:     envStr("STUDY_AI_OLLAMA_URL", "http://localhost:11434"),
				Model:   envStr("STUDY_AI_OLLAMA_MODEL", ""),
			},
			Model:       envStr("STUDY_AI_MODEL", ""),
			MaxTokens:   envInt("STUDY_AI_MAX_TOKENS", 4096),
			Questions:   envInt("STUDY_AI_QUESTIONS", 10),
			TokenBudget: envInt64("STUDY_AI_TOKEN_BUDGET", 0),
		},
		Materials: MaterialsConfig{
			PDFToText: envStr("STUDY_MATERIALS_PDFTOTEXT", "pdftotext"),
			MaxChars:  envInt("STUDY_MATERIALS_MAX_CHARS", 60000),
			Watch:     envBool("STUDY_MATERIALS_WATCH", true),
		},
		Worker: WorkerConfig{
			QueueSize: envInt("STUDY_WORKER_QUEUE_SIZE", 16),
		},
		Log: LogConfig{
			Level:  envStr("STUDY_LOG_LEVEL", "info"),
			Format: envStr("STUDY_LOG_FORMAT", "json"),
		},
		CatalogPath: envStr("STUDY_CATALOG_PATH", ""),
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if !c.HasAIProvider() {
		return fmt.Errorf("at least one AI provider must be configured")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("STUDY_SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("STUDY_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("STUDY_LOG_LEVEL must be debug, info, warn or error, got %q", c.Log.Level)
	}

	if c.Worker.QueueSize <= 0 {
		return fmt.Errorf("STUDY_WORKER_QUEUE_SIZE must be positive, got %d", c.Worker.QueueSize)
	}

	if c.AI.TokenBudget < 0 {
		return fmt.Errorf("STUDY_AI_TOKEN_BUDGET must not be negative, got %d", c.AI.TokenBudget)
	}

	return nil
}

// HasAIProvider returns true if at least one AI provider is configured.
func (c *Config) HasAIProvider() bool {
	return c.AI.OpenAI.APIKey != "" ||
		c.AI.DeepSeek.APIKey != "" ||
		c.AI.OpenRouter.APIKey != "" ||
		c.AI.Ollama.Enabled
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
