package config

import (
	"os"
	"path/filepath"
	"testing"
)

// clearEnv unsets all STUDY_ environment variables for a clean test.
func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"STUDY_SERVER_PORT",
		"STUDY_SERVER_HOST",
		"STUDY_SERVER_ALLOWED_ORIGINS",
		"STUDY_DATABASE_URL",
		"STUDY_DATABASE_MAX_CONNS",
		"STUDY_DATABASE_MIN_CONNS",
		"STUDY_CACHE_URL",
		"STUDY_CACHE_TTL_HOURS",
		"STUDY_AI_OPENAI_API_KEY",
		"STUDY_AI_OPENAI_BASE_URL",
		"STUDY_AI_DEEPSEEK_API_KEY",
		"STUDY_AI_OPENROUTER_API_KEY",
		"STUDY_AI_OLLAMA_ENABLED",
		"STUDY_AI_OLLAMA_URL",
		"STUDY_AI_OLLAMA_MODEL",
		"STUDY_AI_MODEL",
		"STUDY_AI_MAX_TOKENS",
		"STUDY_AI_QUESTIONS",
		"STUDY_AI_TOKEN_BUDGET",
		"STUDY_MATERIALS_PDFTOTEXT",
		"STUDY_MATERIALS_MAX_CHARS",
		"STUDY_MATERIALS_WATCH",
		"STUDY_WORKER_QUEUE_SIZE",
		"STUDY_LOG_LEVEL",
		"STUDY_LOG_FORMAT",
		"STUDY_CATALOG_PATH",
	}
	for _, v := range envVars {
		_ = os.Unsetenv(v)
	}
}

// inTempDir runs the test from an empty directory so no stray .env is read.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	inTempDir(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.URL != "" {
		t.Errorf("Database.URL = %q, want empty for in-memory stores", cfg.Database.URL)
	}
	if cfg.Cache.URL != "" || cfg.Cache.TTLHours != 24 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.AI.MaxTokens != 4096 || cfg.AI.Questions != 10 || cfg.AI.TokenBudget != 0 {
		t.Errorf("AI = %+v", cfg.AI)
	}
	if cfg.Materials.PDFToText != "pdftotext" || !cfg.Materials.Watch {
		t.Errorf("Materials = %+v", cfg.Materials)
	}
	if cfg.Worker.QueueSize != 16 {
		t.Errorf("Worker.QueueSize = %d, want 16", cfg.Worker.QueueSize)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if len(cfg.Server.AllowedOrigins) != 0 {
		t.Errorf("AllowedOrigins = %v, want none", cfg.Server.AllowedOrigins)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	inTempDir(t)

	t.Setenv("STUDY_SERVER_PORT", "9090")
	t.Setenv("STUDY_SERVER_ALLOWED_ORIGINS", "localhost:5173, study.example.com")
	t.Setenv("STUDY_DATABASE_URL", "postgres://study@db:5432/study")
	t.Setenv("STUDY_AI_OPENAI_API_KEY", "sk-test")
	t.Setenv("STUDY_AI_TOKEN_BUDGET", "500000")
	t.Setenv("STUDY_MATERIALS_WATCH", "false")
	t.Setenv("STUDY_LOG_FORMAT", "text")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "study.example.com" {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Database.URL != "postgres://study@db:5432/study" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
	if cfg.AI.OpenAI.APIKey != "sk-test" {
		t.Errorf("AI.OpenAI.APIKey = %q", cfg.AI.OpenAI.APIKey)
	}
	if cfg.AI.TokenBudget != 500000 {
		t.Errorf("AI.TokenBudget = %d", cfg.AI.TokenBudget)
	}
	if cfg.Materials.Watch {
		t.Error("Materials.Watch should be false")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q", cfg.Log.Format)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := inTempDir(t)

	content := "STUDY_AI_DEEPSEEK_API_KEY=ds-from-file\nSTUDY_SERVER_PORT=7070\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STUDY_SERVER_PORT", "6060")
	t.Cleanup(func() { _ = os.Unsetenv("STUDY_AI_DEEPSEEK_API_KEY") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AI.DeepSeek.APIKey != "ds-from-file" {
		t.Errorf("DeepSeek.APIKey = %q, want value from .env", cfg.AI.DeepSeek.APIKey)
	}
	if cfg.Server.Port != 6060 {
		t.Errorf("Server.Port = %d, want environment to win over .env", cfg.Server.Port)
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	clearEnv(t)
	inTempDir(t)
	t.Setenv("STUDY_WORKER_QUEUE_SIZE", "many")

	cfg, _ := Load()
	if cfg.Worker.QueueSize != 16 {
		t.Errorf("Worker.QueueSize = %d, want fallback 16", cfg.Worker.QueueSize)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8080},
			AI:     AIConfig{Ollama: OllamaConfig{Enabled: true}},
			Worker: WorkerConfig{QueueSize: 4},
			Log:    LogConfig{Level: "info", Format: "json"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"no provider", func(c *Config) { c.AI.Ollama.Enabled = false }, true},
		{"openrouter only", func(c *Config) { c.AI.Ollama.Enabled = false; c.AI.OpenRouter.APIKey = "k" }, false},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"upper level", func(c *Config) { c.Log.Level = "DEBUG" }, false},
		{"zero queue", func(c *Config) { c.Worker.QueueSize = 0 }, true},
		{"negative budget", func(c *Config) { c.AI.TokenBudget = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
