package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds the environment driven configuration of the service.
type Config struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Port        string `env:"PORT" envDefault:"3000"`

	Backend string `env:"DESCRIBER_BACKEND" envDefault:"gemini"`

	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`

	OllamaServer string `env:"OLLAMA_SERVER" envDefault:"http://localhost:11434"`
	OllamaModel  string `env:"OLLAMA_MODEL" envDefault:"llava"`

	LlamaServer string `env:"LLAMA_SERVER" envDefault:"http://localhost:8080"`
	LlamaSeed   int    `env:"LLAMA_SEED" envDefault:"385480504"`

	DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"pt-BR"`

	// Request bodies carry base64 images, 10MB matches what the web client
	// was deployed with.
	MaxBodyBytes  int64 `env:"MAX_BODY_BYTES" envDefault:"10485760"`
	MaxImageBytes int64 `env:"MAX_IMAGE_BYTES" envDefault:"10485760"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	UpstreamTimeout  time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"60s"`
	HTTPReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"90s"`
	HTTPIdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Names the Gemini key was deployed under by earlier web builds, checked in
// order when GEMINI_API_KEY is empty.
var legacyGeminiKeys = []string{
	"REACT_APP_GEMINI_API_KEY",
	"NEXT_PUBLIC_GEMINI_API_KEY",
}

// Load reads an optional .env file and parses the environment into Config.
// Variables already set in the environment win over the .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse parses the current environment into Config.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.GeminiAPIKey = strings.TrimSpace(cfg.GeminiAPIKey)
	for _, key := range legacyGeminiKeys {
		if cfg.GeminiAPIKey != "" {
			break
		}
		cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv(key))
	}
	cfg.OpenAIAPIKey = strings.TrimSpace(cfg.OpenAIAPIKey)
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))

	if cfg.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("MAX_BODY_BYTES must be positive")
	}
	if cfg.MaxImageBytes <= 0 {
		return nil, fmt.Errorf("MAX_IMAGE_BYTES must be positive")
	}

	origins := cfg.CORSAllowedOrigins[:0]
	for _, o := range cfg.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cfg.CORSAllowedOrigins = origins

	return cfg, nil
}

// IsDevelopment reports whether the service runs in a development setup.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
