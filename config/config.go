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

const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
)

// Config is the process configuration. Values come from an optional YAML
// file named by CONFIG_FILE, then environment variables on top.
type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	FrontendURL string `yaml:"frontend_url"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`

	JWTSecret string        `yaml:"jwt_secret"`
	JWTTTL    time.Duration `yaml:"jwt_ttl"`

	AI        AIConfig        `yaml:"ai"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type AIConfig struct {
	Provider        string        `yaml:"provider"`
	GeminiAPIKey    string        `yaml:"gemini_api_key"`
	GeminiModel     string        `yaml:"gemini_model"`
	AnthropicAPIKey string        `yaml:"anthropic_api_key"`
	ClaudeModel     string        `yaml:"claude_model"`
	Timeout         time.Duration `yaml:"timeout"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

func Defaults() Config {
	return Config{
		Port:        "8080",
		FrontendURL: "http://localhost:5173",
		Environment: "development",
		LogLevel:    "INFO",
		JWTTTL:      24 * time.Hour,
		AI: AIConfig{
			Provider:    ProviderGemini,
			GeminiModel: "gemini-2.5-flash",
			Timeout:     60 * time.Second,
		},
		RateLimit: RateLimitConfig{RPS: 5, Burst: 20},
	}
}

// IsProduction reports whether personal data must be masked in logs.
func (c Config) IsProduction() bool {
	return c.Environment == "production" || os.Getenv("GIN_MODE") == "release"
}

// LoadDotEnv reads .env when present. A missing file is not an error.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load()
}

// Load builds the configuration and validates required keys.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Port, "PORT")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.FrontendURL, "FRONTEND_URL")
	setString(&cfg.Environment, "ENVIRONMENT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.AI.Provider, "AI_PROVIDER")
	setString(&cfg.AI.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.AI.GeminiModel, "GEMINI_MODEL")
	setString(&cfg.AI.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setString(&cfg.AI.ClaudeModel, "CLAUDE_MODEL")

	if err := setDuration(&cfg.JWTTTL, "JWT_TTL"); err != nil {
		return err
	}
	if err := setDuration(&cfg.AI.Timeout, "AI_TIMEOUT"); err != nil {
		return err
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		cfg.RateLimit.RPS = rps
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		cfg.RateLimit.Burst = burst
	}

	cfg.AI.Provider = strings.ToLower(strings.TrimSpace(cfg.AI.Provider))
	return nil
}

func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	switch c.AI.Provider {
	case ProviderGemini, ProviderClaude:
	default:
		return fmt.Errorf("AI_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderClaude, c.AI.Provider)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
