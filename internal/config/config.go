package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the trip planner server.
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	RestCountries RestCountriesConfig
	Visa          VisaConfig
	Advisory      AdvisoryConfig
	AI            AIConfig
	Jobs          JobsConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// RestCountriesConfig configures the reference country-name dataset used by
// the location resolver.
type RestCountriesConfig struct {
	BaseURL string
	Timeout time.Duration
}

type VisaConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// AdvisoryConfig configures the health-advisory research provider.
type AdvisoryConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type AIConfig struct {
	Provider          string
	GenerationTimeout time.Duration
	Gemini            GeminiConfig
	OpenAI            OpenAIConfig
	Ollama            OllamaConfig
}

type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

// JobsConfig bounds background job execution. Every job is force-failed at
// Timeout; jobs with no progress update within StaleAfter are failed by the
// sweeper.
type JobsConfig struct {
	Timeout       time.Duration
	StaleAfter    time.Duration
	SweepInterval time.Duration
	StatusTTL     time.Duration
}

var validProviders = map[string]bool{
	"gemini": true,
	"openai": true,
	"ollama": true,
	"mock":   true,
}

// Load reads configuration from environment variables and returns a validated
// Config. Returns an error with a descriptive message if any required value
// is missing or invalid.
func Load() (*Config, error) {
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("BACKPACKER_PORT", 8080),
			Env:  envString("BACKPACKER_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		RestCountries: RestCountriesConfig{
			BaseURL: envString("RESTCOUNTRIES_BASE_URL", "https://restcountries.com/v3.1"),
			Timeout: envDuration("RESTCOUNTRIES_TIMEOUT", 5*time.Second),
		},
		Visa: VisaConfig{
			APIKey:  os.Getenv("VISA_API_KEY"),
			BaseURL: envString("VISA_API_BASE_URL", "https://visa-requirement.p.rapidapi.com/v2"),
			Timeout: envDuration("VISA_API_TIMEOUT", 30*time.Second),
		},
		Advisory: AdvisoryConfig{
			APIKey:  os.Getenv("ADVISORY_API_KEY"),
			BaseURL: envString("ADVISORY_BASE_URL", "https://api.perplexity.ai"),
			Model:   envString("ADVISORY_MODEL", "sonar"),
			Timeout: envDuration("ADVISORY_TIMEOUT", 60*time.Second),
		},
		AI: AIConfig{
			Provider:          os.Getenv("AI_PROVIDER"),
			GenerationTimeout: envDurationSecs("AI_GENERATION_TIMEOUT_SECS", 60*time.Second),
			Gemini: GeminiConfig{
				APIKey:  os.Getenv("GEMINI_API_KEY"),
				BaseURL: envString("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
				Model:   envString("GEMINI_MODEL", "gemini-2.5-flash"),
			},
			OpenAI: OpenAIConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				BaseURL: envString("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				Model:   envString("OPENAI_MODEL", "gpt-4o-mini"),
			},
			Ollama: OllamaConfig{
				BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:   envString("OLLAMA_MODEL", "llama3"),
			},
		},
		Jobs: JobsConfig{
			Timeout:       envDuration("JOB_TIMEOUT", 10*time.Minute),
			StaleAfter:    envDuration("JOB_STALE_AFTER", 5*time.Minute),
			SweepInterval: envDuration("JOB_SWEEP_INTERVAL", time.Minute),
			StatusTTL:     envDuration("JOB_STATUS_TTL", 30*time.Minute),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if !strings.HasPrefix(c.RestCountries.BaseURL, "http://") && !strings.HasPrefix(c.RestCountries.BaseURL, "https://") {
		return fmt.Errorf("RESTCOUNTRIES_BASE_URL must start with http:// or https://, got %q", c.RestCountries.BaseURL)
	}

	if c.AI.Provider == "" {
		return fmt.Errorf("AI_PROVIDER is required")
	}
	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of gemini, openai, ollama, mock; got %q", c.AI.Provider)
	}

	if c.AI.Provider == "gemini" && c.AI.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required when AI_PROVIDER is gemini")
	}
	if c.AI.Provider == "openai" && c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
	}

	if c.Jobs.Timeout <= 0 {
		return fmt.Errorf("JOB_TIMEOUT must be positive")
	}
	if c.Jobs.StaleAfter <= 0 {
		return fmt.Errorf("JOB_STALE_AFTER must be positive")
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
