package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

type Config struct {
	Env  Environment `yaml:"env"`
	Port string      `yaml:"port"`

	LLM struct {
		Provider    string  `yaml:"provider"` // openai|gemini|ollama|anthropic|none
		APIKey      string  `yaml:"api_key"`
		BaseURL     string  `yaml:"base_url"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"llm"`

	Summary struct {
		ChunkSize   int `yaml:"chunk_size"`
		MinWords    int `yaml:"min_words"`
		MaxWords    int `yaml:"max_words"`
		Concurrency int `yaml:"concurrency"`
		Sentences   int `yaml:"sentences"` // extractive fallback length
	} `yaml:"summary"`

	Takeaways struct {
		Count int `yaml:"count"`
	} `yaml:"takeaways"`

	Chat struct {
		ContextWords int `yaml:"context_words"`
	} `yaml:"chat"`

	Store struct {
		Driver          string `yaml:"driver"` // yaml|bolt
		CredentialsFile string `yaml:"credentials_file"`
		ChatHistoryFile string `yaml:"chat_history_file"`
		BoltPath        string `yaml:"bolt_path"`
	} `yaml:"store"`

	Session struct {
		Driver   string        `yaml:"driver"` // memory|redis
		TTL      time.Duration `yaml:"ttl"`
		RedisURL string        `yaml:"redis_url"`
	} `yaml:"session"`

	OTel struct {
		Endpoint       string `yaml:"endpoint"`
		Headers        string `yaml:"headers"`
		ServiceName    string `yaml:"service_name"`
		ServiceVersion string `yaml:"service_version"`
	} `yaml:"otel"`
}

// Load reads the optional YAML file at path, then the process environment
// (after loading .env), which takes precedence. Unset values get defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	c := &Config{}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	c.applyEnv()
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyEnv() {
	c.Env = Environment(getEnv("APP_ENV", string(c.Env)))
	c.Port = getEnv("PORT", c.Port)

	c.LLM.Provider = getEnv("LLM_PROVIDER", c.LLM.Provider)
	c.LLM.APIKey = getEnv("LLM_API_KEY", c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		// GEMINI_API_KEY alone selects the gemini provider
		c.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		if c.LLM.APIKey != "" && c.LLM.Provider == "" {
			c.LLM.Provider = "gemini"
		}
	}
	c.LLM.BaseURL = getEnv("LLM_BASE_URL", c.LLM.BaseURL)
	c.LLM.Model = getEnv("LLM_MODEL", c.LLM.Model)
	c.LLM.MaxTokens = getEnvInt("LLM_MAX_TOKENS", c.LLM.MaxTokens)
	c.LLM.Temperature = getEnvFloat("LLM_TEMPERATURE", c.LLM.Temperature)

	c.Summary.ChunkSize = getEnvInt("SUMMARY_CHUNK_SIZE", c.Summary.ChunkSize)
	c.Summary.Concurrency = getEnvInt("SUMMARY_CONCURRENCY", c.Summary.Concurrency)
	c.Takeaways.Count = getEnvInt("TAKEAWAYS_COUNT", c.Takeaways.Count)

	c.Store.Driver = getEnv("STORE_DRIVER", c.Store.Driver)
	c.Store.CredentialsFile = getEnv("CREDENTIALS_FILE", c.Store.CredentialsFile)
	c.Store.ChatHistoryFile = getEnv("CHAT_HISTORY_FILE", c.Store.ChatHistoryFile)
	c.Store.BoltPath = getEnv("BOLT_PATH", c.Store.BoltPath)

	c.Session.Driver = getEnv("SESSION_DRIVER", c.Session.Driver)
	c.Session.RedisURL = getEnv("REDIS_URL", c.Session.RedisURL)
	c.Session.TTL = getEnvDuration("SESSION_TTL", c.Session.TTL)

	c.OTel.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTel.Endpoint)
	c.OTel.Headers = getEnv("OTEL_EXPORTER_OTLP_HEADERS", c.OTel.Headers)
	c.OTel.ServiceName = getEnv("OTEL_SERVICE_NAME", c.OTel.ServiceName)
	c.OTel.ServiceVersion = getEnv("OTEL_SERVICE_VERSION", c.OTel.ServiceVersion)
}

func (c *Config) applyDefaults() {
	if c.Env != Production {
		c.Env = Development
	}
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "none"
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = 1024
	}
	if c.Summary.ChunkSize <= 0 {
		c.Summary.ChunkSize = 1024
	}
	if c.Summary.MinWords <= 0 {
		c.Summary.MinWords = 50
	}
	if c.Summary.MaxWords <= 0 {
		c.Summary.MaxWords = 150
	}
	if c.Summary.Concurrency <= 0 {
		c.Summary.Concurrency = 4
	}
	if c.Summary.Sentences <= 0 {
		c.Summary.Sentences = 5
	}
	if c.Takeaways.Count <= 0 {
		c.Takeaways.Count = 5
	}
	if c.Chat.ContextWords <= 0 {
		c.Chat.ContextWords = 6000
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "yaml"
	}
	if c.Store.CredentialsFile == "" {
		c.Store.CredentialsFile = "credentials.yaml"
	}
	if c.Store.ChatHistoryFile == "" {
		c.Store.ChatHistoryFile = "user_chats.yaml"
	}
	if c.Store.BoltPath == "" {
		c.Store.BoltPath = "research-assistant.db"
	}
	if c.Session.Driver == "" {
		c.Session.Driver = "memory"
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = 24 * time.Hour
	}
	if c.OTel.ServiceName == "" {
		c.OTel.ServiceName = "research-assistant"
	}
	if c.OTel.ServiceVersion == "" {
		c.OTel.ServiceVersion = "dev"
	}
}

func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "none", "ollama":
	case "openai", "gemini", "anthropic":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("LLM_API_KEY is required for provider %q", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	switch c.Store.Driver {
	case "yaml", "bolt":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.Session.Driver {
	case "memory":
	case "redis":
		if c.Session.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis session driver")
		}
	default:
		return fmt.Errorf("unknown session driver %q", c.Session.Driver)
	}
	return nil
}

func (c *Config) IsProduction() bool  { return c.Env == Production }
func (c *Config) IsDevelopment() bool { return c.Env == Development }

func (c *Config) OTelEnabled() bool { return c.OTel.Endpoint != "" }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
