package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the sherlock service configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Completion CompletionConfig `yaml:"completion"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Cache      CacheConfig      `yaml:"cache"`
	Debounce   DebounceConfig   `yaml:"debounce"`
	Persona    PersonaConfig    `yaml:"persona"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds corpus store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// CorpusConfig holds corpus index settings.
type CorpusConfig struct {
	KeyPrefix  string `yaml:"key_prefix"`
	Dimensions int    `yaml:"dimensions"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	TimeoutSec  int    `yaml:"timeout_sec"`
	MaxAttempts int    `yaml:"max_attempts"`
	CacheTTLSec int    `yaml:"cache_ttl_sec"`
}

// CompletionConfig holds LLM provider settings.
type CompletionConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Provider    string  `yaml:"provider"` // openai, anthropic, gemini, generic
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSec  int     `yaml:"timeout_sec"`
}

// RetrievalConfig holds hybrid retrieval settings.
type RetrievalConfig struct {
	TopK            int `yaml:"top_k"`
	OverfetchFactor int `yaml:"overfetch_factor"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	MaxSize int `yaml:"max_size"`
	TTLSec  int `yaml:"ttl_sec"`
}

// DebounceConfig holds the staleness coordinator settings.
type DebounceConfig struct {
	WindowSec int `yaml:"window_sec"`
}

// PersonaConfig holds the assistant identity and few-shot examples.
type PersonaConfig struct {
	Name                 string                `yaml:"name"`
	Instructions         string                `yaml:"instructions"`
	ExampleConversations []ExampleConversation `yaml:"example_conversations"`
}

// ExampleConversation is one few-shot conversation used in prompt assembly.
type ExampleConversation struct {
	Turns []ExampleTurn `yaml:"turns"`
}

// ExampleTurn is a single turn of an example conversation. Assistant turns
// use the persona name as user.
type ExampleTurn struct {
	User string `yaml:"user"`
	Text string `yaml:"text"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Must cover the debounce window plus a full completion call.
		c.HTTP.WriteTimeoutSec = 90
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Corpus.KeyPrefix == "" {
		c.Corpus.KeyPrefix = "sherlock:"
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 20
	}
	if c.Embedding.MaxAttempts <= 0 {
		c.Embedding.MaxAttempts = 3
	}
	if c.Embedding.CacheTTLSec <= 0 {
		c.Embedding.CacheTTLSec = 7 * 24 * 3600
	}
	if c.Completion.TimeoutSec <= 0 {
		c.Completion.TimeoutSec = 60
	}
	if c.Completion.Temperature <= 0 {
		c.Completion.Temperature = 1.0
	}
	if c.Completion.MaxTokens <= 0 {
		c.Completion.MaxTokens = 512
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = 5
	}
	if c.Retrieval.OverfetchFactor < 1 {
		c.Retrieval.OverfetchFactor = 2
	}
	if c.Cache.MaxSize <= 0 {
		c.Cache.MaxSize = 100
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 3600
	}
	if c.Debounce.WindowSec < 0 {
		c.Debounce.WindowSec = 0
	} else if c.Debounce.WindowSec == 0 {
		c.Debounce.WindowSec = 3
	}
	if c.Persona.Name == "" {
		c.Persona.Name = "Sherlock"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Completion.Model == "" {
		return fmt.Errorf("completion.model is required")
	}
	if c.Completion.Temperature < 0 || c.Completion.Temperature > 2 {
		return fmt.Errorf("completion.temperature must be in [0, 2], got %g", c.Completion.Temperature)
	}
	switch strings.ToLower(c.Completion.Provider) {
	case "", "generic", "other", "openai", "anthropic", "gemini", "google":
		// ok
	default:
		return fmt.Errorf("completion.provider must be one of openai, anthropic, gemini, generic, got %q",
			c.Completion.Provider)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
