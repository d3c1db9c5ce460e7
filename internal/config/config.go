package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the complete WARDA configuration.
// It is loaded from ~/.warda/config.yaml and can be overridden by environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Embedding EmbeddingConfig `mapstructure:"embedding" yaml:"embedding"`
	Corpus    CorpusConfig    `mapstructure:"corpus" yaml:"corpus"`
	History   HistoryConfig   `mapstructure:"history" yaml:"history"`
	LLM       LLMConfig       `mapstructure:"llm" yaml:"llm"`
	Engine    EngineConfig    `mapstructure:"engine" yaml:"engine"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`

	// ReadTimeout bounds reading a request; the write side is governed by the LLM timeout.
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// AllowedOrigins for the WebSocket upgrade. Empty allows any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins,omitempty"`
}

// LoggingConfig holds logging preferences.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
}

// EmbeddingConfig selects and tunes the sentence-embedding backend.
type EmbeddingConfig struct {
	// Provider is "ollama", "openai" or "none".
	Provider string `mapstructure:"provider" yaml:"provider"`

	// Host is the Ollama base URL.
	Host string `mapstructure:"host" yaml:"host"`

	// Model is the Ollama embedding model.
	Model string `mapstructure:"model" yaml:"model"`

	// OpenAIModel is used when Provider is "openai".
	OpenAIModel string `mapstructure:"openai_model" yaml:"openai_model"`

	// BaseURL overrides the OpenAI-compatible embeddings endpoint.
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`

	// APIKeyEnv names the environment variable holding the embeddings API key.
	APIKeyEnv string `mapstructure:"api_key_env" yaml:"api_key_env"`

	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	CacheSize int           `mapstructure:"cache_size" yaml:"cache_size"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

// CorpusConfig locates the reference corpus and the session transcript.
type CorpusConfig struct {
	// Path is a .json export ({"texts", "embeddings"}) or a .db SQLite corpus.
	Path string `mapstructure:"path" yaml:"path"`

	// Transcript is the CSV of session turns used for exemplar mining.
	Transcript string `mapstructure:"transcript" yaml:"transcript"`
}

// HistoryConfig controls the conversation store.
type HistoryConfig struct {
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// Limit is how many recent turns are fetched per request.
	Limit int `mapstructure:"limit" yaml:"limit"`
}

// LLMConfig configures the completion service.
type LLMConfig struct {
	Provider string `mapstructure:"provider" yaml:"provider"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Model    string `mapstructure:"model" yaml:"model"`

	// APIKeyEnv names the environment variable holding the API key.
	// API keys should not be written into the config file.
	APIKeyEnv string `mapstructure:"api_key_env" yaml:"api_key_env"`

	Temperature float64       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// APIKey reads the completion-service key from the environment.
func (c LLMConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// EngineConfig holds the tunable thresholds of the response pipeline.
type EngineConfig struct {
	MinConfidence      float64 `mapstructure:"min_confidence" yaml:"min_confidence"`
	MaxConfidence      float64 `mapstructure:"max_confidence" yaml:"max_confidence"`
	OverrideConfidence float64 `mapstructure:"override_confidence" yaml:"override_confidence"`

	// OnTopicThreshold and OffTopicCeiling drive the topic gate fallback:
	// on topic when maxOn > OnTopicThreshold || maxOff < OffTopicCeiling.
	OnTopicThreshold float64 `mapstructure:"on_topic_threshold" yaml:"on_topic_threshold"`
	OffTopicCeiling  float64 `mapstructure:"off_topic_ceiling" yaml:"off_topic_ceiling"`

	MinSimilarity     float64 `mapstructure:"min_similarity" yaml:"min_similarity"`
	BaseResults       int     `mapstructure:"base_results" yaml:"base_results"`
	HistoryWindow     int     `mapstructure:"history_window" yaml:"history_window"`
	MaxExamples       int     `mapstructure:"max_examples" yaml:"max_examples"`
	LongResponseChars int     `mapstructure:"long_response_chars" yaml:"long_response_chars"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":5000",
			ReadTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
		Embedding: EmbeddingConfig{
			Provider:    "ollama",
			Host:        "http://127.0.0.1:11434",
			Model:       "nomic-embed-text",
			OpenAIModel: "text-embedding-3-small",
			APIKeyEnv:   "OPENAI_API_KEY",
			Timeout:     30 * time.Second,
			CacheSize:   2000,
			CacheTTL:    time.Hour,
		},
		Corpus: CorpusConfig{
			Path:       "data/embeddings.json",
			Transcript: "data/combined_transcript.csv",
		},
		History: HistoryConfig{
			DBPath: "~/.warda/history.db",
			Limit:  5,
		},
		LLM: LLMConfig{
			Provider:    "groq",
			Endpoint:    "https://api.groq.com/openai/v1",
			Model:       "llama3-8b-8192",
			APIKeyEnv:   "GROQ_API_KEY",
			Temperature: 0.7,
			MaxTokens:   4000,
			Timeout:     30 * time.Second,
		},
		Engine: DefaultEngineConfig(),
	}
}

// DefaultEngineConfig returns the stock pipeline thresholds.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MinConfidence:      0.5,
		MaxConfidence:      0.95,
		OverrideConfidence: 0.9,
		OnTopicThreshold:   0.3,
		OffTopicCeiling:    0.8,
		MinSimilarity:      0.3,
		BaseResults:        5,
		HistoryWindow:      3,
		MaxExamples:        3,
		LongResponseChars:  300,
	}
}

// Load reads configuration from ~/.warda/config.yaml.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return LoadFromPath(filepath.Join(homeDir, ".warda", "config.yaml"))
}

// LoadFromPath reads configuration from a specific file path and merges with
// environment variables. If the file doesn't exist, it creates one with default values.
func LoadFromPath(path string) (*Config, error) {
	path = expandPath(path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeConfigFile(path, Default()); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Example: WARDA_LLM_MODEL=llama3-70b-8192
	v.SetEnvPrefix("WARDA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so keys absent from an older file keep their stock values.
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.History.DBPath = expandPath(cfg.History.DBPath)
	cfg.Logging.File = expandPath(cfg.Logging.File)
	cfg.Corpus.Path = expandPath(cfg.Corpus.Path)
	cfg.Corpus.Transcript = expandPath(cfg.Corpus.Transcript)

	return cfg, nil
}

// SaveToPath writes the configuration to path as YAML.
func (c *Config) SaveToPath(path string) error {
	path = expandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return writeConfigFile(path, c)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}

	switch c.Embedding.Provider {
	case "ollama", "openai", "none":
	default:
		return fmt.Errorf("invalid embedding.provider '%s', must be one of: ollama, openai, none", c.Embedding.Provider)
	}

	if c.LLM.Endpoint == "" {
		return fmt.Errorf("llm.endpoint cannot be empty")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model cannot be empty")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %v", c.LLM.Temperature)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive")
	}

	if c.History.Limit < 0 {
		return fmt.Errorf("history.limit cannot be negative")
	}

	return c.Engine.Validate()
}

// Validate checks threshold ranges.
func (e EngineConfig) Validate() error {
	unit := map[string]float64{
		"min_confidence":      e.MinConfidence,
		"max_confidence":      e.MaxConfidence,
		"override_confidence": e.OverrideConfidence,
		"on_topic_threshold":  e.OnTopicThreshold,
		"off_topic_ceiling":   e.OffTopicCeiling,
		"min_similarity":      e.MinSimilarity,
	}
	for name, v := range unit {
		if v < 0 || v > 1 {
			return fmt.Errorf("engine.%s must be within [0, 1], got %v", name, v)
		}
	}
	if e.MinConfidence > e.MaxConfidence {
		return fmt.Errorf("engine.min_confidence (%v) exceeds engine.max_confidence (%v)", e.MinConfidence, e.MaxConfidence)
	}
	if e.BaseResults <= 0 {
		return fmt.Errorf("engine.base_results must be positive")
	}
	if e.HistoryWindow < 0 || e.MaxExamples < 0 || e.LongResponseChars < 0 {
		return fmt.Errorf("engine window sizes cannot be negative")
	}
	return nil
}

// writeConfigFile writes the config to a YAML file.
func writeConfigFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// expandPath expands ~ to the user's home directory in a path string.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
