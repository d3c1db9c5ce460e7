package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, "groq", cfg.LLM.Provider)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.Endpoint)
	assert.Equal(t, "llama3-8b-8192", cfg.LLM.Model)
	assert.Equal(t, "GROQ_API_KEY", cfg.LLM.APIKeyEnv)
	assert.Equal(t, 0.7, cfg.LLM.Temperature)
	assert.Equal(t, 4000, cfg.LLM.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 5, cfg.History.Limit)

	assert.Equal(t, 0.5, cfg.Engine.MinConfidence)
	assert.Equal(t, 0.95, cfg.Engine.MaxConfidence)
	assert.Equal(t, 0.9, cfg.Engine.OverrideConfidence)
	assert.Equal(t, 0.3, cfg.Engine.OnTopicThreshold)
	assert.Equal(t, 0.8, cfg.Engine.OffTopicCeiling)
	assert.Equal(t, 0.3, cfg.Engine.MinSimilarity)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromPath(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".warda", "config.yaml")

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	_, statErr := os.Stat(configPath)
	require.NoError(t, statErr, "config file was not created")
	assert.Equal(t, "llama3-8b-8192", cfg.LLM.Model)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)

	cfg2, err := LoadFromPath(configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg.LLM, cfg2.LLM)
	assert.Equal(t, cfg.Engine, cfg2.Engine)
}

func TestLoadFromPath_EnvOverride(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("WARDA_LLM_MODEL", "llama3-70b-8192")
	t.Setenv("WARDA_SERVER_ADDR", ":9090")

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, "llama3-70b-8192", cfg.LLM.Model)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestSaveToPath_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Engine.MinSimilarity = 0.42
	cfg.Embedding.Provider = "openai"
	require.NoError(t, cfg.SaveToPath(path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 0.42, loaded.Engine.MinSimilarity)
	assert.Equal(t, "openai", loaded.Embedding.Provider)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"bad embedding provider", func(c *Config) { c.Embedding.Provider = "bert" }, "embedding.provider"},
		{"empty endpoint", func(c *Config) { c.LLM.Endpoint = "" }, "llm.endpoint"},
		{"hot temperature", func(c *Config) { c.LLM.Temperature = 3 }, "llm.temperature"},
		{"zero max tokens", func(c *Config) { c.LLM.MaxTokens = 0 }, "llm.max_tokens"},
		{"zero timeout", func(c *Config) { c.LLM.Timeout = 0 }, "llm.timeout"},
		{"similarity out of range", func(c *Config) { c.Engine.MinSimilarity = 1.5 }, "engine.min_similarity"},
		{"confidence inverted", func(c *Config) { c.Engine.MinConfidence = 0.99 }, "exceeds"},
		{"zero base results", func(c *Config) { c.Engine.BaseResults = 0 }, "base_results"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLLMConfig_APIKey(t *testing.T) {
	t.Setenv("WARDA_TEST_KEY", "gsk-test")

	assert.Equal(t, "gsk-test", LLMConfig{APIKeyEnv: "WARDA_TEST_KEY"}.APIKey())
	assert.Empty(t, LLMConfig{}.APIKey())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".warda/history.db"), expandPath("~/.warda/history.db"))
	assert.Equal(t, "/tmp/x.db", expandPath("/tmp/x.db"))
}
